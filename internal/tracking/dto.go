package tracking

import (
	"time"

	"github.com/google/uuid"

	"github.com/tennotools/platwatch-backend/pkg/db/models"
)

// Order is the wire shape of a watch order, including the subscriber ids
// registered for notification.
type Order struct {
	ID                uuid.UUID `json:"id"`
	UserID            int64     `json:"user_id"`
	PlatinumThreshold int       `json:"platinum_threshold"`
	MinimumQuantity   int       `json:"minimum_quantity"`
	ItemID            string    `json:"item_id"`
	NotifyUsers       []int64   `json:"notify_users"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toOrder(order models.WatchOrder, notifyUsers []int64) Order {
	if notifyUsers == nil {
		notifyUsers = []int64{}
	}
	return Order{
		ID:                order.ID,
		UserID:            order.UserID,
		PlatinumThreshold: order.PlatinumThreshold,
		MinimumQuantity:   order.MinimumQuantity,
		ItemID:            order.ItemID,
		NotifyUsers:       notifyUsers,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

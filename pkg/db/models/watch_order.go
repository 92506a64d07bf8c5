package models

import (
	"time"

	"github.com/google/uuid"
)

// WatchOrder is a user's standing request to be pinged once an item sells at
// or below a platinum threshold with enough quantity in a single listing.
type WatchOrder struct {
	ID                uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            int64        `gorm:"column:user_id;not null;index:watch_orders_user_id_idx" json:"user_id"`
	PlatinumThreshold int          `gorm:"column:platinum_threshold;not null" json:"platinum_threshold"`
	MinimumQuantity   int          `gorm:"column:minimum_quantity;not null;default:1" json:"minimum_quantity"`
	ItemID            string       `gorm:"column:item_id;not null" json:"item_id"`
	Item              *CatalogItem `gorm:"foreignKey:ItemID;references:ID" json:"-"`
	CreatedAt         time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (WatchOrder) TableName() string {
	return "watch_orders"
}

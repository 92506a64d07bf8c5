package models

import "github.com/google/uuid"

// OrderAlert joins a watch order to a subscriber. Pure association row; it
// only exists while both endpoints do.
type OrderAlert struct {
	OrderID      uuid.UUID `gorm:"column:order_id;type:uuid;primaryKey" json:"order_id"`
	SubscriberID int64     `gorm:"column:subscriber_id;primaryKey;autoIncrement:false" json:"subscriber_id"`
}

func (OrderAlert) TableName() string {
	return "order_alerts"
}

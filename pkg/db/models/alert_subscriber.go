package models

// AlertSubscriber is a user registered to be pinged for watch orders they do
// not own. The id is the external user id, so rows carry nothing else.
type AlertSubscriber struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
}

func (AlertSubscriber) TableName() string {
	return "alert_subscribers"
}

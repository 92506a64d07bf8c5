package models

import "time"

// CatalogItem mirrors one tradeable item from the warframe.market feed. The
// id is assigned upstream and never changes, so re-syncing an existing id is
// a no-op.
type CatalogItem struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	ItemName  string    `gorm:"column:item_name;not null" json:"item_name"`
	URLName   string    `gorm:"column:url_name;not null" json:"url_name"`
	Thumb     string    `gorm:"column:thumb;not null" json:"thumb"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (CatalogItem) TableName() string {
	return "catalog_items"
}

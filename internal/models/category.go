package models

import "time"

// Category groups workshops, e.g. Frontend, Backend or AI/ML.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Icon        string    `gorm:"size:50" json:"icon"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"-"`

	// WorkshopCount is the number of active workshops (computed)
	WorkshopCount int64 `gorm:"-" json:"workshop_count"`
}

// TableName specifies the table name for GORM
func (Category) TableName() string {
	return "categories"
}

package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a user's rating of a workshop. One review per (user, workshop).
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_reviews_user_workshop" json:"user"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	WorkshopID uint      `gorm:"not null;uniqueIndex:idx_reviews_user_workshop;index" json:"workshop"`
	Workshop   *Workshop `gorm:"foreignKey:WorkshopID;constraint:OnDelete:CASCADE" json:"-"`
	Rating     int       `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	UserName      string `gorm:"-" json:"user_name"`
	WorkshopTitle string `gorm:"-" json:"workshop_title"`
}

// ValidRating reports whether r is within the accepted star range.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

package models

import "time"

// Wishlist marks a workshop as saved for later by a user. Presence of the row is the only state.
type Wishlist struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_wishlists_user_workshop" json:"user"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	WorkshopID uint      `gorm:"not null;uniqueIndex:idx_wishlists_user_workshop;index" json:"workshop_id"`
	Workshop   *Workshop `gorm:"foreignKey:WorkshopID;constraint:OnDelete:CASCADE" json:"workshop,omitempty"`
	AddedAt    time.Time `gorm:"autoCreateTime" json:"added_at"`
}

// WishlistAction is the outcome of a wishlist toggle.
type WishlistAction string

const (
	WishlistActionAdded   WishlistAction = "added"
	WishlistActionRemoved WishlistAction = "removed"
)

// ToggleResult reports what a toggle did and the resulting membership.
type ToggleResult struct {
	Action     WishlistAction `json:"action"`
	Wishlisted bool           `json:"wishlisted"`
}

package models

import (
	"strconv"
	"time"
)

// Difficulty is the skill level a workshop targets.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// DefaultMaxStudents is the capacity used when a workshop is created without one.
const DefaultMaxStudents = 30

// Workshop is a course offering with a fixed capacity.
type Workshop struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Slug        string     `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Description string     `gorm:"type:text;not null" json:"description"`
	CategoryID  uint       `gorm:"not null;index" json:"category"`
	Category    *Category  `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
	Difficulty  Difficulty `gorm:"type:varchar(20);not null;default:'beginner';index" json:"difficulty"`
	Duration    string     `gorm:"size:50" json:"duration"`
	Instructor  string     `gorm:"size:100" json:"instructor"`
	MaxStudents int        `gorm:"not null;default:30" json:"max_students"`
	ImageURL    string     `json:"image_url"`
	IsActive    bool       `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"-"`

	// Fields below are derived at read time and never persisted.
	CategoryName  string      `gorm:"-" json:"category_name"`
	EnrolledCount int64       `gorm:"-" json:"enrolled_count"`
	IsFull        bool        `gorm:"-" json:"is_full"`
	AverageRating float64     `gorm:"-" json:"average_rating"`
	ReviewCount   int64       `gorm:"-" json:"review_count"`
	IsEnrolled    bool        `gorm:"-" json:"is_enrolled"`
	IsWishlisted  bool        `gorm:"-" json:"is_wishlisted"`
	UserReview    *UserReview `gorm:"-" json:"user_review"`
}

// UserReview is the caller's own review summary embedded in a workshop response.
type UserReview struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// WorkshopStats holds the aggregates derived from a workshop's enrollments and reviews.
type WorkshopStats struct {
	EnrolledCount int64
	RatingSum     int64
	ReviewCount   int64
}

// ViewerState is the per-caller state shown on a workshop.
type ViewerState struct {
	IsEnrolled   bool
	IsWishlisted bool
	Review       *UserReview
}

// ApplyStats copies derived aggregates onto the workshop.
func (w *Workshop) ApplyStats(stats WorkshopStats) {
	w.EnrolledCount = stats.EnrolledCount
	w.IsFull = IsFull(stats.EnrolledCount, w.MaxStudents)
	w.ReviewCount = stats.ReviewCount
	w.AverageRating = AverageRating(stats.RatingSum, stats.ReviewCount)
	if w.Category != nil {
		w.CategoryName = w.Category.Name
	}
}

// ApplyViewer copies the caller-specific flags onto the workshop.
func (w *Workshop) ApplyViewer(v ViewerState) {
	w.IsEnrolled = v.IsEnrolled
	w.IsWishlisted = v.IsWishlisted
	w.UserReview = v.Review
}

// IsFull reports whether enrolled has reached capacity.
func IsFull(enrolled int64, maxStudents int) bool {
	return enrolled >= int64(maxStudents)
}

// AverageRating returns sum/count rounded to one decimal place, or 0 when count is 0.
// Exact halves round to even, so 17/4 is 4.2.
func AverageRating(sum, count int64) float64 {
	if count <= 0 {
		return 0
	}
	avg, _ := strconv.ParseFloat(strconv.FormatFloat(float64(sum)/float64(count), 'f', 1, 64), 64)
	return avg
}

package models

import "time"

// EnrollmentStatus is the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	// EnrollmentStatusEnrolled counts against workshop capacity.
	EnrollmentStatusEnrolled EnrollmentStatus = "enrolled"
	// EnrollmentStatusCompleted marks a finished workshop.
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	// EnrollmentStatusCancelled frees the seat; the row is kept.
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

// Enrollment is a user's admission record into a workshop. One row per (user, workshop).
type Enrollment struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"not null;uniqueIndex:idx_enrollments_user_workshop" json:"user"`
	User       *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	WorkshopID uint             `gorm:"not null;uniqueIndex:idx_enrollments_user_workshop;index:idx_enrollments_workshop_status" json:"workshop_id"`
	Workshop   *Workshop        `gorm:"foreignKey:WorkshopID;constraint:OnDelete:CASCADE" json:"workshop,omitempty"`
	Status     EnrollmentStatus `gorm:"type:varchar(20);not null;default:'enrolled';index:idx_enrollments_workshop_status" json:"status"`
	EnrolledAt time.Time        `gorm:"autoCreateTime" json:"enrolled_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// UserName is the enrolling user's username (computed)
	UserName string `gorm:"-" json:"user_name"`
}

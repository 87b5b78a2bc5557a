package repository

import (
	"context"
	"time"

	"workshophub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgWorkshopNotActive = "This workshop is not active"
	msgWorkshopFull      = "This workshop is full"
	msgAlreadyEnrolled   = "You are already enrolled in this workshop"
)

// SeatChange is the outcome of a write that changes a workshop's enrolled count.
type SeatChange struct {
	Enrollment    *models.Enrollment
	Reactivated   bool
	EnrolledCount int64
	MaxStudents   int
}

// EnrollmentRepository defines persistence operations for enrollments.
type EnrollmentRepository interface {
	Admit(ctx context.Context, userID, workshopID uint) (*SeatChange, error)
	Cancel(ctx context.Context, userID, enrollmentID uint) (*SeatChange, error)
	GetForUser(ctx context.Context, userID, enrollmentID uint) (*models.Enrollment, error)
	ListByUser(ctx context.Context, userID uint, statuses ...models.EnrollmentStatus) ([]models.Enrollment, error)
	CountByUser(ctx context.Context, userID uint, status models.EnrollmentStatus) (int64, error)
	CountEnrolled(ctx context.Context, workshopID uint) (int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository returns a new EnrollmentRepository implementation.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// Admit enrolls userID into workshopID. The workshop row is locked for the duration
// of the transaction so concurrent admissions into the same workshop serialize and
// capacity is checked against committed enrollments only.
//
// Checks run in order: workshop exists, workshop active, workshop not full, no
// live enrollment for the pair. A cancelled enrollment is moved back to enrolled.
func (r *enrollmentRepository) Admit(ctx context.Context, userID, workshopID uint) (*SeatChange, error) {
	var change SeatChange

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		workshop, err := lockWorkshop(tx, workshopID)
		if err != nil {
			return err
		}
		if !workshop.IsActive {
			return models.NewConflictErrorWithReason(models.ConflictReasonInactive, msgWorkshopNotActive)
		}

		enrolled, err := countEnrolled(tx, workshopID)
		if err != nil {
			return models.NewInternalError(err)
		}
		if models.IsFull(enrolled, workshop.MaxStudents) {
			return models.NewConflictErrorWithReason(models.ConflictReasonFull, msgWorkshopFull)
		}

		var existing models.Enrollment
		if err := tx.Where("user_id = ? AND workshop_id = ?", userID, workshopID).Limit(1).Find(&existing).Error; err != nil {
			return models.NewInternalError(err)
		}

		switch {
		case existing.ID == 0:
			enrollment := &models.Enrollment{
				UserID:     userID,
				WorkshopID: workshopID,
				Status:     models.EnrollmentStatusEnrolled,
			}
			if err := tx.Create(enrollment).Error; err != nil {
				if isUniqueConstraintError(err) {
					return models.NewConflictErrorWithReason(models.ConflictReasonDuplicate, msgAlreadyEnrolled)
				}
				return models.NewInternalError(err)
			}
			change.Enrollment = enrollment
		case existing.Status == models.EnrollmentStatusCancelled:
			err := tx.Model(&existing).Updates(map[string]interface{}{
				"status":      models.EnrollmentStatusEnrolled,
				"enrolled_at": time.Now(),
			}).Error
			if err != nil {
				return models.NewInternalError(err)
			}
			existing.Status = models.EnrollmentStatusEnrolled
			change.Enrollment = &existing
			change.Reactivated = true
		default:
			return models.NewConflictErrorWithReason(models.ConflictReasonDuplicate, msgAlreadyEnrolled)
		}

		change.EnrolledCount = enrolled + 1
		change.MaxStudents = workshop.MaxStudents
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

// Cancel moves the caller's enrollment to cancelled. The row is kept. Enrollments
// owned by another user are reported as not found.
func (r *enrollmentRepository) Cancel(ctx context.Context, userID, enrollmentID uint) (*SeatChange, error) {
	var change SeatChange

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		if err := tx.Where("id = ? AND user_id = ?", enrollmentID, userID).First(&enrollment).Error; err != nil {
			return translate(err, "Enrollment", enrollmentID)
		}

		workshop, err := lockWorkshop(tx, enrollment.WorkshopID)
		if err != nil {
			return err
		}

		if enrollment.Status != models.EnrollmentStatusCancelled {
			if err := tx.Model(&enrollment).Update("status", models.EnrollmentStatusCancelled).Error; err != nil {
				return models.NewInternalError(err)
			}
			enrollment.Status = models.EnrollmentStatusCancelled
		}

		enrolled, err := countEnrolled(tx, workshop.ID)
		if err != nil {
			return models.NewInternalError(err)
		}

		change.Enrollment = &enrollment
		change.EnrolledCount = enrolled
		change.MaxStudents = workshop.MaxStudents
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

func lockWorkshop(tx *gorm.DB, workshopID uint) (*models.Workshop, error) {
	var workshop models.Workshop
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&workshop, workshopID).Error; err != nil {
		return nil, translate(err, "Workshop", workshopID)
	}
	return &workshop, nil
}

func (r *enrollmentRepository) GetForUser(ctx context.Context, userID, enrollmentID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Workshop.Category").
		Where("id = ? AND user_id = ?", enrollmentID, userID).
		First(&enrollment).Error
	if err != nil {
		return nil, translate(err, "Enrollment", enrollmentID)
	}
	fillEnrollmentNames(&enrollment)
	return &enrollment, nil
}

// ListByUser returns the caller's enrollments, newest first. With no statuses all are returned.
func (r *enrollmentRepository) ListByUser(ctx context.Context, userID uint, statuses ...models.EnrollmentStatus) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Workshop.Category").
		Where("user_id = ?", userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("enrolled_at DESC").Order("id DESC").Find(&enrollments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range enrollments {
		fillEnrollmentNames(&enrollments[i])
	}
	return enrollments, nil
}

func (r *enrollmentRepository) CountByUser(ctx context.Context, userID uint, status models.EnrollmentStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *enrollmentRepository) CountEnrolled(ctx context.Context, workshopID uint) (int64, error) {
	n, err := countEnrolled(r.db.WithContext(ctx), workshopID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func fillEnrollmentNames(e *models.Enrollment) {
	if e.User != nil {
		e.UserName = e.User.Username
	}
	if e.Workshop != nil && e.Workshop.Category != nil {
		e.Workshop.CategoryName = e.Workshop.Category.Name
	}
}

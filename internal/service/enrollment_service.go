package service

import (
	"context"

	"workshophub/internal/featureflags"
	"workshophub/internal/middleware"
	"workshophub/internal/models"
	"workshophub/internal/notifications"
	"workshophub/internal/observability"
	"workshophub/internal/repository"
	"workshophub/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// EventPublisher delivers enrollment events to connected clients. *notifications.Notifier
// satisfies it.
type EventPublisher interface {
	PublishSeats(ctx context.Context, seats notifications.SeatsPayload) error
	PublishEnrollment(ctx context.Context, userID uint, eventType string, e notifications.EnrollmentPayload) error
}

type EnrollmentService struct {
	enrollments repository.EnrollmentRepository
	catalog     *CatalogService
	events      EventPublisher
	flags       *featureflags.Manager
}

type EnrollInput struct {
	UserID     uint
	WorkshopID uint `json:"workshop_id" validate:"required"`
}

func NewEnrollmentService(
	enrollments repository.EnrollmentRepository,
	catalog *CatalogService,
	events EventPublisher,
	flags *featureflags.Manager,
) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		catalog:     catalog,
		events:      events,
		flags:       flags,
	}
}

// Enroll admits the user into a workshop. Capacity and duplicate checks run inside the
// repository transaction; see EnrollmentRepository.Admit for their order.
func (s *EnrollmentService) Enroll(ctx context.Context, in EnrollInput) (*models.Enrollment, error) {
	span, ctx := observability.NewSpan(ctx, "enrollment.enroll",
		attribute.Int64("user.id", int64(in.UserID)),
		attribute.Int64("workshop.id", int64(in.WorkshopID)),
	)
	defer span.End()

	if err := validation.Struct(ctx, in); err != nil {
		return nil, err
	}

	change, err := s.enrollments.Admit(ctx, in.UserID, in.WorkshopID)
	if err != nil {
		observability.EnrollmentAttempts.WithLabelValues(admitOutcome(err)).Inc()
		span.SetError(err)
		return nil, err
	}

	outcome := "enrolled"
	if change.Reactivated {
		outcome = "reactivated"
	}
	observability.EnrollmentAttempts.WithLabelValues(outcome).Inc()
	span.AddAttributes(attribute.Int64("workshop.enrolled_count", change.EnrolledCount))

	s.publish(ctx, in.UserID, notifications.EventEnrollmentCreated, change)

	enrollment, err := s.Get(ctx, in.UserID, change.Enrollment.ID)
	if err != nil {
		// The enrollment is committed; answer with the undecorated row.
		middleware.Logger.WarnContext(ctx, "failed to reload enrollment",
			"enrollment_id", change.Enrollment.ID, "error", err)
		return change.Enrollment, nil
	}
	return enrollment, nil
}

// Cancel moves the caller's enrollment to cancelled; repeated cancels succeed.
func (s *EnrollmentService) Cancel(ctx context.Context, userID, enrollmentID uint) (*models.Enrollment, error) {
	span, ctx := observability.NewSpan(ctx, "enrollment.cancel",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("enrollment.id", int64(enrollmentID)),
	)
	defer span.End()

	change, err := s.enrollments.Cancel(ctx, userID, enrollmentID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	observability.EnrollmentCancellations.Inc()

	s.publish(ctx, userID, notifications.EventEnrollmentCanceled, change)
	return change.Enrollment, nil
}

// List returns the caller's enrollments in every status, each with its workshop decorated.
func (s *EnrollmentService) List(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, userID, enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// Active returns the caller's enrollments with status enrolled.
func (s *EnrollmentService) Active(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, userID, models.EnrollmentStatusEnrolled)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, userID, enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (s *EnrollmentService) Get(ctx context.Context, userID, enrollmentID uint) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.GetForUser(ctx, userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	list := []models.Enrollment{*enrollment}
	if err := s.decorate(ctx, userID, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *EnrollmentService) decorate(ctx context.Context, userID uint, enrollments []models.Enrollment) error {
	if s.catalog == nil {
		return nil
	}
	workshops := make([]*models.Workshop, 0, len(enrollments))
	for i := range enrollments {
		if enrollments[i].Workshop != nil {
			workshops = append(workshops, enrollments[i].Workshop)
		}
	}
	return s.catalog.Decorate(ctx, userID, workshops...)
}

// publish sends the post-commit events. Delivery failures are logged and never undo
// the enrollment change.
func (s *EnrollmentService) publish(ctx context.Context, userID uint, eventType string, change *repository.SeatChange) {
	if s.events == nil || !s.flags.On(featureflags.RealtimeSeats) {
		return
	}
	e := change.Enrollment

	seats := notifications.SeatsPayload{
		WorkshopID:    e.WorkshopID,
		EnrolledCount: change.EnrolledCount,
		MaxStudents:   change.MaxStudents,
		IsFull:        models.IsFull(change.EnrolledCount, change.MaxStudents),
	}
	if err := s.events.PublishSeats(ctx, seats); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish seat update", "workshop_id", e.WorkshopID, "error", err)
	}

	payload := notifications.EnrollmentPayload{
		EnrollmentID: e.ID,
		WorkshopID:   e.WorkshopID,
		Status:       string(e.Status),
		Reactivated:  change.Reactivated,
	}
	if err := s.events.PublishEnrollment(ctx, userID, eventType, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish enrollment event", "enrollment_id", e.ID, "error", err)
	}
}

func admitOutcome(err error) string {
	switch models.ErrorCode(err) {
	case models.CodeNotFound:
		return "not_found"
	case models.CodeConflict:
		switch models.ErrorReason(err) {
		case models.ConflictReasonInactive:
			return "inactive"
		case models.ConflictReasonFull:
			return "full"
		default:
			return "duplicate"
		}
	default:
		return "error"
	}
}

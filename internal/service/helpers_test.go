package service

import (
	"context"
	"sync"
	"testing"

	"workshophub/internal/featureflags"
	"workshophub/internal/mailer"
	"workshophub/internal/models"
	"workshophub/internal/notifications"
	"workshophub/internal/repository"
	"workshophub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, models.ErrorCode(err), "unexpected error: %v", err)
}

type recordedEvent struct {
	userID    uint
	eventType string
	seats     notifications.SeatsPayload
	payload   notifications.EnrollmentPayload
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishSeats(_ context.Context, seats notifications.SeatsPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{eventType: notifications.EventWorkshopSeats, seats: seats})
	return nil
}

func (p *recordingPublisher) PublishEnrollment(_ context.Context, userID uint, eventType string, e notifications.EnrollmentPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{userID: userID, eventType: eventType, payload: e})
	return nil
}

func (p *recordingPublisher) snapshot() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

type recordingMailer struct {
	sent []mailer.ResetMessage
	err  error
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, msg mailer.ResetMessage) error {
	m.sent = append(m.sent, msg)
	return m.err
}

// testEnv wires every service over one in-memory database.
type testEnv struct {
	db          *gorm.DB
	events      *recordingPublisher
	mail        *recordingMailer
	catalog     *CatalogService
	enrollments *EnrollmentService
	wishlists   *WishlistService
	reviews     *ReviewService
	auth        *AuthService
	profiles    *ProfileService
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	ff := featureflags.NewManager(flags)

	enrollmentRepo := repository.NewEnrollmentRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	userRepo := repository.NewUserRepository(db)

	env := &testEnv{
		db:     db,
		events: &recordingPublisher{},
		mail:   &recordingMailer{},
	}
	env.catalog = NewCatalogService(repository.NewCategoryRepository(db), repository.NewWorkshopRepository(db))
	env.enrollments = NewEnrollmentService(enrollmentRepo, env.catalog, env.events, ff)
	env.wishlists = NewWishlistService(wishlistRepo, env.catalog)
	env.reviews = NewReviewService(repository.NewReviewRepository(db))
	env.auth = NewAuthService(userRepo, repository.NewPasswordResetRepository(db), env.mail, ff, models.DefaultResetTTL)
	env.profiles = NewProfileService(userRepo, repository.NewProfileRepository(db), enrollmentRepo, wishlistRepo,
		env.enrollments, env.wishlists)
	return env
}

func (e *testEnv) enrolledRows(t *testing.T, workshopID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Enrollment{}).
		Where("workshop_id = ? AND status = ?", workshopID, models.EnrollmentStatusEnrolled).
		Count(&n).Error)
	return n
}

func (e *testEnv) workshop(t *testing.T, slug string, viewerID uint) *models.Workshop {
	t.Helper()
	w, err := e.catalog.GetWorkshop(context.Background(), slug, viewerID)
	require.NoError(t, err)
	return w
}

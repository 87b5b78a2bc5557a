package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EnrollmentAttempts counts enrollment admissions by outcome
	// (enrolled, reactivated, not_found, inactive, full, duplicate, error).
	EnrollmentAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshophub_enrollment_attempts_total",
		Help: "Total number of enrollment attempts by outcome",
	}, []string{"outcome"})

	// EnrollmentCancellations counts enrollments moved to cancelled.
	EnrollmentCancellations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshophub_enrollment_cancellations_total",
		Help: "Total number of cancelled enrollments",
	})

	// WishlistToggles counts wishlist toggles by resulting action.
	WishlistToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshophub_wishlist_toggles_total",
		Help: "Total number of wishlist toggles by action",
	}, []string{"action"})

	// ReviewsCreated counts persisted reviews by rating.
	ReviewsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshophub_reviews_created_total",
		Help: "Total number of reviews created by rating",
	}, []string{"rating"})

	// PasswordResetEvents counts password reset lifecycle events by stage and outcome.
	PasswordResetEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshophub_password_reset_events_total",
		Help: "Password reset requests and redemptions by outcome",
	}, []string{"stage", "outcome"})

	// AuthAttempts counts login and registration attempts by outcome.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshophub_auth_attempts_total",
		Help: "Total login and registration attempts by outcome",
	}, []string{"action", "outcome"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "workshophub_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts events delivered to WebSocket clients by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshophub_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshophub_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// CleanupDeletedRows counts rows removed by scheduled cleanup jobs.
	CleanupDeletedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshophub_cleanup_deleted_rows_total",
		Help: "Rows removed by scheduled cleanup by table",
	}, []string{"table"})
)

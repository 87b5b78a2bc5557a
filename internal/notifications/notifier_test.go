package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	channel string
	payload string
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	ctx := context.Background()
	assert.NoError(t, n.PublishUser(ctx, 1, "x"))
	assert.NoError(t, n.PublishSeats(ctx, SeatsPayload{WorkshopID: 1}))
	assert.NoError(t, n.StartPatternSubscriber(ctx, func(string, string) {}))

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.PublishBroadcast(ctx, "x"))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
		id, ok := parseUserChannel(tt.expected)
		assert.True(t, ok)
		assert.Equal(t, tt.userID, id)
	}

	for _, bad := range []string{"notifications:user:", "notifications:user:abc", "notifications:user:0", "other:1"} {
		_, ok := parseUserChannel(bad)
		assert.False(t, ok, bad)
	}
}

func TestNotifier_PublishEnrollmentRejectsOtherTypes(t *testing.T) {
	n := NewNotifier(nil)
	err := n.PublishEnrollment(context.Background(), 1, EventWorkshopSeats, EnrollmentPayload{})
	assert.Error(t, err)
}

func TestNotifier_SubscriberReceivesSeatsAndUserEvents(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs := make(chan received, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		msgs <- received{channel, payload}
	}))

	require.NoError(t, n.PublishSeats(ctx, SeatsPayload{WorkshopID: 3, EnrolledCount: 30, MaxStudents: 30, IsFull: true}))

	var got received
	require.Eventually(t, func() bool {
		select {
		case got = <-msgs:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, BroadcastChannel, got.channel)

	var ev struct {
		Type    string       `json:"type"`
		Payload SeatsPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(got.payload), &ev))
	assert.Equal(t, EventWorkshopSeats, ev.Type)
	assert.Equal(t, SeatsPayload{WorkshopID: 3, EnrolledCount: 30, MaxStudents: 30, IsFull: true}, ev.Payload)

	require.NoError(t, n.PublishEnrollment(ctx, 9, EventEnrollmentCreated, EnrollmentPayload{EnrollmentID: 1, WorkshopID: 3, Status: "enrolled"}))
	require.Eventually(t, func() bool {
		select {
		case got = <-msgs:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "notifications:user:9", got.channel)
	assert.Contains(t, got.payload, `"type":"enrollment.created"`)
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	payloads := make(chan string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_ string, payload string) {
		payloads <- payload
	}))

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, n.PublishBroadcast(context.Background(), "after-cancel"))
	assert.Never(t, func() bool {
		select {
		case p := <-payloads:
			return p == "after-cancel"
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestNotifier_SubscriberRecoversFromPanic(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads := make(chan string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_ string, payload string) {
		if payload == "boom" {
			panic("boom")
		}
		payloads <- payload
	}))

	require.NoError(t, n.PublishBroadcast(ctx, "boom"))
	require.NoError(t, n.PublishBroadcast(ctx, "ok"))
	assert.Eventually(t, func() bool {
		select {
		case p := <-payloads:
			return p == "ok"
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

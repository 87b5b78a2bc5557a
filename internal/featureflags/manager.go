// Package featureflags evaluates the FEATURE_FLAGS setting.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	// ResetTokenInResponse returns the raw password-reset token in the request-reset response.
	ResetTokenInResponse = "reset_token_in_response"
	// ResetTokenEmail delivers the password-reset token by mail.
	ResetTokenEmail = "reset_token_email"
	// RealtimeSeats publishes seat-count updates to websocket clients.
	RealtimeSeats = "realtime_seats"
)

// defaults apply when a flag is absent from the configuration.
var defaults = map[string]string{
	ResetTokenInResponse: "on",
	ResetTokenEmail:      "off",
	RealtimeSeats:        "on",
}

// Manager evaluates feature flags defined in a comma-separated key=value list,
// e.g. "reset_token_in_response=off,realtime_seats=25%". It is built once at
// startup and never mutated.
type Manager struct {
	flags map[string]string
}

// NewManager parses raw; malformed pairs are skipped.
func NewManager(raw string) *Manager {
	flags := make(map[string]string, len(defaults))
	for k, v := range defaults {
		flags[k] = v
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		flags[key] = value
	}

	return &Manager{flags: flags}
}

// Enabled reports whether name is on for userID. Values are on/true/1, off/false/0,
// or N% for a deterministic per-user rollout. Anonymous callers (userID 0) only see
// percentage flags at 100%.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if userID == 0 {
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// On reports whether a flag is on without a user context.
func (m *Manager) On(name string) bool {
	return m.Enabled(name, 0)
}

// Raw returns a copy of the configured flag values.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}

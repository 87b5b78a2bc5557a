package server

import (
	"fmt"
	"net/http"
	"testing"

	"workshophub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistToggle(t *testing.T) {
	ts := newTestServer(t, "")
	cat := testutil.CreateCategory(t, ts.db, "frontend")
	w := testutil.CreateWorkshop(t, ts.db, cat.ID, "reactjs-workshop", 30)
	token, _ := ts.register(t, "alice")

	status, body := ts.do(t, http.MethodPost, "/api/wishlist/toggle", map[string]any{}, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "workshop_id required", body["error"])

	status, body = ts.do(t, http.MethodPost, "/api/wishlist/toggle", map[string]any{"workshop": 4242}, token)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = ts.do(t, http.MethodPost, "/api/wishlist/toggle", map[string]any{"workshop": w.ID}, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "added", body["action"])
	assert.Equal(t, true, body["wishlisted"])

	status, body = ts.do(t, http.MethodGet, "/api/workshops/reactjs-workshop", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["is_wishlisted"])

	status, body = ts.do(t, http.MethodPost, "/api/wishlist/toggle", map[string]any{"workshop_id": w.ID}, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "removed", body["action"])
	assert.Equal(t, false, body["wishlisted"])

	status, list := ts.doList(t, http.MethodGet, "/api/wishlist", token)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list)
}

func TestWishlistAddAndDelete(t *testing.T) {
	ts := newTestServer(t, "")
	cat := testutil.CreateCategory(t, ts.db, "frontend")
	w := testutil.CreateWorkshop(t, ts.db, cat.ID, "reactjs-workshop", 30)
	aliceToken, _ := ts.register(t, "alice")
	bobToken, _ := ts.register(t, "bob")

	status, body := ts.do(t, http.MethodPost, "/api/wishlist", map[string]any{"workshop_id": w.ID}, aliceToken)
	require.Equal(t, http.StatusCreated, status, body)
	entryID := uint(body["id"].(float64))
	assert.Equal(t, "reactjs-workshop", body["workshop"].(map[string]any)["slug"])

	status, body = ts.do(t, http.MethodPost, "/api/wishlist", map[string]any{"workshop_id": w.ID}, aliceToken)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	path := fmt.Sprintf("/api/wishlist/%d", entryID)
	status, _ = ts.do(t, http.MethodDelete, path, nil, bobToken)
	assert.Equal(t, http.StatusNotFound, status)

	status, list := ts.doList(t, http.MethodGet, "/api/wishlist", aliceToken)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list, 1)

	status, _ = ts.do(t, http.MethodDelete, path, nil, aliceToken)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = ts.do(t, http.MethodGet, "/api/auth/profile", nil, aliceToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["wishlist_count"])
}

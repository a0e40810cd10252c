package integration

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTransferFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	// Transfer by a non-admin is rejected and leaves the row untouched.
	resp := app.doJSON(t, http.MethodPost, "/api/admin/transfer", "voter-9", map[string]any{
		"new_admin": "voter-9",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	var identity string
	require.NoError(t, app.DB.QueryRow("SELECT identity FROM administrator").Scan(&identity))
	assert.Equal(t, adminIdentity, identity)

	// Empty new identity is invalid.
	resp = app.doJSON(t, http.MethodPost, "/api/admin/transfer", adminIdentity, map[string]any{
		"new_admin": "",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// The real transfer.
	resp = app.doJSON(t, http.MethodPost, "/api/admin/transfer", adminIdentity, map[string]any{
		"new_admin": "admin-2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "admin-2", body["admin"])

	// Admin-only operations now require the new identity.
	now := time.Now().Unix()
	payload := map[string]any{
		"name":        "Board election",
		"description": "Annual board election",
		"candidates":  []string{"A", "B"},
		"start_time":  now,
		"end_time":    now + 100,
	}

	resp = app.doJSON(t, http.MethodPost, "/api/elections", adminIdentity, payload)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = app.doJSON(t, http.MethodPost, "/api/elections", "admin-2", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	userID := uuid.New()
	token, err := CreateToken(userID, "a@example.com", secret, 1, time.Now())
	require.NoError(t, err)

	var seen uuid.UUID
	h := AuthMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   uuid.UUID
	}{
		{"valid bearer", "Bearer " + token, userID},
		{"lowercase scheme", "bearer " + token, userID},
		{"missing header", "", uuid.Nil},
		{"wrong scheme", "Basic " + token, uuid.Nil},
		{"bad token", "Bearer garbage", uuid.Nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = uuid.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			require.Equal(t, tt.want, seen)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	called := false
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, called)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{ID: uuid.New()}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.True(t, called)
}

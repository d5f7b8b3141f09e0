package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureUserID(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var gotUserID string
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}), &gotUserID
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	svc := NewService(nil, nil, "test-secret")
	token, err := svc.issueToken("user_abc")
	require.NoError(t, err)

	next, gotUserID := captureUserID(t)
	req := httptest.NewRequest(http.MethodGet, "/api/credits", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	svc.AuthMiddleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_abc", *gotUserID)
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	// Plain browser navigations (proof downloads) cannot set headers.
	svc := NewService(nil, nil, "test-secret")
	token, err := svc.issueToken("user_abc")
	require.NoError(t, err)

	next, gotUserID := captureUserID(t)
	req := httptest.NewRequest(http.MethodGet, "/api/canvases/cnv_1/proof.pdf?token="+token, nil)
	rec := httptest.NewRecorder()

	svc.AuthMiddleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_abc", *gotUserID)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	svc := NewService(nil, nil, "test-secret")
	otherToken, err := NewService(nil, nil, "other-secret").issueToken("user_abc")
	require.NoError(t, err)

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no credentials", func(r *http.Request) {}},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer not.a.jwt") }},
		{"wrong signing key", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+otherToken) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			})
			req := httptest.NewRequest(http.MethodGet, "/api/credits", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			svc.AuthMiddleware(next).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

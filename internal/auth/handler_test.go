package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegister_RejectsBadRequests(t *testing.T) {
	// Every case fails validation before the service is touched.
	h := NewHandler(nil)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing fields", `{"email":"jo@example.com"}`},
		{"short password", `{"email":"jo@example.com","password":"short","displayName":"Jo"}`},
		{"email without at-sign", `{"email":"example.com","password":"longenough","displayName":"Jo"}`},
		{"email with spaces", `{"email":"jo smith@example.com","password":"longenough","displayName":"Jo"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Register(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLogin_RejectsBadRequests(t *testing.T) {
	h := NewHandler(nil)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `not json`},
		{"missing password", `{"email":"jo@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Login(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestMe_RequiresAuthentication(t *testing.T) {
	h := NewHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jo@example.com", NormalizeEmail("  Jo@Example.COM "))
	assert.Equal(t, "jo@example.com", NormalizeEmail("jo@example.com"))
}

func TestPlausibleEmail(t *testing.T) {
	assert.True(t, plausibleEmail("jo@example.com"))
	assert.False(t, plausibleEmail("@example.com"))
	assert.False(t, plausibleEmail("jo@"))
	assert.False(t, plausibleEmail("example.com"))
	assert.False(t, plausibleEmail("jo smith@example.com"))
}

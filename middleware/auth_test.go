package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camshop-backend/utils"
)

func signedToken(t *testing.T, role string) string {
	t.Helper()
	utils.JwtKey = []byte("test-secret")
	token, err := utils.GenerateJWT("507f1f77bcf86cd799439011", "user@example.com", role)
	require.NoError(t, err)
	return token
}

func runAuth(t *testing.T, authorization string, next http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	AuthMiddleware(next).ServeHTTP(rec, req)
	return rec
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMissingHeader(t *testing.T) {
	rec := runAuth(t, "", okHandler())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error": "Missing authorization token"}`, rec.Body.String())
}

func TestAuthMalformedHeader(t *testing.T) {
	rec := runAuth(t, "Token abc", okHandler())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error": "Malformed authorization header"}`, rec.Body.String())
}

func TestAuthInvalidToken(t *testing.T) {
	utils.JwtKey = []byte("test-secret")
	rec := runAuth(t, "Bearer not-a-jwt", okHandler())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error": "Invalid or expired token"}`, rec.Body.String())
}

func TestAuthValidTokenAttachesClaims(t *testing.T) {
	token := signedToken(t, "user")

	var got *utils.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Value(UserContextKey).(*utils.Claims)
		w.WriteHeader(http.StatusOK)
	})

	rec := runAuth(t, "Bearer "+token, next)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "user@example.com", got.Email)
	assert.Equal(t, "user", got.Role)
}

func TestAdminRejectsNonAdmin(t *testing.T) {
	token := signedToken(t, "user")
	rec := runAuth(t, "Bearer "+token, AdminMiddleware(okHandler()))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error": "Admin access required"}`, rec.Body.String())
}

func TestAdminAllowsAdmin(t *testing.T) {
	token := signedToken(t, "admin")
	rec := runAuth(t, "Bearer "+token, AdminMiddleware(okHandler()))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminWithoutAuthContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	rec := httptest.NewRecorder()
	AdminMiddleware(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

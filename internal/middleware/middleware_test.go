package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ordersvc/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authedRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuth_ValidToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  userID.String(),
		"role": "customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	var got model.Principal
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	Auth(testSecret, zerolog.Nop())(next).ServeHTTP(rec, authedRequest(token))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, model.RoleCustomer, got.Role)
	assert.False(t, got.IsAdmin())
}

func TestAuth_AdminRole(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	var got model.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	Auth(testSecret, zerolog.Nop())(next).ServeHTTP(rec, authedRequest(token))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.IsAdmin())
}

func TestAuth_MissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	rec := httptest.NewRecorder()
	Auth(testSecret, zerolog.Nop())(next).ServeHTTP(rec, authedRequest(""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), model.ErrCodeUnauthorised)
}

func TestAuth_MalformedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	rec := httptest.NewRecorder()
	Auth(testSecret, zerolog.Nop())(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": "customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec := httptest.NewRecorder()
	Auth(testSecret, zerolog.Nop())(http.NotFoundHandler()).ServeHTTP(rec, authedRequest(token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": "customer",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	rec := httptest.NewRecorder()
	Auth(testSecret, zerolog.Nop())(http.NotFoundHandler()).ServeHTTP(rec, authedRequest(token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_UnknownRole(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": "superuser",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec := httptest.NewRecorder()
	Auth(testSecret, zerolog.Nop())(http.NotFoundHandler()).ServeHTTP(rec, authedRequest(token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_SubjectNotUUID(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "user-42",
		"role": "customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec := httptest.NewRecorder()
	Auth(testSecret, zerolog.Nop())(http.NotFoundHandler()).ServeHTTP(rec, authedRequest(token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORS_PreflightRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	rec := httptest.NewRecorder()

	CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached for preflight")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery_PanicReturns500(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()

	Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestLogging_PassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()

	Logging(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

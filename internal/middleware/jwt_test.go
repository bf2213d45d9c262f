package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikeit/strikeit-api/internal/utils"
)

const testSecret = "test-secret"

func newProtectedEcho(roles ...string) *echo.Echo {
	e := echo.New()
	mw := []echo.MiddlewareFunc{JWTAuth(testSecret)}
	if len(roles) > 0 {
		mw = append(mw, RequireRole(roles...))
	}
	e.GET("/whoami", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user": currentUserID(c), "role": c.Get(ContextRole)})
	}, mw...)
	return e
}

func doGet(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	valid, err := utils.NewAccessToken(testSecret, 42, "USER", time.Hour)
	require.NoError(t, err)
	expired, err := utils.NewAccessToken(testSecret, 42, "USER", -time.Minute)
	require.NoError(t, err)
	foreign, err := utils.NewAccessToken("other-secret", 42, "USER", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"valid", valid.Token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"expired", expired.Token, http.StatusUnauthorized},
		{"wrong secret", foreign.Token, http.StatusUnauthorized},
		{"garbage", "abc.def.ghi", http.StatusUnauthorized},
	}
	e := newProtectedEcho()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(e, tt.token)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := doGet(e, valid.Token)
	assert.JSONEq(t, `{"user":"42","role":"USER"}`, rec.Body.String())
}

func TestJWTAuth_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{"sub": "42", "role": "ADMIN", "exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := doGet(newProtectedEcho(), tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_StringSubject(t *testing.T) {
	claims := jwt.MapClaims{"sub": "7", "role": "USER", "exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := doGet(newProtectedEcho(), tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"7","role":"USER"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	user, err := utils.NewAccessToken(testSecret, 1, "USER", time.Hour)
	require.NoError(t, err)
	admin, err := utils.NewAccessToken(testSecret, 2, "ADMIN", time.Hour)
	require.NoError(t, err)

	e := newProtectedEcho("ADMIN")
	assert.Equal(t, http.StatusForbidden, doGet(e, user.Token).Code)
	assert.Equal(t, http.StatusOK, doGet(e, admin.Token).Code)
}

func TestSubjectID(t *testing.T) {
	tests := []struct {
		in   any
		want uint64
		ok   bool
	}{
		{float64(12), 12, true},
		{"12", 12, true},
		{float64(0), 0, false},
		{float64(1.5), 0, false},
		{"abc", 0, false},
		{"0", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := subjectID(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestCurrentUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "anon", currentUserID(c))
	c.Set(ContextUserID, uint64(9))
	assert.Equal(t, "9", currentUserID(c))
	c.Set(ContextUserID, "")
	assert.Equal(t, "anon", currentUserID(c))
}

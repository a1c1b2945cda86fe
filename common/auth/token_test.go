package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signed(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func adminRouter(v *Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", v.RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	return r
}

func TestRequireAdmin(t *testing.T) {
	v := NewVerifier(testSecret)
	r := adminRouter(v)
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "not-a-token", http.StatusUnauthorized},
		{"wrong secret", signed(t, jwt.MapClaims{"role": "admin", "exp": exp}, "other"), http.StatusUnauthorized},
		{"expired", signed(t, jwt.MapClaims{"role": "admin", "exp": time.Now().Add(-time.Minute).Unix()}, testSecret), http.StatusUnauthorized},
		{"customer", signed(t, jwt.MapClaims{"role": "customer", "exp": exp}, testSecret), http.StatusForbidden},
		{"admin", signed(t, jwt.MapClaims{"role": "admin", "user_id": "u1", "exp": exp}, testSecret), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			}
		})
	}
}

func TestRequireAdmin_Cookie(t *testing.T) {
	v := NewVerifier(testSecret)
	r := adminRouter(v)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: signed(t, jwt.MapClaims{"role": "admin", "user_id": "u2"}, testSecret)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseAndValidateToken_TypeAndSecret(t *testing.T) {
	_, err := NewVerifier("").ParseAndValidateToken("x", "")
	assert.EqualError(t, err, "JWT secret not configured")

	v := NewVerifier(testSecret)
	tok := signed(t, jwt.MapClaims{"typ": "refresh"}, testSecret)
	_, err = v.ParseAndValidateToken(tok, "access")
	assert.EqualError(t, err, "invalid token type")

	claims, err := v.ParseAndValidateToken(tok, "refresh")
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims["typ"])
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
		Issuer:     "defectdesk-test",
		ExpiresIn:  time.Hour,
	}
}

func newAuthTestRouter(signingKey []byte) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuth(signingKey))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  GetUserID(c.Request.Context()),
			"username": GetUsername(c.Request.Context()),
		})
	})
	return router
}

func TestJWTAuthRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, expiresAt, err := GenerateToken(cfg, 42, "ivanov")
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	router := newAuthTestRouter(cfg.SigningKey)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"user_id":42`)
	require.Contains(t, rec.Body.String(), `"username":"ivanov"`)
}

func TestJWTAuthRejectsBadRequests(t *testing.T) {
	cfg := testJWTConfig()
	router := newAuthTestRouter(cfg.SigningKey)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestJWTAuthRejectsWrongKey(t *testing.T) {
	cfg := testJWTConfig()
	token, _, err := GenerateToken(cfg, 42, "ivanov")
	require.NoError(t, err)

	router := newAuthTestRouter([]byte("another-key-another-key-another!"))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpiresIn = -time.Minute
	token, _, err := GenerateToken(cfg, 42, "ivanov")
	require.NoError(t, err)

	router := newAuthTestRouter(cfg.SigningKey)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
}

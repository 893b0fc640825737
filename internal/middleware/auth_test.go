package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: "tester",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protectedRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/", middleware.JWTAuth(testSecret))
	if len(roles) > 0 {
		grp.Use(middleware.RequireRole(roles...))
	}
	grp.GET("/ping", func(c *gin.Context) {
		claims := middleware.GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user": claims.UserID})
	})
	return r
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthValidToken(t *testing.T) {
	r := protectedRouter()
	w := doRequest(r, signToken(t, testSecret, middleware.RoleOperator, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	r := protectedRouter()
	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	r := protectedRouter()
	w := doRequest(r, signToken(t, "other-secret", middleware.RoleOperator, time.Hour))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	r := protectedRouter()
	w := doRequest(r, signToken(t, testSecret, middleware.RoleOperator, -time.Minute))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter(middleware.RoleSupervisor, middleware.RoleAdmin)

	w := doRequest(r, signToken(t, testSecret, middleware.RoleOperator, time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, signToken(t, testSecret, middleware.RoleSupervisor, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
}

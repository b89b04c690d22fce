// internal/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/utils"
)

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.GET("/protected", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetString("user_id"),
			"username": c.GetString("username"),
			"role":     c.GetString("user_role"),
		})
	})
	router.GET("/admin-only", AuthRequired(), AdminOnly(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router
}

func authGet(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredMissingHeader(t *testing.T) {
	router := authTestRouter()

	w := authGet(router, "/protected", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	assert.Contains(t, w.Body.String(), "Authentication required")
}

func TestAuthRequiredMalformedHeader(t *testing.T) {
	router := authTestRouter()

	for _, header := range []string{"Bearer", "Token abc", "bearer abc"} {
		w := authGet(router, "/protected", header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Contains(t, w.Body.String(), "Invalid authorization header")
	}
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	router := authTestRouter()

	w := authGet(router, "/protected", "Bearer not-a-real-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	router := authTestRouter()

	token, err := utils.GenerateJWT(uuid.New(), "admin", "admin", -1)
	require.NoError(t, err)

	w := authGet(router, "/protected", "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredValidToken(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	router := authTestRouter()

	userID := uuid.New()
	token, err := utils.GenerateJWT(userID, "admin", "admin", 1)
	require.NoError(t, err)

	w := authGet(router, "/protected", "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), `"username":"admin"`)
}

func TestAdminOnlyRejectsStaff(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	router := authTestRouter()

	token, err := utils.GenerateJWT(uuid.New(), "picker", "staff", 1)
	require.NoError(t, err)

	w := authGet(router, "/admin-only", "Bearer "+token)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
	assert.Contains(t, w.Body.String(), "Admin access required")
}

func TestAdminOnlyAllowsAdmin(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	router := authTestRouter()

	token, err := utils.GenerateJWT(uuid.New(), "admin", "admin", 1)
	require.NoError(t, err)

	w := authGet(router, "/admin-only", "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
}

package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenRouter(o *OAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/oauth/token", o.HandleToken)
	return router
}

func TestClientCredentialsFlow(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret, time.Hour)
	createClient(t, db, "test_client_id", "test_secret", models.RoleAdmin)

	tokenReq := "grant_type=client_credentials&client_id=test_client_id&client_secret=test_secret&scope=read"
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", bytes.NewBufferString(tokenReq))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	tokenRouter(oauthService).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Bearer", response["token_type"])
	assert.Equal(t, float64(3600), response["expires_in"])

	claims := parse(t, response["access_token"].(string))
	assert.Equal(t, models.RoleAdmin, claims["role"])
}

func TestClientCredentialsBasicAuth(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret, time.Hour)
	createClient(t, db, "basic_client", "basic_secret", models.RoleKitchen)

	req := httptest.NewRequest(http.MethodPost, "/oauth/token", bytes.NewBufferString("grant_type=client_credentials"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("basic_client", "basic_secret")

	w := httptest.NewRecorder()
	tokenRouter(oauthService).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestClientCredentialsInvalidSecret(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret, time.Hour)
	createClient(t, db, "test_client_id", "correct_secret", models.RoleAdmin)

	tokenReq := "grant_type=client_credentials&client_id=test_client_id&client_secret=wrong_secret&scope=read"
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", bytes.NewBufferString(tokenReq))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	tokenRouter(oauthService).ServeHTTP(w, req)

	assert.True(t, w.Code >= 400)
}

func TestUnsupportedGrantType(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret, time.Hour)
	createClient(t, db, "test_client_id", "secret", models.RoleAdmin)

	tokenReq := "grant_type=password&client_id=test_client_id&client_secret=secret&username=a&password=b"
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", bytes.NewBufferString(tokenReq))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	tokenRouter(oauthService).ServeHTTP(w, req)

	assert.True(t, w.Code >= 400)
}

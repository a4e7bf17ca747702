package auth

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-pizzeria/internal/database/dbtest"
	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-jwt-secret-key-32-characters"

func setupTestDB(t *testing.T) *gorm.DB {
	return dbtest.New(t)
}

// createClient stores a staff user with role and a client owned by it
func createClient(t *testing.T, db *gorm.DB, clientID, secret, role string) models.User {
	t.Helper()
	user := models.User{Email: clientID + "@pizza.test", Name: "Owner", Role: role}
	require.NoError(t, user.SetPassword("pw"))
	require.NoError(t, db.Create(&user).Error)

	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.OAuthClient{
		ID:         clientID,
		Secret:     string(hashedSecret),
		Domain:     "http://localhost",
		UserID:     user.ID,
		Scopes:     "read",
		GrantTypes: "client_credentials",
	}).Error)
	return user
}

func parse(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestOAuthServerInitialization(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, testSecret, time.Hour)
	assert.NotNil(t, oauthService)
	assert.NotNil(t, oauthService.GetServer())
}

func TestJWTTokenGeneration(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret, time.Hour)
	user := createClient(t, db, "pos_terminal", "test_secret", models.RoleKitchen)

	tokenInfo, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "pos_terminal",
		ClientSecret: "test_secret",
		Scope:        "read",
	})
	require.NoError(t, err)

	claims := parse(t, tokenInfo.GetAccess())
	assert.Equal(t, "1", claims["uid"])
	assert.Equal(t, models.RoleKitchen, claims["role"])
	assert.Equal(t, "pos_terminal", claims["aud"])
	assert.Contains(t, claims, "iat")
	assert.Contains(t, claims, "exp")
	assert.Equal(t, uint(1), user.ID)

	var stored models.OAuthToken
	require.NoError(t, db.Where("client_id = ?", "pos_terminal").First(&stored).Error)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, "1", *stored.UserID)
	assert.Nil(t, stored.RefreshToken)

	info, err := NewGormTokenStore(db).GetByAccess(context.Background(), tokenInfo.GetAccess())
	require.NoError(t, err)
	assert.Equal(t, "pos_terminal", info.GetClientID())
}

func TestJWTTokenGenerationRejectsWrongSecret(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret, time.Hour)
	createClient(t, db, "pos_terminal", "test_secret", models.RoleKitchen)

	_, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "pos_terminal",
		ClientSecret: "nope",
	})
	assert.Error(t, err)
}

func TestClientStoreIntegration(t *testing.T) {
	db := setupTestDB(t)
	createClient(t, db, "integration_test_client", "secret", models.RoleManager)

	clientStore := NewGormClientStore(db)
	retrievedClient, err := clientStore.GetByID(context.Background(), "integration_test_client")
	require.NoError(t, err)
	assert.Equal(t, "1", retrievedClient.GetUserID())

	_, err = clientStore.GetByID(context.Background(), "unknown")
	assert.Error(t, err)
}

func TestTokenStoreHasNoCodes(t *testing.T) {
	store := NewGormTokenStore(setupTestDB(t))
	_, err := store.GetByCode(context.Background(), "abc")
	assert.ErrorIs(t, err, errCodeGrantUnsupported)
	assert.NoError(t, store.RemoveByCode(context.Background(), "abc"))
}

func TestIssueStaffToken(t *testing.T) {
	user := &models.User{ID: 7, Role: models.RoleManager}
	now := time.Now().Truncate(time.Second)

	token, expires, err := IssueStaffToken([]byte(testSecret), user, 12*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(12*time.Hour), expires)

	claims := parse(t, token)
	assert.Equal(t, "7", claims["uid"])
	assert.Equal(t, models.RoleManager, claims["role"])
	assert.Equal(t, float64(now.Unix()), claims["iat"])
	assert.Equal(t, float64(expires.Unix()), claims["exp"])
}

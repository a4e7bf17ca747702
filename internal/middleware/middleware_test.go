package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("middleware-test-secret")

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func staffToken(t *testing.T, role string) string {
	now := time.Now()
	return sign(t, jwt.MapClaims{"uid": "3", "role": role, "iat": now.Unix(), "exp": now.Add(time.Hour).Unix()})
}

func apiRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api", StaffAuth(secret), RequireRole(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": c.GetUint(ContextUserID), "role": c.GetString(ContextUserRole)})
	})
	return r
}

func TestStaffAuthBearer(t *testing.T) {
	r := apiRouter(KitchenRoles...)

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken(t, "kitchen"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":3,"role":"kitchen"}`, w.Body.String())
}

func TestStaffAuthCookie(t *testing.T) {
	r := apiRouter(ManagerRoles...)

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: staffToken(t, "manager")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStaffAuthRejects(t *testing.T) {
	r := apiRouter(KitchenRoles...)
	now := time.Now()

	cases := map[string]string{
		"missing":    "",
		"scheme":     "Basic abc",
		"garbage":    "Bearer not-a-jwt",
		"expired":    "Bearer " + sign(t, jwt.MapClaims{"uid": "3", "role": "kitchen", "exp": now.Add(-time.Minute).Unix()}),
		"no exp":     "Bearer " + sign(t, jwt.MapClaims{"uid": "3", "role": "kitchen"}),
		"no uid":     "Bearer " + sign(t, jwt.MapClaims{"role": "kitchen", "exp": now.Add(time.Hour).Unix()}),
		"bad role":   "Bearer " + sign(t, jwt.MapClaims{"uid": "3", "role": "user", "exp": now.Add(time.Hour).Unix()}),
		"zero uid":   "Bearer " + sign(t, jwt.MapClaims{"uid": "0", "role": "kitchen", "exp": now.Add(time.Hour).Unix()}),
		"alg switch": "Bearer " + jwtNone(t),
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func jwtNone(t *testing.T) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": "1", "role": "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

func TestRequireRoleForbidden(t *testing.T) {
	r := apiRouter(ManagerRoles...)

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken(t, "kitchen"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient permissions")
}

func TestStaffPageRedirectsToLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/kitchen/", StaffPage(secret, "/staff/login"), RequireRole(KitchenRoles...), func(c *gin.Context) {
		c.String(http.StatusOK, "dashboard")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/kitchen/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/staff/login?next=%2Fkitchen%2F", w.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/kitchen/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: staffToken(t, "kitchen")})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dashboard", w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(2)
	r.Any("/checkout", rl.LimitMethods(http.MethodPost), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checkout", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/checkout", nil))
	assert.Equal(t, http.StatusOK, w.Code, "GET is not limited")
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://pos.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://pos.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://pos.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

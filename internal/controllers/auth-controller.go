package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-pizzeria/internal/auth"
	"github.com/franciscosanchezn/gin-pizzeria/internal/middleware"
	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/franciscosanchezn/gin-pizzeria/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// LoginPath is where staff pages send visitors without a session
const LoginPath = "/staff/login"

type AuthController struct {
	userService  services.UserService
	jwtSecret    []byte
	tokenTTL     time.Duration
	secureCookie bool
	now          services.Clock
}

func NewAuthController(userService services.UserService, jwtSecret string, tokenTTL time.Duration, secureCookie bool) *AuthController {
	return &AuthController{
		userService:  userService,
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
		now:          time.Now,
	}
}

// dashboardFor is the landing page of a role after login
func dashboardFor(role string) string {
	if role == models.RoleKitchen {
		return "/kitchen/"
	}
	return "/managers/"
}

// safeNext only accepts local absolute paths
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

// LoginForm renders the staff login page
func (ac *AuthController) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Title": "Staff login",
		"Next":  safeNext(c.Query("next")),
		"Email": "",
		"Error": "",
	})
}

// Login checks the form credentials and stores the token in the access_token cookie
func (ac *AuthController) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	next := safeNext(c.PostForm("next"))

	user, err := ac.userService.Authenticate(c.Request.Context(), email, c.PostForm("password"))
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			log.WithError(err).Error("Staff login failed")
		}
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Title": "Staff login",
			"Next":  next,
			"Email": email,
			"Error": "Invalid email or password.",
		})
		return
	}

	token, expires, err := auth.IssueStaffToken(ac.jwtSecret, user, ac.tokenTTL, ac.now())
	if err != nil {
		log.WithError(err).Error("Error signing staff token")
		c.String(http.StatusInternalServerError, "Unable to sign in. Please try again.")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(time.Until(expires).Seconds()), "/", "", ac.secureCookie, true)
	log.WithFields(log.Fields{"user_id": user.ID, "role": user.Role}).Info("Staff signed in")

	if next == "" {
		next = dashboardFor(user.Role)
	}
	c.Redirect(http.StatusFound, next)
}

// Logout clears the session cookie
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", ac.secureCookie, true)
	c.Redirect(http.StatusFound, LoginPath)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// APILogin godoc
// @Summary Staff login
// @Description Exchange staff credentials for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Router /api/v1/auth/login [post]
func (ac *AuthController) APILogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrBadRequest, "Invalid request body")
		return
	}

	user, err := ac.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, models.ErrUnauthorized, "Invalid credentials")
			return
		}
		respondServiceError(c, err, models.ErrNotFound)
		return
	}

	token, _, err := auth.IssueStaffToken(ac.jwtSecret, user, ac.tokenTTL, ac.now())
	if err != nil {
		respondServiceError(c, err, models.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(ac.tokenTTL.Seconds()),
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

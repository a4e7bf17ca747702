package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/franciscosanchezn/gin-pizzeria/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// respondError writes a models.APIError with the given status
func respondError(c *gin.Context, status int, code, message string, details ...map[string]interface{}) {
	c.JSON(status, models.NewAPIError(code, message, details...))
}

// respondServiceError maps service sentinel errors to HTTP responses
func respondServiceError(c *gin.Context, err error, notFoundCode string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundCode, "Resource not found")
	case errors.Is(err, services.ErrInvalidTransition):
		respondError(c, http.StatusConflict, models.ErrInvalidTransition, "Status transition not allowed")
	case errors.Is(err, services.ErrUserExists):
		respondError(c, http.StatusConflict, models.ErrConflict, "User already exists")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		respondError(c, http.StatusConflict, models.ErrConflict, "Resource already exists")
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		respondError(c, http.StatusInternalServerError, models.ErrInternalServer, "Internal server error")
	}
}

// uintParam parses a positive numeric path parameter
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

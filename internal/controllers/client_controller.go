package controllers

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/gin-pizzeria/internal/middleware"
	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/franciscosanchezn/gin-pizzeria/internal/services"
	"github.com/gin-gonic/gin"
)

type ClientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

type clientRequest struct {
	Name   string `json:"name" binding:"required"`
	Domain string `json:"domain"`
	Scopes string `json:"scopes"`
}

// CreateClient godoc
// @Summary Create OAuth2 client
// @Description Register a machine client acting with the caller's role. The secret is returned only once.
// @Tags OAuth2 Clients
// @Accept json
// @Produce json
// @Param client body clientRequest true "Client details"
// @Success 201 {object} map[string]interface{} "Client created with client_id and client_secret"
// @Failure 400 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrBadRequest, "Invalid request body")
		return
	}

	issued, err := cc.clientService.CreateClient(c.Request.Context(), c.GetUint(middleware.ContextUserID), services.NewClient{
		Name:   req.Name,
		Domain: req.Domain,
		Scopes: req.Scopes,
	})
	if err != nil {
		respondServiceError(c, err, models.ErrClientNotFound)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"client_id":     issued.Client.ID,
		"client_secret": issued.Secret,
		"name":          issued.Client.Name,
		"scopes":        issued.Client.Scopes,
		"grant_types":   issued.Client.GrantTypes,
	})
}

// ListClients godoc
// @Summary List OAuth2 clients
// @Description Get all OAuth2 clients owned by the authenticated admin
// @Tags OAuth2 Clients
// @Produce json
// @Success 200 {array} models.OAuthClient
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	clients, err := cc.clientService.GetClientsByUserID(c.Request.Context(), c.GetUint(middleware.ContextUserID))
	if err != nil {
		respondServiceError(c, err, models.ErrClientNotFound)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// DeleteClient godoc
// @Summary Delete OAuth2 client
// @Description Delete an OAuth2 client owned by the authenticated admin
// @Tags OAuth2 Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 204 "Client deleted successfully"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	err := cc.clientService.DeleteClient(c.Request.Context(), c.Param("id"), c.GetUint(middleware.ContextUserID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(c, http.StatusNotFound, models.ErrClientNotFound, "Client not found")
			return
		}
		respondServiceError(c, err, models.ErrClientNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

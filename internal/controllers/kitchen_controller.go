package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-pizzeria/internal/middleware"
	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/franciscosanchezn/gin-pizzeria/internal/realtime"
	"github.com/franciscosanchezn/gin-pizzeria/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// KitchenController serves the kitchen dashboard and its JSON API
type KitchenController struct {
	kitchen services.KitchenService
	hub     *realtime.Hub
}

func NewKitchenController(kitchen services.KitchenService, hub *realtime.Hub) *KitchenController {
	return &KitchenController{kitchen: kitchen, hub: hub}
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" form:"status" binding:"required"`
}

// Dashboard renders the kitchen page shell
func (kc *KitchenController) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "kitchen.html", gin.H{
		"Title": "Kitchen",
		"Role":  c.GetString(middleware.ContextUserRole),
	})
}

// OpenOrders godoc
// @Summary Open kitchen orders
// @Description Today's orders that have not left the kitchen, newest first
// @Tags kitchen
// @Produce json
// @Success 200 {object} map[string][]services.KitchenOrder
// @Failure 401 {object} models.OAuth2Error
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /kitchen/api/orders/ [get]
func (kc *KitchenController) OpenOrders(c *gin.Context) {
	orders, err := kc.kitchen.OpenOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, models.ErrOrderNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// SendForDelivery godoc
// @Summary Send an order for delivery
// @Description Marks the order out for delivery; repeated calls are no-ops
// @Tags kitchen
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /kitchen/api/orders/{id}/send/ [post]
func (kc *KitchenController) SendForDelivery(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		respondError(c, http.StatusNotFound, models.ErrOrderNotFound, "Order not found")
		return
	}

	change, err := kc.kitchen.SendForDelivery(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, models.ErrOrderNotFound)
		return
	}
	kc.announce(change)
	c.JSON(http.StatusOK, gin.H{"ok": true, "order_id": change.OrderID, "status": change.Status})
}

// UpdateStatus godoc
// @Summary Move an order forward
// @Description Allowed: new to preparing, new or preparing to out_for_delivery, out_for_delivery to delivered
// @Tags kitchen
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param body body statusRequest true "Target status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /kitchen/api/orders/{id}/status/ [post]
func (kc *KitchenController) UpdateStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		respondError(c, http.StatusNotFound, models.ErrOrderNotFound, "Order not found")
		return
	}
	var req statusRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrBadRequest, "Invalid request body")
		return
	}

	change, err := kc.kitchen.Transition(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err, models.ErrOrderNotFound)
		return
	}
	kc.announce(change)
	c.JSON(http.StatusOK, gin.H{"ok": true, "order_id": change.OrderID, "status": change.Status})
}

func (kc *KitchenController) announce(change services.StatusChange) {
	if !change.Changed || kc.hub == nil {
		return
	}
	kc.hub.Broadcast(realtime.EventOrderStatus, change)
}

// Feed upgrades to a websocket that receives order events
func (kc *KitchenController) Feed(c *gin.Context) {
	if err := kc.hub.Serve(c.Writer, c.Request, c.GetString(middleware.ContextUserRole)); err != nil {
		log.WithError(err).Debug("Websocket upgrade failed")
	}
}

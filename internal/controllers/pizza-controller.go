package controllers

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/franciscosanchezn/gin-pizzeria/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PizzaController handles the JSON menu API
type PizzaController interface {
	// GetAllPizzas retrieves the menu
	GetAllPizzas(c *gin.Context)
	// GetPizzaByID retrieves a pizza by its ID
	GetPizzaByID(c *gin.Context)
	// CreatePizza creates a new pizza with its variants
	CreatePizza(c *gin.Context)
	// UpdatePizza updates an existing pizza
	UpdatePizza(c *gin.Context)
	// DeletePizza deletes a pizza by its ID
	DeletePizza(c *gin.Context)
}

type controller struct {
	service services.PizzaService
}

// NewPizzaController creates a new instance of PizzaController
func NewPizzaController(service services.PizzaService) *controller {
	return &controller{service: service}
}

type variantRequest struct {
	Size      models.Size     `json:"size" binding:"required"`
	Slug      string          `json:"slug"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type pizzaRequest struct {
	Name        string           `json:"name" binding:"required"`
	Category    string           `json:"category" binding:"required"`
	Ingredients string           `json:"ingredients"`
	Variants    []variantRequest `json:"variants"`
}

func (r pizzaRequest) validate() map[string]interface{} {
	details := map[string]interface{}{}
	if strings.TrimSpace(r.Name) == "" {
		details["name"] = "required"
	}
	if strings.TrimSpace(r.Category) == "" {
		details["category"] = "required"
	}
	seen := map[models.Size]bool{}
	for _, v := range r.Variants {
		switch {
		case !v.Size.Valid():
			details["variants"] = "unknown size " + string(v.Size)
		case seen[v.Size]:
			details["variants"] = "duplicate size " + string(v.Size)
		case !v.UnitPrice.IsPositive():
			details["variants"] = "unit_price must be positive"
		}
		seen[v.Size] = true
	}
	return details
}

func (r pizzaRequest) model() models.Pizza {
	pizza := models.Pizza{
		Name:        strings.TrimSpace(r.Name),
		Category:    strings.TrimSpace(r.Category),
		Ingredients: strings.TrimSpace(r.Ingredients),
	}
	for _, v := range r.Variants {
		slug := strings.TrimSpace(v.Slug)
		if slug == "" {
			slug = models.VariantSlug(pizza.Name, v.Size)
		}
		pizza.Variants = append(pizza.Variants, models.PizzaVariant{
			Size:      v.Size,
			Slug:      slug,
			UnitPrice: v.UnitPrice.Round(2),
		})
	}
	return pizza
}

// GetAllPizzas godoc
// @Summary Get all pizzas
// @Description Get the menu ordered by name, each pizza with its variants
// @Tags pizzas
// @Accept json
// @Produce json
// @Param category query string false "Filter by category"
// @Success 200 {array} models.Pizza
// @Failure 500 {object} models.APIError
// @Router /api/v1/public/pizzas [get]
func (c *controller) GetAllPizzas(ctx *gin.Context) {
	pizzas, err := c.service.GetAllPizzas(ctx.Request.Context(), ctx.Query("category"))
	if err != nil {
		respondServiceError(ctx, err, models.ErrPizzaNotFound)
		return
	}
	ctx.JSON(http.StatusOK, pizzas)
}

// GetPizzaByID godoc
// @Summary Get pizza by ID
// @Description Get a single pizza with its variants
// @Tags pizzas
// @Accept json
// @Produce json
// @Param id path int true "Pizza ID"
// @Success 200 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/pizzas/{id} [get]
func (c *controller) GetPizzaByID(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		respondError(ctx, http.StatusBadRequest, models.ErrBadRequest, "Invalid pizza ID format")
		return
	}

	pizza, err := c.service.GetPizzaByID(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err, models.ErrPizzaNotFound)
		return
	}
	ctx.JSON(http.StatusOK, pizza)
}

// CreatePizza godoc
// @Summary Create a new pizza
// @Description Create a pizza together with its sized variants
// @Tags pizzas
// @Accept json
// @Produce json
// @Param pizza body pizzaRequest true "Pizza"
// @Success 201 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/pizzas [post]
func (c *controller) CreatePizza(ctx *gin.Context) {
	var req pizzaRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, models.ErrBadRequest, "Invalid request body")
		return
	}
	if details := req.validate(); len(details) > 0 {
		respondError(ctx, http.StatusBadRequest, models.ErrValidationFailed, "Invalid pizza", details)
		return
	}

	created, err := c.service.CreatePizza(ctx.Request.Context(), req.model())
	if err != nil {
		respondServiceError(ctx, err, models.ErrPizzaNotFound)
		return
	}
	log.WithFields(log.Fields{"pizza_id": created.ID, "user_id": ctx.GetUint("userID")}).Info("Pizza created")
	ctx.JSON(http.StatusCreated, created)
}

// UpdatePizza godoc
// @Summary Update a pizza
// @Description Update name, category and ingredients of a pizza
// @Tags pizzas
// @Accept json
// @Produce json
// @Param id path int true "Pizza ID"
// @Param pizza body pizzaRequest true "Pizza"
// @Success 200 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/pizzas/{id} [put]
func (c *controller) UpdatePizza(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		respondError(ctx, http.StatusBadRequest, models.ErrBadRequest, "Invalid pizza ID format")
		return
	}

	var req pizzaRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, models.ErrBadRequest, "Invalid request body")
		return
	}
	if details := req.validate(); len(details) > 0 {
		respondError(ctx, http.StatusBadRequest, models.ErrValidationFailed, "Invalid pizza", details)
		return
	}

	pizza := req.model()
	pizza.ID = id
	updated, err := c.service.UpdatePizza(ctx.Request.Context(), pizza)
	if err != nil {
		respondServiceError(ctx, err, models.ErrPizzaNotFound)
		return
	}
	ctx.JSON(http.StatusOK, updated)
}

// DeletePizza godoc
// @Summary Delete a pizza
// @Description Delete a pizza and its variants
// @Tags pizzas
// @Produce json
// @Param id path int true "Pizza ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/pizzas/{id} [delete]
func (c *controller) DeletePizza(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		respondError(ctx, http.StatusBadRequest, models.ErrBadRequest, "Invalid pizza ID format")
		return
	}

	if err := c.service.DeletePizza(ctx.Request.Context(), id); err != nil {
		respondServiceError(ctx, err, models.ErrPizzaNotFound)
		return
	}
	log.WithField("pizza_id", id).Info("Pizza deleted")
	ctx.Status(http.StatusNoContent)
}

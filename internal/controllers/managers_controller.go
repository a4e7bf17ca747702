package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-pizzeria/internal/middleware"
	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/franciscosanchezn/gin-pizzeria/internal/services"
	"github.com/gin-gonic/gin"
)

// ManagersController serves the analytics dashboards
type ManagersController struct {
	analytics services.AnalyticsService
}

func NewManagersController(analytics services.AnalyticsService) *ManagersController {
	return &ManagersController{analytics: analytics}
}

// Dashboard renders the overview page shell
func (mc *ManagersController) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "managers.html", gin.H{"Title": "Managers", "Role": c.GetString(middleware.ContextUserRole)})
}

// LongTerm renders the long-term page shell
func (mc *ManagersController) LongTerm(c *gin.Context) {
	c.HTML(http.StatusOK, "long_term.html", gin.H{"Title": "Long-term sales", "Role": c.GetString(middleware.ContextUserRole)})
}

// respond writes either the analytics payload or a 500
func respond(c *gin.Context, payload interface{}, err error) {
	if err != nil {
		respondServiceError(c, err, models.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// Summary godoc
// @Summary Headline figures
// @Tags managers
// @Produce json
// @Success 200 {object} services.Summary
// @Security BearerAuth
// @Router /managers/api/summary/ [get]
func (mc *ManagersController) Summary(c *gin.Context) {
	summary, err := mc.analytics.Summary(c.Request.Context())
	respond(c, summary, err)
}

// SalesTimeseries godoc
// @Summary Daily revenue for the last 30 days
// @Tags managers
// @Produce json
// @Success 200 {object} map[string][]services.DayPoint
// @Security BearerAuth
// @Router /managers/api/sales_timeseries/ [get]
func (mc *ManagersController) SalesTimeseries(c *gin.Context) {
	points, err := mc.analytics.SalesTimeseries(c.Request.Context())
	respond(c, gin.H{"points": points}, err)
}

// StatusCounts godoc
// @Summary Today's orders by status
// @Tags managers
// @Produce json
// @Success 200 {object} map[string][]services.StatusCount
// @Security BearerAuth
// @Router /managers/api/status_counts/ [get]
func (mc *ManagersController) StatusCounts(c *gin.Context) {
	counts, err := mc.analytics.StatusCounts(c.Request.Context())
	respond(c, gin.H{"counts": counts}, err)
}

// TopPizzas godoc
// @Summary Best selling pizzas of the last 30 days
// @Tags managers
// @Produce json
// @Success 200 {object} map[string][]services.TopPizza
// @Security BearerAuth
// @Router /managers/api/top_pizzas/ [get]
func (mc *ManagersController) TopPizzas(c *gin.Context) {
	top, err := mc.analytics.TopPizzas(c.Request.Context())
	respond(c, gin.H{"top": top}, err)
}

// TopCategories godoc
// @Summary Categories by revenue over the last 30 days
// @Tags managers
// @Produce json
// @Success 200 {object} map[string][]services.TopCategory
// @Security BearerAuth
// @Router /managers/api/top_categories/ [get]
func (mc *ManagersController) TopCategories(c *gin.Context) {
	top, err := mc.analytics.TopCategories(c.Request.Context())
	respond(c, gin.H{"top": top}, err)
}

// Monthly godoc
// @Summary Revenue and orders per month
// @Tags managers
// @Produce json
// @Success 200 {object} map[string][]services.MonthPoint
// @Security BearerAuth
// @Router /managers/api/monthly/ [get]
func (mc *ManagersController) Monthly(c *gin.Context) {
	points, err := mc.analytics.Monthly(c.Request.Context())
	respond(c, gin.H{"points": points}, err)
}

// CategoryMonthly godoc
// @Summary Revenue per month and category
// @Tags managers
// @Produce json
// @Success 200 {object} map[string][]services.CategoryMonth
// @Security BearerAuth
// @Router /managers/api/category_monthly/ [get]
func (mc *ManagersController) CategoryMonthly(c *gin.Context) {
	rows, err := mc.analytics.CategoryMonthly(c.Request.Context())
	respond(c, gin.H{"rows": rows}, err)
}

// HourlyHeatmap godoc
// @Summary Orders per weekday and hour
// @Tags managers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /managers/api/hourly_heatmap/ [get]
func (mc *ManagersController) HourlyHeatmap(c *gin.Context) {
	rows, err := mc.analytics.HourlyHeatmap(c.Request.Context())
	respond(c, gin.H{"rows": rows, "weekday_labels": services.WeekdayLabels}, err)
}

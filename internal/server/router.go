// Package server assembles the gin engine serving the shop, the staff dashboards and
// the JSON API.
package server

import (
	"fmt"
	"net/http"
	"time"

	_ "github.com/franciscosanchezn/gin-pizzeria/docs" // registers the swagger docs
	"github.com/franciscosanchezn/gin-pizzeria/internal/auth"
	"github.com/franciscosanchezn/gin-pizzeria/internal/cart"
	"github.com/franciscosanchezn/gin-pizzeria/internal/config"
	"github.com/franciscosanchezn/gin-pizzeria/internal/controllers"
	"github.com/franciscosanchezn/gin-pizzeria/internal/middleware"
	"github.com/franciscosanchezn/gin-pizzeria/internal/realtime"
	"github.com/franciscosanchezn/gin-pizzeria/internal/services"
	"github.com/franciscosanchezn/gin-pizzeria/internal/web"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Options tune the parts of the router that tests need to control
type Options struct {
	// Now replaces the wall clock of the services
	Now services.Clock
	// ExternalID replaces the web order id generator
	ExternalID services.ExternalIDFunc
}

// NewRouter builds the engine with every route registered
func NewRouter(conf *config.Config, db *gorm.DB, hub *realtime.Hub, opts Options) (*gin.Engine, error) {
	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if hub == nil {
		hub = realtime.NewHub()
	}

	loc := conf.Location()
	secure := conf.Environment == "production"
	jwtSecret := []byte(conf.JWTSecret)

	pizzaService := services.NewPizzaService(db)
	orderService := services.NewOrderService(db, opts.Now, opts.ExternalID)
	kitchenService := services.NewKitchenService(db, loc, opts.Now)
	analyticsService := services.NewAnalyticsService(db, loc, opts.Now)
	userService := services.NewUserService(db)
	clientService := services.NewClientService(db)
	oauthService := auth.NewOAuthService(db, conf.JWTSecret, conf.TokenTTL)

	pizzaController := controllers.NewPizzaController(pizzaService)
	shopController := controllers.NewShopController(cart.NewStore(conf.SessionSecret, secure), pizzaService, orderService, hub, loc)
	kitchenController := controllers.NewKitchenController(kitchenService, hub)
	managersController := controllers.NewManagersController(analyticsService)
	authController := controllers.NewAuthController(userService, conf.JWTSecret, conf.TokenTTL, secure)
	clientController := controllers.NewClientController(clientService)
	checkoutLimiter := middleware.NewRateLimiter(conf.CheckoutRatePerMinute)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	router.SetHTMLTemplate(templates)

	router.GET("/health", healthCheckHandler)

	// Shop
	router.GET("/", shopController.Menu)
	router.Any("/add", shopController.AddToCart)
	router.GET("/cart", shopController.ViewCart)
	router.POST("/cart", shopController.UpdateCart)
	router.Match([]string{http.MethodGet, http.MethodPost}, "/checkout",
		checkoutLimiter.LimitMethods(http.MethodPost), shopController.Checkout)
	router.GET("/success/:order_id", shopController.Success)

	// Staff sessions
	router.GET(controllers.LoginPath, authController.LoginForm)
	router.POST(controllers.LoginPath, authController.Login)
	router.POST("/staff/logout", authController.Logout)
	router.POST("/oauth/token", oauthService.HandleToken)

	// Kitchen
	kitchenPages := router.Group("/kitchen")
	kitchenPages.Use(middleware.StaffPage(jwtSecret, controllers.LoginPath), middleware.RequireRole(middleware.KitchenRoles...))
	{
		kitchenPages.GET("/", kitchenController.Dashboard)
		kitchenPages.GET("/ws", kitchenController.Feed)
	}
	kitchenAPI := router.Group("/kitchen/api")
	kitchenAPI.Use(middleware.StaffAuth(jwtSecret), middleware.RequireRole(middleware.KitchenRoles...))
	{
		kitchenAPI.GET("/orders/", kitchenController.OpenOrders)
		kitchenAPI.POST("/orders/:id/send/", kitchenController.SendForDelivery)
		kitchenAPI.POST("/orders/:id/status/", kitchenController.UpdateStatus)
	}

	// Managers
	managerPages := router.Group("/managers")
	managerPages.Use(middleware.StaffPage(jwtSecret, controllers.LoginPath), middleware.RequireRole(middleware.ManagerRoles...))
	{
		managerPages.GET("/", managersController.Dashboard)
		managerPages.GET("/long-term/", managersController.LongTerm)
	}
	managerAPI := router.Group("/managers/api")
	managerAPI.Use(middleware.StaffAuth(jwtSecret), middleware.RequireRole(middleware.ManagerRoles...))
	{
		managerAPI.GET("/summary/", managersController.Summary)
		managerAPI.GET("/sales_timeseries/", managersController.SalesTimeseries)
		managerAPI.GET("/status_counts/", managersController.StatusCounts)
		managerAPI.GET("/top_pizzas/", managersController.TopPizzas)
		managerAPI.GET("/top_categories/", managersController.TopCategories)
		managerAPI.GET("/monthly/", managersController.Monthly)
		managerAPI.GET("/category_monthly/", managersController.CategoryMonthly)
		managerAPI.GET("/hourly_heatmap/", managersController.HourlyHeatmap)
	}

	// JSON API
	v1 := router.Group("/api/v1")
	v1.Use(middleware.CORS(conf.CORSOrigins))
	{
		// preflight requests need a route for the CORS middleware to run on
		v1.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		publicAPI := v1.Group("/public")
		{
			publicAPI.GET("/pizzas", pizzaController.GetAllPizzas)
			publicAPI.GET("/pizzas/:id", pizzaController.GetPizzaByID)
		}

		v1.POST("/auth/login", authController.APILogin)

		adminAPI := v1.Group("/admin")
		adminAPI.Use(middleware.StaffAuth(jwtSecret), middleware.RequireRole(middleware.AdminRoles...))
		{
			adminAPI.POST("/pizzas", pizzaController.CreatePizza)
			adminAPI.PUT("/pizzas/:id", pizzaController.UpdatePizza)
			adminAPI.DELETE("/pizzas/:id", pizzaController.DeletePizza)

			adminAPI.POST("/clients", clientController.CreateClient)
			adminAPI.GET("/clients", clientController.ListClients)
			adminAPI.DELETE("/clients/:id", clientController.DeleteClient)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router, nil
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-pizzeria",
	})
}

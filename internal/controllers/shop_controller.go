package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-pizzeria/internal/cart"
	"github.com/franciscosanchezn/gin-pizzeria/internal/realtime"
	"github.com/franciscosanchezn/gin-pizzeria/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Notifier receives events that connected dashboards should hear about
type Notifier interface {
	Broadcast(event string, data interface{})
}

// ShopController serves the public menu, the cart and the checkout pages
type ShopController struct {
	carts    *cart.Store
	pizzas   services.PizzaService
	orders   services.OrderService
	notifier Notifier
	loc      *time.Location
}

func NewShopController(carts *cart.Store, pizzas services.PizzaService, orders services.OrderService, notifier Notifier, loc *time.Location) *ShopController {
	if loc == nil {
		loc = time.UTC
	}
	return &ShopController{carts: carts, pizzas: pizzas, orders: orders, notifier: notifier, loc: loc}
}

// render adds the layout data shared by every shop page
func (sc *ShopController) render(c *gin.Context, status int, name, title string, data gin.H) {
	current, err := sc.carts.Load(c.Request)
	if err != nil {
		log.WithError(err).Debug("Unreadable cart session")
	}
	data["Title"] = title
	data["CartCount"] = current.Count()
	data["Flashes"] = sc.carts.Flashes(c.Writer, c.Request)
	c.HTML(status, name, data)
}

func (sc *ShopController) flash(c *gin.Context, level, message string) {
	if err := sc.carts.AddFlash(c.Writer, c.Request, level, message); err != nil {
		log.WithError(err).Warn("Error saving flash message")
	}
}

func (sc *ShopController) fail(c *gin.Context, err error) {
	log.WithError(err).WithField("path", c.Request.URL.Path).Error("Shop request failed")
	c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
}

// Menu renders all pizzas with their sizes
func (sc *ShopController) Menu(c *gin.Context) {
	pizzas, err := sc.pizzas.GetAllPizzas(c.Request.Context(), "")
	if err != nil {
		sc.fail(c, err)
		return
	}
	sc.render(c, http.StatusOK, "menu.html", "Menu", gin.H{"Pizzas": pizzas})
}

// AddToCart adds a variant to the visitor's cart
func (sc *ShopController) AddToCart(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.String(http.StatusBadRequest, "POST required")
		return
	}

	variantID, err := strconv.Atoi(c.DefaultPostForm("variant_id", "0"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid input")
		return
	}
	qty, err := strconv.Atoi(c.DefaultPostForm("quantity", "1"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid input")
		return
	}
	if qty < 1 {
		qty = 1
	}
	if variantID <= 0 {
		c.String(http.StatusNotFound, "Pizza not found")
		return
	}

	variant, err := sc.pizzas.GetVariant(c.Request.Context(), uint(variantID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.String(http.StatusNotFound, "Pizza not found")
			return
		}
		sc.fail(c, err)
		return
	}

	current, _ := sc.carts.Load(c.Request)
	current.Add(variant.ID, qty)
	if err := sc.carts.Save(c.Writer, c.Request, current); err != nil {
		sc.fail(c, err)
		return
	}
	sc.flash(c, cart.LevelSuccess, fmt.Sprintf("Added %d x %s to cart.", qty, variant))
	c.Redirect(http.StatusFound, "/cart")
}

// ViewCart shows the priced cart
func (sc *ShopController) ViewCart(c *gin.Context) {
	current, _ := sc.carts.Load(c.Request)
	quote, err := sc.orders.QuoteCart(c.Request.Context(), current)
	if err != nil {
		sc.fail(c, err)
		return
	}
	sc.render(c, http.StatusOK, "cart.html", "Cart", gin.H{"Quote": quote})
}

// UpdateCart applies the qty_<variant id> fields of the cart form
func (sc *ShopController) UpdateCart(c *gin.Context) {
	current, _ := sc.carts.Load(c.Request)
	quote, err := sc.orders.QuoteCart(c.Request.Context(), current)
	if err != nil {
		sc.fail(c, err)
		return
	}

	for _, line := range quote.Lines {
		raw, ok := c.GetPostForm(fmt.Sprintf("qty_%d", line.Variant.ID))
		if !ok {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		if qty < 0 {
			qty = 0
		}
		current.Set(line.Variant.ID, qty)
	}

	if err := sc.carts.Save(c.Writer, c.Request, current); err != nil {
		sc.fail(c, err)
		return
	}
	sc.flash(c, cart.LevelSuccess, "Cart updated.")
	c.Redirect(http.StatusFound, "/cart")
}

// Checkout shows the delivery form and places the order on POST
func (sc *ShopController) Checkout(c *gin.Context) {
	current, _ := sc.carts.Load(c.Request)
	quote, err := sc.orders.QuoteCart(c.Request.Context(), current)
	if err != nil {
		sc.fail(c, err)
		return
	}
	if quote.Empty() {
		sc.emptyCart(c)
		return
	}

	if c.Request.Method != http.MethodPost {
		sc.render(c, http.StatusOK, "checkout.html", "Checkout", gin.H{
			"Quote":  quote,
			"Form":   services.Customer{},
			"Errors": map[string]string{},
		})
		return
	}

	var form services.Customer
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "Invalid input")
		return
	}
	customer := form.Trimmed()
	if errs := customer.Validate(); len(errs) > 0 {
		sc.render(c, http.StatusOK, "checkout.html", "Checkout", gin.H{
			"Quote":  quote,
			"Form":   customer,
			"Errors": errs,
		})
		return
	}

	order, err := sc.orders.Checkout(c.Request.Context(), current, customer)
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		sc.emptyCart(c)
		return
	case errors.Is(err, services.ErrExternalIDExhausted):
		sc.flash(c, cart.LevelError, "Unable to create order. Please try again.")
		c.Redirect(http.StatusFound, "/cart")
		return
	case err != nil:
		sc.fail(c, err)
		return
	}

	if err := sc.carts.Clear(c.Writer, c.Request); err != nil {
		log.WithError(err).Warn("Error clearing cart after checkout")
	}
	if sc.notifier != nil {
		sc.notifier.Broadcast(realtime.EventOrderCreated, gin.H{
			"order_id":    order.ID,
			"external_id": order.ExternalID,
			"status":      order.Status,
		})
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/success/%d", order.ID))
}

func (sc *ShopController) emptyCart(c *gin.Context) {
	sc.flash(c, cart.LevelWarning, "Your cart is empty.")
	c.Redirect(http.StatusFound, "/")
}

// Success shows a placed order
func (sc *ShopController) Success(c *gin.Context) {
	id, ok := uintParam(c, "order_id")
	if !ok {
		c.String(http.StatusNotFound, "Order not found")
		return
	}
	order, err := sc.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.String(http.StatusNotFound, "Order not found")
			return
		}
		sc.fail(c, err)
		return
	}
	sc.render(c, http.StatusOK, "success.html", "Thank you", gin.H{
		"Order":     order,
		"OrderedAt": order.OrderedAt.In(sc.loc),
	})
}

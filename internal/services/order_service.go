package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-pizzeria/internal/cart"
	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// webOrderIDBase keeps generated external ids clear of the CSV order ids
const webOrderIDBase int64 = 1_000_000_000

// externalIDAttempts bounds the unique id collision retries in checkout
const externalIDAttempts = 3

// CartLine is a priced cart entry
type CartLine struct {
	Variant    models.PizzaVariant
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// CartQuote is the priced content of a cart
type CartQuote struct {
	Lines    []CartLine
	Subtotal decimal.Decimal
}

// Empty reports whether nothing in the cart can be ordered
func (q CartQuote) Empty() bool {
	return len(q.Lines) == 0
}

// Customer holds the delivery details entered at checkout
type Customer struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Phone     string `form:"phone" json:"phone"`
	Street    string `form:"street" json:"street"`
	City      string `form:"city" json:"city"`
	ZipCode   string `form:"zip" json:"zip"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field
func (c Customer) Trimmed() Customer {
	return Customer{
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Phone:     strings.TrimSpace(c.Phone),
		Street:    strings.TrimSpace(c.Street),
		City:      strings.TrimSpace(c.City),
		ZipCode:   strings.TrimSpace(c.ZipCode),
	}
}

// Validate returns a message per missing field; an empty map means the details are complete
func (c Customer) Validate() map[string]string {
	t := c.Trimmed()
	errs := map[string]string{}
	if t.FirstName == "" {
		errs["first_name"] = "First name is required."
	}
	if t.LastName == "" {
		errs["last_name"] = "Last name is required."
	}
	if t.Phone == "" {
		errs["phone"] = "Phone number is required."
	}
	if t.Street == "" {
		errs["street"] = "Street is required."
	}
	if t.City == "" {
		errs["city"] = "City is required."
	}
	if t.ZipCode == "" {
		errs["zip"] = "ZIP is required."
	}
	return errs
}

// ExternalIDFunc proposes an external id for a web order; attempt counts from 0
type ExternalIDFunc func(now time.Time, attempt int) int64

// TimestampExternalID derives the id from the checkout second, shifted per attempt
func TimestampExternalID(now time.Time, attempt int) int64 {
	return webOrderIDBase + now.Unix() + int64(attempt)
}

// OrderService prices carts and turns them into orders
type OrderService interface {
	// QuoteCart prices the cart against the current menu, skipping unknown variants
	QuoteCart(ctx context.Context, c cart.Cart) (CartQuote, error)
	// Checkout creates one order with one item per cart line
	Checkout(ctx context.Context, c cart.Cart, customer Customer) (models.Order, error)
	// GetOrder loads an order with its items, variants and pizzas
	GetOrder(ctx context.Context, id uint) (models.Order, error)
}

type orderService struct {
	db         *gorm.DB
	now        Clock
	externalID ExternalIDFunc
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(db *gorm.DB, now Clock, externalID ExternalIDFunc) OrderService {
	if now == nil {
		now = time.Now
	}
	if externalID == nil {
		externalID = TimestampExternalID
	}
	return &orderService{db: db, now: now, externalID: externalID}
}

func (s *orderService) QuoteCart(ctx context.Context, c cart.Cart) (CartQuote, error) {
	return quoteCart(s.db.WithContext(ctx), c)
}

func quoteCart(db *gorm.DB, c cart.Cart) (CartQuote, error) {
	quote := CartQuote{Subtotal: decimal.Zero}
	ids := c.VariantIDs()
	if len(ids) == 0 {
		return quote, nil
	}

	var variants []models.PizzaVariant
	if err := db.Preload("Pizza").Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return quote, fmt.Errorf("load cart variants: %w", err)
	}
	byID := make(map[uint]models.PizzaVariant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	for _, id := range ids {
		variant, ok := byID[id]
		qty := c.Quantity(id)
		if !ok || qty <= 0 {
			continue
		}
		total := models.LineTotal(variant.UnitPrice, qty)
		quote.Subtotal = quote.Subtotal.Add(total)
		quote.Lines = append(quote.Lines, CartLine{
			Variant:    variant,
			Quantity:   qty,
			UnitPrice:  variant.UnitPrice,
			TotalPrice: total,
		})
	}
	return quote, nil
}

func (s *orderService) Checkout(ctx context.Context, c cart.Cart, customer Customer) (models.Order, error) {
	customer = customer.Trimmed()
	now := s.now().UTC().Truncate(time.Second)
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := quoteCart(tx, c)
		if err != nil {
			return err
		}
		if quote.Empty() {
			return ErrEmptyCart
		}

		externalID, err := s.reserveExternalID(tx, now)
		if err != nil {
			return err
		}

		order = models.Order{
			ExternalID:        externalID,
			OrderedAt:         now,
			Status:            models.StatusNew,
			CustomerFirstName: customer.FirstName,
			CustomerLastName:  customer.LastName,
			Phone:             customer.Phone,
			Street:            customer.Street,
			City:              customer.City,
			ZipCode:           customer.ZipCode,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		items := make([]models.OrderItem, 0, len(quote.Lines))
		for _, line := range quote.Lines {
			items = append(items, models.OrderItem{
				OrderID:    order.ID,
				VariantID:  line.Variant.ID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				TotalPrice: line.TotalPrice,
			})
		}
		if err := tx.Omit("Variant", "Order").Create(&items).Error; err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		for i := range items {
			v := quote.Lines[i].Variant
			items[i].Variant = &v
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	log.WithFields(log.Fields{
		"order_id":    order.ID,
		"external_id": order.ExternalID,
		"items":       len(order.Items),
		"total":       order.Total().StringFixed(2),
	}).Info("Order placed")
	return order, nil
}

// reserveExternalID finds an unused external id within the bounded number of attempts
func (s *orderService) reserveExternalID(tx *gorm.DB, now time.Time) (int64, error) {
	for attempt := 0; attempt < externalIDAttempts; attempt++ {
		candidate := s.externalID(now, attempt)
		var count int64
		if err := tx.Model(&models.Order{}).Where("external_id = ?", candidate).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return candidate, nil
		}
		log.WithFields(log.Fields{"external_id": candidate, "attempt": attempt + 1}).Warn("External id collision")
	}
	return 0, ErrExternalIDExhausted
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Variant.Pizza").
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}
	return order, nil
}

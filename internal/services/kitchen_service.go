package services

import (
	"context"
	"errors"
	"time"

	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// KitchenCustomer is the delivery contact shown on a kitchen ticket
type KitchenCustomer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// KitchenItem is one line of a kitchen ticket
type KitchenItem struct {
	ID       uint   `json:"id"`
	Quantity int    `json:"qty"`
	Pizza    string `json:"pizza"`
	Size     string `json:"size"`
}

// KitchenOrder is an open order as rendered on the kitchen dashboard
type KitchenOrder struct {
	ID         uint               `json:"id"`
	ExternalID int64              `json:"external_id"`
	OrderedAt  string             `json:"ordered_at"`
	Status     models.OrderStatus `json:"status"`
	Customer   KitchenCustomer    `json:"customer"`
	Items      []KitchenItem      `json:"items"`
}

// StatusChange is the outcome of a kitchen status update
type StatusChange struct {
	OrderID uint               `json:"order_id"`
	Status  models.OrderStatus `json:"status"`
	Changed bool               `json:"-"`
}

// allowedTransitions lists the forward moves of the kitchen lifecycle
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusNew:            {models.StatusPreparing, models.StatusOutForDelivery},
	models.StatusPreparing:      {models.StatusOutForDelivery},
	models.StatusOutForDelivery: {models.StatusDelivered},
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// KitchenService serves the kitchen dashboard
type KitchenService interface {
	// OpenOrders lists today's orders that have not left the kitchen, newest first
	OpenOrders(ctx context.Context) ([]KitchenOrder, error)
	// SendForDelivery marks an order out for delivery unless it already left
	SendForDelivery(ctx context.Context, id uint) (StatusChange, error)
	// Transition moves an order forward in its lifecycle
	Transition(ctx context.Context, id uint, to models.OrderStatus) (StatusChange, error)
	// Ticket renders a single order the way the dashboard shows it
	Ticket(ctx context.Context, id uint) (KitchenOrder, error)
}

type kitchenService struct {
	db  *gorm.DB
	loc *time.Location
	now Clock
}

// NewKitchenService creates a new instance of KitchenService
func NewKitchenService(db *gorm.DB, loc *time.Location, now Clock) KitchenService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &kitchenService{db: db, loc: loc, now: now}
}

func (s *kitchenService) OpenOrders(ctx context.Context) ([]KitchenOrder, error) {
	start, end := dayBounds(s.now(), s.loc)

	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Variant.Pizza").
		Where("ordered_at >= ? AND ordered_at < ?", start.UTC(), end.UTC()).
		Where("status NOT IN ?", []models.OrderStatus{models.StatusOutForDelivery, models.StatusDelivered}).
		Order("ordered_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	out := make([]KitchenOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, s.ticket(o))
	}
	return out, nil
}

func (s *kitchenService) Ticket(ctx context.Context, id uint) (KitchenOrder, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Variant.Pizza").
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return KitchenOrder{}, ErrNotFound
		}
		return KitchenOrder{}, err
	}
	return s.ticket(order), nil
}

func (s *kitchenService) ticket(o models.Order) KitchenOrder {
	items := make([]KitchenItem, 0, len(o.Items))
	for _, it := range o.Items {
		item := KitchenItem{ID: it.ID, Quantity: it.Quantity}
		if it.Variant != nil {
			item.Size = it.Variant.Size.Display()
			if it.Variant.Pizza != nil {
				item.Pizza = it.Variant.Pizza.Name
			}
		}
		items = append(items, item)
	}
	return KitchenOrder{
		ID:         o.ID,
		ExternalID: o.ExternalID,
		OrderedAt:  o.OrderedAt.In(s.loc).Format("15:04:05"),
		Status:     o.Status,
		Customer: KitchenCustomer{
			Name:    o.CustomerName(),
			Phone:   o.Phone,
			Address: o.Address(),
		},
		Items: items,
	}
}

func (s *kitchenService) SendForDelivery(ctx context.Context, id uint) (StatusChange, error) {
	var change StatusChange
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx, id)
		if err != nil {
			return err
		}
		change = StatusChange{OrderID: order.ID, Status: order.Status}
		if order.Status.Dispatched() {
			return nil
		}
		if err := s.setStatus(tx, order, models.StatusOutForDelivery); err != nil {
			return err
		}
		change.Status = models.StatusOutForDelivery
		change.Changed = true
		return nil
	})
	if err != nil {
		return StatusChange{}, err
	}
	if change.Changed {
		log.WithField("order_id", id).Info("Order sent for delivery")
	}
	return change, nil
}

func (s *kitchenService) Transition(ctx context.Context, id uint, to models.OrderStatus) (StatusChange, error) {
	if !to.Valid() {
		return StatusChange{}, ErrInvalidTransition
	}
	var change StatusChange
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx, id)
		if err != nil {
			return err
		}
		change = StatusChange{OrderID: order.ID, Status: order.Status}
		if order.Status == to {
			return nil
		}
		if !CanTransition(order.Status, to) {
			return ErrInvalidTransition
		}
		if err := s.setStatus(tx, order, to); err != nil {
			return err
		}
		change.Status = to
		change.Changed = true
		return nil
	})
	if err != nil {
		return StatusChange{}, err
	}
	if change.Changed {
		log.WithFields(log.Fields{"order_id": id, "status": to}).Info("Order status changed")
	}
	return change, nil
}

// setStatus updates the status only if nobody changed it since it was read
func (s *kitchenService) setStatus(tx *gorm.DB, order models.Order, to models.OrderStatus) error {
	updates := map[string]interface{}{"status": to}
	if to == models.StatusOutForDelivery && order.OutForDeliveryAt == nil {
		updates["out_for_delivery_at"] = s.now().UTC().Truncate(time.Second)
	}
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func findOrder(tx *gorm.DB, id uint) (models.Order, error) {
	var order models.Order
	if err := tx.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}
	return order, nil
}

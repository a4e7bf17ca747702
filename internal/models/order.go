package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the kitchen lifecycle state of an order
type OrderStatus string

const (
	StatusNew            OrderStatus = "new"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
)

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusPreparing, StatusOutForDelivery, StatusDelivered:
		return true
	}
	return false
}

// Dispatched reports whether the order has left the kitchen
func (s OrderStatus) Dispatched() bool {
	return s == StatusOutForDelivery || s == StatusDelivered
}

// Order is a customer order. Imported orders carry the CSV order_id as ExternalID and
// no customer details; web orders get a generated ExternalID and full customer details.
type Order struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	ExternalID        int64       `gorm:"not null;uniqueIndex" json:"external_id"`
	OrderedAt         time.Time   `gorm:"not null;index" json:"ordered_at"`
	Status            OrderStatus `gorm:"size:32;not null;default:new;index" json:"status"`
	OutForDeliveryAt  *time.Time  `json:"out_for_delivery_at,omitempty"`
	CustomerFirstName string      `gorm:"size:50" json:"customer_first_name"`
	CustomerLastName  string      `gorm:"size:50" json:"customer_last_name"`
	Phone             string      `gorm:"size:20" json:"phone"`
	Street            string      `gorm:"size:100" json:"street"`
	City              string      `gorm:"size:50" json:"city"`
	ZipCode           string      `gorm:"size:10" json:"zip_code"`
	Items             []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (o Order) String() string {
	return fmt.Sprintf("Order #%d @ %s", o.ExternalID, o.OrderedAt.Format("2006-01-02 15:04:05"))
}

// CustomerName joins first and last name, skipping blanks
func (o Order) CustomerName() string {
	return strings.TrimSpace(o.CustomerFirstName + " " + o.CustomerLastName)
}

// Address renders "street, city zip", leaving out empty parts
func (o Order) Address() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{o.Street, o.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	address := strings.Join(parts, ", ")
	if o.ZipCode != "" {
		address += " " + o.ZipCode
	}
	return address
}

// Total sums the line totals of the loaded items
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.TotalPrice)
	}
	return total
}

// OrderItem is a single line of an order. SourceLineID holds the CSV pizza_id for
// imported lines and is nil for lines created by the web checkout.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	Order        *Order          `json:"-"`
	VariantID    uint            `gorm:"not null;index" json:"variant_id"`
	Variant      *PizzaVariant   `gorm:"constraint:OnDelete:RESTRICT" json:"variant,omitempty"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"unit_price"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	SourceLineID *int64          `gorm:"uniqueIndex" json:"source_line_id,omitempty"`
}

// ComputedTotal is unit price times quantity rounded to cents
func (it OrderItem) ComputedTotal() decimal.Decimal {
	return LineTotal(it.UnitPrice, it.Quantity)
}

// LineTotal multiplies a unit price by a quantity and rounds to cents
func LineTotal(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// Package dbtest provides in-memory databases and fixtures for package tests.
package dbtest

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-pizzeria/internal/database"
	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens a migrated in-memory sqlite database that lives as long as the test
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to ":memory:" is a different database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Variant creates (or reuses) a pizza and adds a variant of the given size and price
func Variant(t testing.TB, db *gorm.DB, name, category string, size models.Size, price string) models.PizzaVariant {
	t.Helper()
	pizza := models.Pizza{Name: name, Category: category}
	require.NoError(t, db.Where("name = ? AND category = ?", name, category).FirstOrCreate(&pizza).Error)

	variant := models.PizzaVariant{
		PizzaID:   pizza.ID,
		Pizza:     &pizza,
		Size:      size,
		Slug:      models.VariantSlug(name, size),
		UnitPrice: decimal.RequireFromString(price),
	}
	require.NoError(t, db.Omit("Pizza").Create(&variant).Error)
	return variant
}

// Line describes one item of an order fixture
type Line struct {
	Variant models.PizzaVariant
	Qty     int
}

// Order stores an order placed at the given time with the given status and lines
func Order(t testing.TB, db *gorm.DB, externalID int64, at time.Time, status models.OrderStatus, lines ...Line) models.Order {
	t.Helper()
	order := models.Order{
		ExternalID: externalID,
		OrderedAt:  at.UTC(),
		Status:     status,
	}
	require.NoError(t, db.Create(&order).Error)
	for _, l := range lines {
		item := models.OrderItem{
			OrderID:    order.ID,
			VariantID:  l.Variant.ID,
			Quantity:   l.Qty,
			UnitPrice:  l.Variant.UnitPrice,
			TotalPrice: models.LineTotal(l.Variant.UnitPrice, l.Qty),
		}
		require.NoError(t, db.Create(&item).Error)
		order.Items = append(order.Items, item)
	}
	return order
}

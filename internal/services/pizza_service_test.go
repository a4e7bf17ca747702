package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-pizzeria/internal/database/dbtest"
	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllPizzasOrdersVariantsBySize(t *testing.T) {
	db := dbtest.New(t)
	dbtest.Variant(t, db, "Pepperoni", "Classic", models.SizeXXL, "25.00")
	dbtest.Variant(t, db, "Pepperoni", "Classic", models.SizeSmall, "9.00")
	dbtest.Variant(t, db, "Pepperoni", "Classic", models.SizeLarge, "16.00")
	dbtest.Variant(t, db, "Calabrese", "Supreme", models.SizeMedium, "14.00")

	svc := NewPizzaService(db)
	pizzas, err := svc.GetAllPizzas(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, pizzas, 2)
	assert.Equal(t, "Calabrese", pizzas[0].Name)

	var sizes []models.Size
	for _, v := range pizzas[1].Variants {
		sizes = append(sizes, v.Size)
	}
	assert.Equal(t, []models.Size{models.SizeSmall, models.SizeLarge, models.SizeXXL}, sizes)

	classic, err := svc.GetAllPizzas(context.Background(), "Classic")
	require.NoError(t, err)
	require.Len(t, classic, 1)
}

func TestPizzaCRUD(t *testing.T) {
	db := dbtest.New(t)
	svc := NewPizzaService(db)
	ctx := context.Background()

	created, err := svc.CreatePizza(ctx, models.Pizza{
		Name:     "Funghi",
		Category: "Veggie",
		Variants: []models.PizzaVariant{
			{Size: models.SizeLarge, Slug: "funghi_l", UnitPrice: decimal.RequireFromString("15.00")},
			{Size: models.SizeSmall, Slug: "funghi_s", UnitPrice: decimal.RequireFromString("9.50")},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.Equal(t, models.SizeSmall, created.Variants[0].Size)

	variant, err := svc.GetVariant(ctx, created.Variants[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Funghi [L]", variant.String())

	created.Ingredients = "Mushrooms, Mozzarella"
	updated, err := svc.UpdatePizza(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Mushrooms, Mozzarella", updated.Ingredients)
	assert.Len(t, updated.Variants, 2)

	_, err = svc.UpdatePizza(ctx, models.Pizza{ID: 999, Name: "x", Category: "y"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeletePizza(ctx, created.ID))
	_, err = svc.GetPizzaByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var variants int64
	db.Model(&models.PizzaVariant{}).Count(&variants)
	assert.Zero(t, variants)

	assert.ErrorIs(t, svc.DeletePizza(ctx, created.ID), ErrNotFound)
}

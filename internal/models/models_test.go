package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeDisplay(t *testing.T) {
	testCases := []struct {
		size     Size
		expected string
		valid    bool
	}{
		{SizeSmall, "Small", true},
		{SizeMedium, "Medium", true},
		{SizeLarge, "Large", true},
		{SizeExtraLarge, "XL", true},
		{SizeXXL, "XXL", true},
		{Size("XS"), "XS", false},
	}
	for _, tt := range testCases {
		t.Run(string(tt.size), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.size.Display())
			assert.Equal(t, tt.valid, tt.size.Valid())
		})
	}
	assert.Less(t, SizeSmall.Rank(), SizeMedium.Rank())
	assert.Less(t, SizeExtraLarge.Rank(), SizeXXL.Rank())
	assert.Less(t, SizeXXL.Rank(), Size("??").Rank())
}

func TestVariantString(t *testing.T) {
	v := PizzaVariant{Size: SizeLarge, Pizza: &Pizza{Name: "The Hawaiian Pizza"}}
	assert.Equal(t, "The Hawaiian Pizza [L]", v.String())
}

func TestOrderCustomerFields(t *testing.T) {
	o := Order{CustomerFirstName: "Ada", Street: "1 Main St", ZipCode: "10115"}
	assert.Equal(t, "Ada", o.CustomerName())
	assert.Equal(t, "1 Main St 10115", o.Address())

	o = Order{CustomerFirstName: "Ada", CustomerLastName: "Lovelace", Street: "1 Main St", City: "Berlin"}
	assert.Equal(t, "Ada Lovelace", o.CustomerName())
	assert.Equal(t, "1 Main St, Berlin", o.Address())

	assert.Equal(t, "", Order{}.Address())
}

func TestOrderStringAndStatus(t *testing.T) {
	o := Order{ExternalID: 42, OrderedAt: time.Date(2015, 1, 1, 11, 38, 36, 0, time.UTC)}
	assert.Equal(t, "Order #42 @ 2015-01-01 11:38:36", o.String())

	assert.True(t, StatusOutForDelivery.Dispatched())
	assert.True(t, StatusDelivered.Dispatched())
	assert.False(t, StatusPreparing.Dispatched())
	assert.False(t, OrderStatus("cancelled").Valid())
}

func TestComputedTotal(t *testing.T) {
	it := OrderItem{UnitPrice: decimal.RequireFromString("13.25"), Quantity: 3}
	assert.True(t, decimal.RequireFromString("39.75").Equal(it.ComputedTotal()))

	o := Order{Items: []OrderItem{
		{TotalPrice: decimal.RequireFromString("39.75")},
		{TotalPrice: decimal.RequireFromString("16.00")},
	}}
	assert.Equal(t, "55.75", o.Total().StringFixed(2))
}

func TestUserPassword(t *testing.T) {
	u := &User{Email: "chef@pizza.com"}
	require.NoError(t, u.SetPassword("margherita"))
	assert.NotEqual(t, "margherita", u.PasswordHash)
	assert.True(t, u.CheckPassword("margherita"))
	assert.False(t, u.CheckPassword("pepperoni"))
}

func TestOAuthClientInfo(t *testing.T) {
	c := &OAuthClient{ID: "pos-1", UserID: 7}
	assert.Equal(t, "7", c.GetUserID())
	assert.False(t, c.IsPublic())
	assert.Equal(t, "", (&OAuthClient{}).GetUserID())
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleKitchen))
	assert.True(t, ValidRole(RoleManager))
	assert.False(t, ValidRole("user"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hawaiian", Slugify("The Hawaiian Pizza"))
	assert.Equal(t, "five_cheese", Slugify("The Five Cheese Pizza"))
	assert.Equal(t, "pepperoni_salami", Slugify("Pepperoni & Salami"))
	assert.Equal(t, "hawaiian_xxl", VariantSlug("The Hawaiian Pizza", SizeXXL))
}

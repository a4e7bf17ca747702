package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every model
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Pizza{},
		&models.PizzaVariant{},
		&models.Order{},
		&models.OrderItem{},
		&models.User{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

type seedPizza struct {
	name        string
	category    string
	ingredients string
	prices      map[models.Size]string
}

var demoMenu = []seedPizza{
	{"The Classic Deluxe Pizza", "Classic", "Pepperoni, Mushrooms, Red Onions, Red Peppers, Bacon",
		map[models.Size]string{models.SizeSmall: "12.00", models.SizeMedium: "16.00", models.SizeLarge: "20.50"}},
	{"The Hawaiian Pizza", "Classic", "Sliced Ham, Pineapple, Mozzarella Cheese",
		map[models.Size]string{models.SizeSmall: "10.50", models.SizeMedium: "13.25", models.SizeLarge: "16.50"}},
	{"The Five Cheese Pizza", "Veggie", "Mozzarella Cheese, Provolone Cheese, Smoked Gouda Cheese, Romano Cheese, Blue Cheese, Garlic",
		map[models.Size]string{models.SizeLarge: "18.50"}},
	{"The Thai Chicken Pizza", "Chicken", "Chicken, Pineapple, Tomatoes, Red Peppers, Thai Sweet Chilli Sauce",
		map[models.Size]string{models.SizeSmall: "12.75", models.SizeMedium: "16.75", models.SizeLarge: "20.75"}},
}

// SeedMenu inserts a small demo menu when the pizza table is empty.
// It returns the number of pizzas created.
func SeedMenu(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.Pizza{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		log.Info("Database already seeded with menu data")
		return 0, nil
	}

	log.Info("Database is empty, seeding demo menu")
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, sp := range demoMenu {
			pizza := models.Pizza{Name: sp.name, Category: sp.category, Ingredients: sp.ingredients}
			if err := tx.Create(&pizza).Error; err != nil {
				return err
			}
			for size, price := range sp.prices {
				variant := models.PizzaVariant{
					PizzaID:   pizza.ID,
					Size:      size,
					Slug:      models.VariantSlug(sp.name, size),
					UnitPrice: decimal.RequireFromString(price),
				}
				if err := tx.Create(&variant).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed menu: %w", err)
	}
	log.WithField("pizzas", len(demoMenu)).Info("Database seeded successfully")
	return len(demoMenu), nil
}

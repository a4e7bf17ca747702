package services

import (
	"context"
	"errors"
	"sort"

	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"gorm.io/gorm"
)

// PizzaService provides methods to read and manage the menu
type PizzaService interface {
	// GetAllPizzas retrieves the menu ordered by name, each pizza with its variants
	GetAllPizzas(ctx context.Context, category string) ([]models.Pizza, error)
	// GetPizzaByID retrieves a pizza and its variants
	GetPizzaByID(ctx context.Context, id uint) (models.Pizza, error)
	// GetVariant retrieves a single variant with its pizza
	GetVariant(ctx context.Context, id uint) (models.PizzaVariant, error)
	// CreatePizza creates a new pizza together with its variants
	CreatePizza(ctx context.Context, pizza models.Pizza) (models.Pizza, error)
	// UpdatePizza updates name, category and ingredients of an existing pizza
	UpdatePizza(ctx context.Context, pizza models.Pizza) (models.Pizza, error)
	// DeletePizza deletes a pizza and its variants
	DeletePizza(ctx context.Context, id uint) error
}

// pizzaService is the implementation of the PizzaService interface
type pizzaService struct {
	db *gorm.DB
}

// NewPizzaService creates a new instance of PizzaService
func NewPizzaService(db *gorm.DB) PizzaService {
	return &pizzaService{db: db}
}

func (s *pizzaService) GetAllPizzas(ctx context.Context, category string) ([]models.Pizza, error) {
	var pizzas []models.Pizza
	q := s.db.WithContext(ctx).Preload("Variants").Order("name")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&pizzas).Error; err != nil {
		return nil, err
	}
	for i := range pizzas {
		sortVariants(pizzas[i].Variants)
	}
	return pizzas, nil
}

func (s *pizzaService) GetPizzaByID(ctx context.Context, id uint) (models.Pizza, error) {
	var pizza models.Pizza
	if err := s.db.WithContext(ctx).Preload("Variants").First(&pizza, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Pizza{}, ErrNotFound
		}
		return models.Pizza{}, err
	}
	sortVariants(pizza.Variants)
	return pizza, nil
}

func (s *pizzaService) GetVariant(ctx context.Context, id uint) (models.PizzaVariant, error) {
	var variant models.PizzaVariant
	if err := s.db.WithContext(ctx).Preload("Pizza").First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PizzaVariant{}, ErrNotFound
		}
		return models.PizzaVariant{}, err
	}
	return variant, nil
}

func (s *pizzaService) CreatePizza(ctx context.Context, pizza models.Pizza) (models.Pizza, error) {
	pizza.ID = 0
	for i := range pizza.Variants {
		pizza.Variants[i].ID = 0
		pizza.Variants[i].Pizza = nil
	}
	if err := s.db.WithContext(ctx).Create(&pizza).Error; err != nil {
		return models.Pizza{}, err
	}
	sortVariants(pizza.Variants)
	return pizza, nil
}

func (s *pizzaService) UpdatePizza(ctx context.Context, pizza models.Pizza) (models.Pizza, error) {
	var existing models.Pizza
	if err := s.db.WithContext(ctx).First(&existing, pizza.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Pizza{}, ErrNotFound
		}
		return models.Pizza{}, err
	}
	err := s.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"name":        pizza.Name,
		"category":    pizza.Category,
		"ingredients": pizza.Ingredients,
	}).Error
	if err != nil {
		return models.Pizza{}, err
	}
	return s.GetPizzaByID(ctx, pizza.ID)
}

func (s *pizzaService) DeletePizza(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pizza_id = ?", id).Delete(&models.PizzaVariant{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Pizza{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func sortVariants(variants []models.PizzaVariant) {
	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Size.Rank() < variants[j].Size.Rank()
	})
}

// Package importer loads the historical sales CSV into the menu and order tables.
// Importing the same file twice creates nothing new: lines are keyed by their
// source line id and orders by their external id.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// errDryRun aborts the import transaction after a successful dry run
var errDryRun = errors.New("dry run")

// Options control a single import run
type Options struct {
	// DryRun performs the import and rolls it back
	DryRun bool
	// Clear deletes all items, orders, variants and pizzas before importing
	Clear bool
}

// Result counts what an import created
type Result struct {
	Rows            int
	PizzasCreated   int
	VariantsCreated int
	OrdersCreated   int
	ItemsCreated    int
	RowsSkipped     int
}

func (r Result) String() string {
	return fmt.Sprintf("Import finished: Pizzas created: %d, Variants created: %d, Orders created: %d, Items created: %d. Rows skipped: %d.",
		r.PizzasCreated, r.VariantsCreated, r.OrdersCreated, r.ItemsCreated, r.RowsSkipped)
}

// Importer writes sales CSV rows through gorm
type Importer struct {
	db  *gorm.DB
	loc *time.Location
}

// New creates an importer; naive CSV timestamps are read in loc
func New(db *gorm.DB, loc *time.Location) *Importer {
	if loc == nil {
		loc = time.UTC
	}
	return &Importer{db: db, loc: loc}
}

// ImportFile imports the CSV at path
func (im *Importer) ImportFile(ctx context.Context, path string, opts Options) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, fmt.Errorf("CSV file not found: %s", path)
		}
		return Result{}, err
	}
	defer f.Close()

	log.WithField("file", path).Info("Reading sales CSV")
	return im.Import(ctx, f, opts)
}

// Import reads every row from r and imports them in one transaction
func (im *Importer) Import(ctx context.Context, r io.Reader, opts Options) (Result, error) {
	var rows []saleRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return Result{}, fmt.Errorf("read CSV: %w", err)
	}
	log.WithField("rows", len(rows)).Info("Rows to process")
	if opts.DryRun {
		log.Warn("Running in dry-run mode, changes will be rolled back")
	}

	var res Result
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Clear {
			if err := clearSales(tx); err != nil {
				return err
			}
		}
		run := newRun(tx)
		for i, row := range rows {
			if err := run.apply(i+1, row, im.loc); err != nil {
				return err
			}
		}
		res = run.result
		res.Rows = len(rows)
		if opts.DryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return Result{}, err
	}
	if opts.DryRun {
		log.Warn("Dry-run complete, changes rolled back")
	}

	log.WithFields(log.Fields{
		"pizzas":   res.PizzasCreated,
		"variants": res.VariantsCreated,
		"orders":   res.OrdersCreated,
		"items":    res.ItemsCreated,
		"skipped":  res.RowsSkipped,
		"dry_run":  opts.DryRun,
	}).Info("Import finished")
	return res, nil
}

func clearSales(tx *gorm.DB) error {
	log.Warn("Clearing existing sales data")
	for _, model := range []interface{}{&models.OrderItem{}, &models.Order{}, &models.PizzaVariant{}, &models.Pizza{}} {
		if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

type pizzaKey struct {
	name, category, ingredients string
}

type variantKey struct {
	pizzaID uint
	size    models.Size
}

// run holds the lookups memoised during one import
type run struct {
	tx       *gorm.DB
	pizzas   map[pizzaKey]*models.Pizza
	variants map[variantKey]*models.PizzaVariant
	orders   map[int64]*models.Order
	result   Result
}

func newRun(tx *gorm.DB) *run {
	return &run{
		tx:       tx,
		pizzas:   map[pizzaKey]*models.Pizza{},
		variants: map[variantKey]*models.PizzaVariant{},
		orders:   map[int64]*models.Order{},
	}
}

// apply imports one CSV row. Parse failures skip the row; database errors abort the run.
func (r *run) apply(n int, row saleRow, loc *time.Location) error {
	line, err := row.parse(loc)
	if err != nil {
		r.result.RowsSkipped++
		log.Warnf("Skipping row %d: parse error: %v", n, err)
		return nil
	}

	pizza, err := r.pizza(line)
	if err != nil {
		return fmt.Errorf("row %d: pizza: %w", n, err)
	}
	variant, err := r.variant(pizza, line)
	if err != nil {
		return fmt.Errorf("row %d: variant: %w", n, err)
	}
	order, err := r.order(line)
	if err != nil {
		return fmt.Errorf("row %d: order: %w", n, err)
	}
	if err := r.item(order, variant, line); err != nil {
		return fmt.Errorf("row %d: item: %w", n, err)
	}
	return nil
}

func (r *run) pizza(line saleLine) (*models.Pizza, error) {
	key := pizzaKey{line.Name, line.Category, line.Ingredients}
	if p, ok := r.pizzas[key]; ok {
		return p, nil
	}

	var pizza models.Pizza
	err := r.tx.Where("name = ? AND category = ?", line.Name, line.Category).First(&pizza).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		pizza = models.Pizza{Name: line.Name, Category: line.Category, Ingredients: line.Ingredients}
		if err := r.tx.Omit("Variants").Create(&pizza).Error; err != nil {
			return nil, err
		}
		r.result.PizzasCreated++
	case err != nil:
		return nil, err
	case pizza.Ingredients == "" && line.Ingredients != "":
		pizza.Ingredients = line.Ingredients
		if err := r.tx.Model(&pizza).Update("ingredients", line.Ingredients).Error; err != nil {
			return nil, err
		}
	}

	r.pizzas[key] = &pizza
	return &pizza, nil
}

func (r *run) variant(pizza *models.Pizza, line saleLine) (*models.PizzaVariant, error) {
	key := variantKey{pizza.ID, line.Size}
	if v, ok := r.variants[key]; ok {
		return v, nil
	}

	var variant models.PizzaVariant
	err := r.tx.Where("pizza_id = ? AND size = ?", pizza.ID, line.Size).First(&variant).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		variant = models.PizzaVariant{PizzaID: pizza.ID, Size: line.Size, Slug: line.Slug, UnitPrice: line.UnitPrice}
		if err := r.tx.Omit("Pizza").Create(&variant).Error; err != nil {
			return nil, err
		}
		r.result.VariantsCreated++
	case err != nil:
		return nil, err
	default:
		updates := map[string]interface{}{}
		if variant.Slug == "" && line.Slug != "" {
			variant.Slug = line.Slug
			updates["slug"] = line.Slug
		}
		if !variant.UnitPrice.Equal(line.UnitPrice) {
			variant.UnitPrice = line.UnitPrice
			updates["unit_price"] = line.UnitPrice
		}
		if len(updates) > 0 {
			if err := r.tx.Model(&models.PizzaVariant{}).Where("id = ?", variant.ID).Updates(updates).Error; err != nil {
				return nil, err
			}
		}
	}

	r.variants[key] = &variant
	return &variant, nil
}

func (r *run) order(line saleLine) (*models.Order, error) {
	if o, ok := r.orders[line.OrderID]; ok {
		return o, nil
	}

	orderedAt := line.OrderedAt.UTC()
	var order models.Order
	err := r.tx.Where("external_id = ?", line.OrderID).First(&order).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		order = models.Order{ExternalID: line.OrderID, OrderedAt: orderedAt, Status: models.StatusNew}
		if err := r.tx.Omit("Items").Create(&order).Error; err != nil {
			return nil, err
		}
		r.result.OrdersCreated++
	case err != nil:
		return nil, err
	case orderedAt.Before(order.OrderedAt):
		// keep the earliest timestamp seen for an order
		order.OrderedAt = orderedAt
		if err := r.tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("ordered_at", orderedAt).Error; err != nil {
			return nil, err
		}
	}

	r.orders[line.OrderID] = &order
	return &order, nil
}

func (r *run) item(order *models.Order, variant *models.PizzaVariant, line saleLine) error {
	var item models.OrderItem
	err := r.tx.Where("source_line_id = ?", line.LineID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		lineID := line.LineID
		item = models.OrderItem{
			OrderID:      order.ID,
			VariantID:    variant.ID,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			TotalPrice:   line.TotalPrice,
			SourceLineID: &lineID,
		}
		if err := r.tx.Omit("Order", "Variant").Create(&item).Error; err != nil {
			return err
		}
		r.result.ItemsCreated++
		return nil
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if item.OrderID != order.ID {
		updates["order_id"] = order.ID
	}
	if item.VariantID != variant.ID {
		updates["variant_id"] = variant.ID
	}
	if item.Quantity != line.Quantity {
		updates["quantity"] = line.Quantity
	}
	if !item.UnitPrice.Equal(line.UnitPrice) {
		updates["unit_price"] = line.UnitPrice
	}
	if !item.TotalPrice.Equal(line.TotalPrice) {
		updates["total_price"] = line.TotalPrice
	}
	if len(updates) == 0 {
		return nil
	}
	return r.tx.Model(&models.OrderItem{}).Where("id = ?", item.ID).Updates(updates).Error
}

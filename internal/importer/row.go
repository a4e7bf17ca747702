package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/shopspring/decimal"
)

// saleRow is one raw line of the sales CSV
type saleRow struct {
	LineID      string `csv:"pizza_id"`
	OrderID     string `csv:"order_id"`
	Slug        string `csv:"pizza_name_id"`
	Quantity    string `csv:"quantity"`
	OrderDate   string `csv:"order_date"`
	OrderTime   string `csv:"order_time"`
	UnitPrice   string `csv:"unit_price"`
	TotalPrice  string `csv:"total_price"`
	Size        string `csv:"pizza_size"`
	Category    string `csv:"pizza_category"`
	Ingredients string `csv:"pizza_ingredients"`
	Name        string `csv:"pizza_name"`
}

// saleLine is a parsed and validated CSV line
type saleLine struct {
	LineID      int64
	OrderID     int64
	Slug        string
	Quantity    int
	OrderedAt   time.Time
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Size        models.Size
	Category    string
	Ingredients string
	Name        string
}

var (
	dateLayouts = []string{"1/2/2006", "2/1/2006", "2-1-2006", "2006-1-2"}
	timeLayouts = []string{"15:04:05", "15:04"}
)

func (r saleRow) parse(loc *time.Location) (saleLine, error) {
	var (
		line saleLine
		err  error
	)
	if line.LineID, err = parseNumber("pizza_id", r.LineID); err != nil {
		return saleLine{}, err
	}
	if line.OrderID, err = parseNumber("order_id", r.OrderID); err != nil {
		return saleLine{}, err
	}
	qty, err := parseNumber("quantity", r.Quantity)
	if err != nil {
		return saleLine{}, err
	}
	if qty < 1 {
		return saleLine{}, fmt.Errorf("quantity must be at least 1, got %d", qty)
	}
	line.Quantity = int(qty)

	if line.OrderedAt, err = parseTimestamp(r.OrderDate, r.OrderTime, loc); err != nil {
		return saleLine{}, err
	}
	if line.UnitPrice, err = parsePrice("unit_price", r.UnitPrice); err != nil {
		return saleLine{}, err
	}
	if line.TotalPrice, err = parsePrice("total_price", r.TotalPrice); err != nil {
		return saleLine{}, err
	}

	line.Size = models.Size(strings.TrimSpace(r.Size))
	if !line.Size.Valid() {
		return saleLine{}, fmt.Errorf("unknown pizza_size %q", r.Size)
	}
	line.Slug = strings.TrimSpace(r.Slug)
	line.Category = strings.TrimSpace(r.Category)
	line.Ingredients = strings.TrimSpace(r.Ingredients)
	line.Name = strings.TrimSpace(r.Name)
	return line, nil
}

// parseNumber reads an integer that may be written as a float, truncating the fraction
func parseNumber(field, s string) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", field, s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q", field, s)
	}
	return int64(f), nil
}

func parsePrice(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q", field, s)
	}
	return d, nil
}

// parseTimestamp tries the known date and time layouts in order and falls back to
// dateparse. Values without an offset are taken in loc.
func parseTimestamp(date, clock string, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	for _, dl := range dateLayouts {
		for _, tl := range timeLayouts {
			if t, err := time.ParseInLocation(dl+" "+tl, value, loc); err == nil {
				return t, nil
			}
		}
	}
	if t, err := dateparse.ParseIn(value, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("time data %q does not match expected formats", value)
}

package services

import (
	"context"
	"sort"
	"time"

	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	timeseriesDays = 30
	topPizzaLimit  = 10
)

// WeekdayLabels names heatmap weekdays 1..7 starting on Sunday
var WeekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Summary holds the headline numbers of the managers dashboard
type Summary struct {
	TodayOrderCount     int64   `json:"today_order_count"`
	TodayRevenue        float64 `json:"today_revenue"`
	Last7Revenue        float64 `json:"last7_revenue"`
	AvgOrderValue30d    float64 `json:"avg_order_value_30d"`
	TotalRevenueAllTime float64 `json:"total_revenue_all_time"`
}

// DayPoint is the revenue and distinct order count of a local day
type DayPoint struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// StatusCount is the number of orders in a status
type StatusCount struct {
	Status models.OrderStatus `json:"status"`
	N      int64              `json:"n"`
}

// TopPizza is a pizza ranked by revenue
type TopPizza struct {
	Name     string  `json:"name"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// TopCategory is a category ranked by revenue
type TopCategory struct {
	Category string  `json:"category"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// MonthPoint is the revenue and distinct order count of a calendar month
type MonthPoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// CategoryMonth is the revenue of one category in one month
type CategoryMonth struct {
	Month    string  `json:"month"`
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

// HeatCell aggregates orders by weekday (1=Sun..7=Sat) and hour of day
type HeatCell struct {
	Weekday int     `json:"weekday"`
	Hour    int     `json:"hour"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// AnalyticsService computes the managers dashboard figures. Days, months, weekdays
// and hours are taken in the service's time zone.
type AnalyticsService interface {
	Summary(ctx context.Context) (Summary, error)
	SalesTimeseries(ctx context.Context) ([]DayPoint, error)
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	TopPizzas(ctx context.Context) ([]TopPizza, error)
	TopCategories(ctx context.Context) ([]TopCategory, error)
	Monthly(ctx context.Context) ([]MonthPoint, error)
	CategoryMonthly(ctx context.Context) ([]CategoryMonth, error)
	HourlyHeatmap(ctx context.Context) ([]HeatCell, error)
}

type analyticsService struct {
	db  *gorm.DB
	loc *time.Location
	now Clock
}

// NewAnalyticsService creates a new instance of AnalyticsService
func NewAnalyticsService(db *gorm.DB, loc *time.Location, now Clock) AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &analyticsService{db: db, loc: loc, now: now}
}

// saleFact is one order line joined with its order time and pizza
type saleFact struct {
	OrderID    uint
	OrderedAt  time.Time
	Quantity   int
	TotalPrice decimal.Decimal
	Name       string
	Category   string
}

func (s *analyticsService) items(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id")
}

func (s *analyticsService) withPizzas(ctx context.Context) *gorm.DB {
	return s.items(ctx).
		Joins("JOIN pizza_variants ON pizza_variants.id = order_items.variant_id").
		Joins("JOIN pizzas ON pizzas.id = pizza_variants.pizza_id")
}

func (s *analyticsService) revenue(q *gorm.DB) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.Select("COALESCE(SUM(order_items.total_price), 0)").Row().Scan(&total)
	return total, err
}

func (s *analyticsService) Summary(ctx context.Context) (Summary, error) {
	now := s.now()
	todayStart, todayEnd := dayBounds(now, s.loc)
	start7 := now.Add(-7 * 24 * time.Hour).UTC()
	start30 := now.Add(-30 * 24 * time.Hour).UTC()

	var out Summary
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("ordered_at >= ? AND ordered_at < ?", todayStart.UTC(), todayEnd.UTC()).
		Count(&out.TodayOrderCount).Error; err != nil {
		return Summary{}, err
	}

	today, err := s.revenue(s.items(ctx).Where("orders.ordered_at >= ? AND orders.ordered_at < ?", todayStart.UTC(), todayEnd.UTC()))
	if err != nil {
		return Summary{}, err
	}
	last7, err := s.revenue(s.items(ctx).Where("orders.ordered_at >= ?", start7))
	if err != nil {
		return Summary{}, err
	}
	sum30, err := s.revenue(s.items(ctx).Where("orders.ordered_at >= ?", start30))
	if err != nil {
		return Summary{}, err
	}
	total, err := s.revenue(s.items(ctx))
	if err != nil {
		return Summary{}, err
	}

	var count30 int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("ordered_at >= ?", start30).
		Count(&count30).Error; err != nil {
		return Summary{}, err
	}

	out.TodayRevenue = money(today)
	out.Last7Revenue = money(last7)
	out.TotalRevenueAllTime = money(total)
	if count30 > 0 {
		out.AvgOrderValue30d = money(sum30.Div(decimal.NewFromInt(count30)))
	}
	return out, nil
}

// eachFact streams the joined sale lines matching q
func (s *analyticsService) eachFact(ctx context.Context, q *gorm.DB, fn func(saleFact)) error {
	rows, err := q.Select("orders.id AS order_id, orders.ordered_at AS ordered_at, " +
		"order_items.quantity AS quantity, order_items.total_price AS total_price, " +
		"pizzas.name AS name, pizzas.category AS category").
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	db := s.db.WithContext(ctx)
	for rows.Next() {
		var f saleFact
		if err := db.ScanRows(rows, &f); err != nil {
			return err
		}
		fn(f)
	}
	return rows.Err()
}

type bucket struct {
	revenue decimal.Decimal
	orders  map[uint]struct{}
}

func (b *bucket) add(f saleFact) {
	if b.orders == nil {
		b.orders = map[uint]struct{}{}
	}
	b.revenue = b.revenue.Add(f.TotalPrice)
	b.orders[f.OrderID] = struct{}{}
}

func (s *analyticsService) SalesTimeseries(ctx context.Context) ([]DayPoint, error) {
	todayStart, _ := dayBounds(s.now(), s.loc)
	first := todayStart.AddDate(0, 0, -(timeseriesDays - 1))

	buckets := map[string]*bucket{}
	err := s.eachFact(ctx, s.withPizzas(ctx).Where("orders.ordered_at >= ?", first.UTC()), func(f saleFact) {
		day := f.OrderedAt.In(s.loc).Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.add(f)
	})
	if err != nil {
		return nil, err
	}

	points := make([]DayPoint, 0, timeseriesDays)
	for i := 0; i < timeseriesDays; i++ {
		day := first.AddDate(0, 0, i).Format("2006-01-02")
		p := DayPoint{Day: day}
		if b, ok := buckets[day]; ok {
			p.Revenue = money(b.revenue)
			p.Orders = len(b.orders)
		}
		points = append(points, p)
	}
	return points, nil
}

func (s *analyticsService) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	start, end := dayBounds(s.now(), s.loc)
	var counts []StatusCount
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(id) AS n").
		Where("ordered_at >= ? AND ordered_at < ?", start.UTC(), end.UTC()).
		Group("status").
		Order("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []StatusCount{}
	}
	return counts, nil
}

type rankedRow struct {
	Label    string
	Quantity int64
	Revenue  decimal.Decimal
}

func (s *analyticsService) ranked(ctx context.Context, column string, limit int) ([]rankedRow, error) {
	start := s.now().Add(-30 * 24 * time.Hour).UTC()
	q := s.withPizzas(ctx).
		Select(column+" AS label, COALESCE(SUM(order_items.quantity), 0) AS quantity, COALESCE(SUM(order_items.total_price), 0) AS revenue").
		Where("orders.ordered_at >= ?", start).
		Group(column).
		Order("revenue DESC").
		Order(column)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []rankedRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *analyticsService) TopPizzas(ctx context.Context) ([]TopPizza, error) {
	rows, err := s.ranked(ctx, "pizzas.name", topPizzaLimit)
	if err != nil {
		return nil, err
	}
	out := make([]TopPizza, 0, len(rows))
	for _, r := range rows {
		out = append(out, TopPizza{Name: r.Label, Quantity: r.Quantity, Revenue: money(r.Revenue)})
	}
	return out, nil
}

func (s *analyticsService) TopCategories(ctx context.Context) ([]TopCategory, error) {
	rows, err := s.ranked(ctx, "pizzas.category", 0)
	if err != nil {
		return nil, err
	}
	out := make([]TopCategory, 0, len(rows))
	for _, r := range rows {
		out = append(out, TopCategory{Category: r.Label, Quantity: r.Quantity, Revenue: money(r.Revenue)})
	}
	return out, nil
}

func (s *analyticsService) monthOf(t time.Time) string {
	lt := t.In(s.loc)
	return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, s.loc).Format("2006-01-02")
}

func (s *analyticsService) Monthly(ctx context.Context) ([]MonthPoint, error) {
	buckets := map[string]*bucket{}
	err := s.eachFact(ctx, s.withPizzas(ctx), func(f saleFact) {
		month := s.monthOf(f.OrderedAt)
		b, ok := buckets[month]
		if !ok {
			b = &bucket{}
			buckets[month] = b
		}
		b.add(f)
	})
	if err != nil {
		return nil, err
	}

	out := make([]MonthPoint, 0, len(buckets))
	for month, b := range buckets {
		out = append(out, MonthPoint{Month: month, Revenue: money(b.revenue), Orders: len(b.orders)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (s *analyticsService) CategoryMonthly(ctx context.Context) ([]CategoryMonth, error) {
	type key struct{ month, category string }
	sums := map[key]decimal.Decimal{}
	err := s.eachFact(ctx, s.withPizzas(ctx), func(f saleFact) {
		k := key{s.monthOf(f.OrderedAt), f.Category}
		sums[k] = sums[k].Add(f.TotalPrice)
	})
	if err != nil {
		return nil, err
	}

	out := make([]CategoryMonth, 0, len(sums))
	for k, v := range sums {
		out = append(out, CategoryMonth{Month: k.month, Category: k.category, Revenue: money(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (s *analyticsService) HourlyHeatmap(ctx context.Context) ([]HeatCell, error) {
	type key struct{ weekday, hour int }
	buckets := map[key]*bucket{}
	err := s.eachFact(ctx, s.withPizzas(ctx), func(f saleFact) {
		lt := f.OrderedAt.In(s.loc)
		k := key{int(lt.Weekday()) + 1, lt.Hour()}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
		}
		b.add(f)
	})
	if err != nil {
		return nil, err
	}

	out := make([]HeatCell, 0, len(buckets))
	for k, b := range buckets {
		out = append(out, HeatCell{Weekday: k.weekday, Hour: k.hour, Orders: len(b.orders), Revenue: money(b.revenue)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weekday != out[j].Weekday {
			return out[i].Weekday < out[j].Weekday
		}
		return out[i].Hour < out[j].Hour
	})
	return out, nil
}

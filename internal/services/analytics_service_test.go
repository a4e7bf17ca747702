package services

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-pizzeria/internal/database/dbtest"
	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type salesFixture struct {
	db  *gorm.DB
	loc *time.Location
	now time.Time
	svc AnalyticsService
}

// newSalesFixture seeds orders around a pinned "now" of Wednesday 2024-05-15 18:00 local time
func newSalesFixture(t *testing.T) salesFixture {
	db := dbtest.New(t)
	loc := time.FixedZone("CEST", 2*3600)
	now := time.Date(2024, 5, 15, 18, 0, 0, 0, loc)

	hawaiian := dbtest.Variant(t, db, "Hawaiian", "Classic", models.SizeLarge, "20.00")
	thai := dbtest.Variant(t, db, "Thai Chicken", "Chicken", models.SizeMedium, "10.00")
	veggie := dbtest.Variant(t, db, "Garden", "Veggie", models.SizeSmall, "5.00")

	// today
	dbtest.Order(t, db, 1, time.Date(2024, 5, 15, 12, 10, 0, 0, loc), models.StatusNew,
		dbtest.Line{Variant: hawaiian, Qty: 1}, dbtest.Line{Variant: thai, Qty: 2})
	dbtest.Order(t, db, 2, time.Date(2024, 5, 15, 0, 30, 0, 0, loc), models.StatusDelivered,
		dbtest.Line{Variant: veggie, Qty: 1})
	// three days ago
	dbtest.Order(t, db, 3, time.Date(2024, 5, 12, 19, 45, 0, 0, loc), models.StatusDelivered,
		dbtest.Line{Variant: thai, Qty: 1})
	// twenty days ago, no items
	dbtest.Order(t, db, 4, time.Date(2024, 4, 25, 13, 0, 0, 0, loc), models.StatusDelivered)
	// outside every rolling window
	dbtest.Order(t, db, 5, time.Date(2024, 1, 10, 12, 5, 0, 0, loc), models.StatusDelivered,
		dbtest.Line{Variant: hawaiian, Qty: 3})

	return salesFixture{db: db, loc: loc, now: now, svc: NewAnalyticsService(db, loc, fixedClock(now))}
}

func TestSummary(t *testing.T) {
	f := newSalesFixture(t)

	s, err := f.svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), s.TodayOrderCount)
	assert.Equal(t, 45.0, s.TodayRevenue)
	assert.Equal(t, 55.0, s.Last7Revenue)
	// 55 over 4 orders, one of them empty
	assert.Equal(t, 13.75, s.AvgOrderValue30d)
	assert.Equal(t, 115.0, s.TotalRevenueAllTime)
}

func TestSummaryEmpty(t *testing.T) {
	db := dbtest.New(t)
	svc := NewAnalyticsService(db, time.UTC, nil)

	s, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{}, s)
}

func TestSalesTimeseriesZeroFilled(t *testing.T) {
	f := newSalesFixture(t)

	points, err := f.svc.SalesTimeseries(context.Background())
	require.NoError(t, err)

	require.Len(t, points, 30)
	assert.Equal(t, "2024-04-16", points[0].Day)
	assert.Equal(t, "2024-05-15", points[29].Day)

	assert.Equal(t, DayPoint{Day: "2024-05-15", Revenue: 45, Orders: 2}, points[29])
	assert.Equal(t, DayPoint{Day: "2024-05-12", Revenue: 10, Orders: 1}, points[26])
	assert.Equal(t, DayPoint{Day: "2024-05-13"}, points[27])
}

func TestStatusCountsToday(t *testing.T) {
	f := newSalesFixture(t)

	counts, err := f.svc.StatusCounts(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []StatusCount{
		{Status: models.StatusDelivered, N: 1},
		{Status: models.StatusNew, N: 1},
	}, counts)
}

func TestTopPizzasAndCategories(t *testing.T) {
	f := newSalesFixture(t)

	top, err := f.svc.TopPizzas(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, TopPizza{Name: "Thai Chicken", Quantity: 3, Revenue: 30}, top[0])
	assert.Equal(t, TopPizza{Name: "Hawaiian", Quantity: 1, Revenue: 20}, top[1])
	assert.Equal(t, TopPizza{Name: "Garden", Quantity: 1, Revenue: 5}, top[2])

	cats, err := f.svc.TopCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "Chicken", cats[0].Category)
	assert.Equal(t, "Veggie", cats[2].Category)
}

func TestTopPizzasLimit(t *testing.T) {
	db := dbtest.New(t)
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	for i, name := range names {
		v := dbtest.Variant(t, db, name, "Classic", models.SizeSmall, "10.00")
		dbtest.Order(t, db, int64(i+1), now.Add(-time.Hour), models.StatusNew, dbtest.Line{Variant: v, Qty: i + 1})
	}

	top, err := NewAnalyticsService(db, time.UTC, fixedClock(now)).TopPizzas(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 10)
	assert.Equal(t, "L", top[0].Name)
}

func TestMonthlyAndCategoryMonthly(t *testing.T) {
	f := newSalesFixture(t)

	monthly, err := f.svc.Monthly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []MonthPoint{
		{Month: "2024-01-01", Revenue: 60, Orders: 1},
		{Month: "2024-05-01", Revenue: 55, Orders: 3},
	}, monthly)

	rows, err := f.svc.CategoryMonthly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []CategoryMonth{
		{Month: "2024-01-01", Category: "Classic", Revenue: 60},
		{Month: "2024-05-01", Category: "Chicken", Revenue: 30},
		{Month: "2024-05-01", Category: "Classic", Revenue: 20},
		{Month: "2024-05-01", Category: "Veggie", Revenue: 5},
	}, rows)
}

func TestHourlyHeatmap(t *testing.T) {
	f := newSalesFixture(t)

	cells, err := f.svc.HourlyHeatmap(context.Background())
	require.NoError(t, err)

	// 2024-05-12 is a Sunday, 2024-01-10 and 2024-05-15 are Wednesdays
	assert.Equal(t, []HeatCell{
		{Weekday: 1, Hour: 19, Orders: 1, Revenue: 10},
		{Weekday: 4, Hour: 0, Orders: 1, Revenue: 5},
		{Weekday: 4, Hour: 12, Orders: 2, Revenue: 100},
	}, cells)
	assert.Equal(t, "Sun", WeekdayLabels[0])
}

package application

import (
	"context"
	"testing"
	"time"

	"merx/internal/service/report/domain"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

type fakeAnalyticsRepo struct {
	summary     *domain.Summary
	byCategory  []domain.CategorySales
	topProducts []domain.ProductSales
	summaryErr  error
	topLimit    int
}

func (r *fakeAnalyticsRepo) Summary(context.Context, time.Time, time.Time) (*domain.Summary, error) {
	if r.summaryErr != nil {
		return nil, r.summaryErr
	}
	return r.summary, nil
}

func (r *fakeAnalyticsRepo) SalesByCategory(context.Context, time.Time, time.Time) ([]domain.CategorySales, error) {
	return r.byCategory, nil
}

func (r *fakeAnalyticsRepo) TopProducts(_ context.Context, _, _ time.Time, limit int) ([]domain.ProductSales, error) {
	r.topLimit = limit
	return r.topProducts, nil
}

func TestSalesReport_AggregatesAllThreeQueries(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		summary:     &domain.Summary{TotalRevenue: 900, OrderCount: 3, AvgOrderValue: 300},
		byCategory:  []domain.CategorySales{{Category: "gadgets", Revenue: 900, UnitsSold: 9}},
		topProducts: []domain.ProductSales{{ProductID: "p-1", ProductName: "Widget", Revenue: 900, UnitsSold: 9}},
	}
	svc := NewReportService(repo, otel.Tracer("test"))

	from := time.Now().AddDate(0, 0, -7)
	to := time.Now()
	report, err := svc.SalesReport(context.Background(), from, to, 5)
	require.NoError(t, err)

	assert.InDelta(t, 900.0, report.Summary.TotalRevenue, 1e-9)
	assert.Equal(t, int64(3), report.Summary.OrderCount)
	require.Len(t, report.ByCategory, 1)
	assert.Equal(t, "gadgets", report.ByCategory[0].Category)
	require.Len(t, report.TopProducts, 1)
	assert.Equal(t, 5, repo.topLimit)
}

func TestSalesReport_DefaultsTopN(t *testing.T) {
	repo := &fakeAnalyticsRepo{summary: &domain.Summary{}}
	svc := NewReportService(repo, otel.Tracer("test"))

	_, err := svc.SalesReport(context.Background(), time.Now().Add(-time.Hour), time.Now(), 0)
	require.NoError(t, err)
	assert.Equal(t, defaultTopN, repo.topLimit)
}

func TestSalesReport_AnyQueryFailureFailsTheReport(t *testing.T) {
	repo := &fakeAnalyticsRepo{summaryErr: errors.New("mysql is down")}
	svc := NewReportService(repo, otel.Tracer("test"))

	_, err := svc.SalesReport(context.Background(), time.Now().Add(-time.Hour), time.Now(), 3)
	assert.Error(t, err)
}

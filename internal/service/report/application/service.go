// internal/service/report/application/service.go
package application

import (
	"context"
	"time"

	"merx/internal/service/report/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const defaultTopN = 10

// ReportService 生成销售报表。
type ReportService struct {
	repo   domain.AnalyticsRepository
	tracer trace.Tracer
}

func NewReportService(repo domain.AnalyticsRepository, tracer trace.Tracer) *ReportService {
	return &ReportService{repo: repo, tracer: tracer}
}

// SalesReport 并发执行三路聚合查询，任何一路失败整个报表失败。
func (s *ReportService) SalesReport(ctx context.Context, from, to time.Time, topN int) (*domain.SalesReport, error) {
	ctx, span := s.tracer.Start(ctx, "report.SalesReport")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.from", from.Format(time.RFC3339)),
		attribute.String("report.to", to.Format(time.RFC3339)),
	)

	if topN <= 0 {
		topN = defaultTopN
	}

	report := &domain.SalesReport{From: from, To: to}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.repo.Summary(gctx, from, to)
		if err != nil {
			return err
		}
		report.Summary = *summary
		return nil
	})
	g.Go(func() error {
		byCategory, err := s.repo.SalesByCategory(gctx, from, to)
		if err != nil {
			return err
		}
		report.ByCategory = byCategory
		return nil
	})
	g.Go(func() error {
		top, err := s.repo.TopProducts(gctx, from, to, topN)
		if err != nil {
			return err
		}
		report.TopProducts = top
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sales report query failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int64("report.order_count", report.Summary.OrderCount))
	return report, nil
}

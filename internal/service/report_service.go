package service

import (
	"context"
	"fmt"
	"time"

	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
)

type SalesReport struct {
	Range           string                          `json:"range"`
	From            time.Time                       `json:"from"`
	To              time.Time                       `json:"to"`
	Summary         repository.SalesSummary         `json:"summary"`
	ByPaymentMethod []repository.PaymentMethodSales `json:"byPaymentMethod"`
	ByCategory      []repository.CategorySales      `json:"byCategory"`
	Daily           []repository.DailySales         `json:"daily"`
}

type ReportService interface {
	GetDashboardStats(ctx context.Context, companyID *uuid.UUID, actor Actor) (*repository.DashboardStats, error)
	GetSalesReport(ctx context.Context, rangeParam string, companyID *uuid.UUID, actor Actor) (*SalesReport, error)
	GetStockMovement(ctx context.Context, days int, companyID *uuid.UUID, actor Actor) ([]repository.StockMovementData, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
	loc        *time.Location
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo, now: time.Now, loc: time.Local}
}

// RangeStart maps a report range to its start. Unknown values fall back to 7d.
func RangeStart(rangeParam string, now time.Time) (string, time.Time) {
	switch rangeParam {
	case "7d":
		return rangeParam, now.AddDate(0, 0, -7)
	case "1m":
		return rangeParam, now.AddDate(0, -1, 0)
	case "3m":
		return rangeParam, now.AddDate(0, -3, 0)
	case "6m":
		return rangeParam, now.AddDate(0, -6, 0)
	case "12m":
		return rangeParam, now.AddDate(0, -12, 0)
	default:
		return "7d", now.AddDate(0, 0, -7)
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func (s *reportService) GetDashboardStats(ctx context.Context, companyID *uuid.UUID, actor Actor) (*repository.DashboardStats, error) {
	stats, err := s.reportRepo.GetDashboardStats(ctx, actor.Scope(companyID), startOfDay(s.now(), s.loc))
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

func (s *reportService) GetSalesReport(ctx context.Context, rangeParam string, companyID *uuid.UUID, actor Actor) (*SalesReport, error) {
	to := s.now()
	rangeParam, from := RangeStart(rangeParam, to)
	scope := actor.Scope(companyID)

	summary, err := s.reportRepo.GetSalesSummary(ctx, scope, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}
	byMethod, err := s.reportRepo.GetSalesByPaymentMethod(ctx, scope, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales by payment method: %w", err)
	}
	byCategory, err := s.reportRepo.GetSalesByCategory(ctx, scope, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales by category: %w", err)
	}
	daily, err := s.reportRepo.GetDailySales(ctx, scope, from, to, s.loc)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}

	return &SalesReport{
		Range:           rangeParam,
		From:            from,
		To:              to,
		Summary:         *summary,
		ByPaymentMethod: nonNil(byMethod),
		ByCategory:      nonNil(byCategory),
		Daily:           nonNil(daily),
	}, nil
}

func (s *reportService) GetStockMovement(ctx context.Context, days int, companyID *uuid.UUID, actor Actor) ([]repository.StockMovementData, error) {
	if days <= 0 || days > 366 {
		days = 7
	}
	endDate := s.now()
	startDate := startOfDay(endDate.AddDate(0, 0, -(days - 1)), s.loc)

	data, err := s.reportRepo.GetStockMovement(ctx, actor.Scope(companyID), startDate, endDate, s.loc)
	if err != nil {
		return nil, fmt.Errorf("stock movement: %w", err)
	}
	return nonNil(data), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

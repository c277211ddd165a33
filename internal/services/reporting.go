package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// ReportService serves read-only aggregations over the ledger. No method
// here mutates anything.
type ReportService struct {
	store *storage.Repository
}

func NewReportService(store *storage.Repository) *ReportService {
	return &ReportService{store: store}
}

func (s *ReportService) Summary(ctx context.Context, userID string, from, to time.Time) ([]core.SummaryRow, error) {
	rows, err := s.store.Summary(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return rows, nil
}

func (s *ReportService) Timeline(ctx context.Context, userID string, from, to time.Time) ([]core.TimelinePoint, error) {
	points, err := s.store.Timeline(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	return points, nil
}

func (s *ReportService) AccountBalances(ctx context.Context, userID string) ([]core.AccountBalance, error) {
	balances, err := s.store.AccountBalances(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account balances: %w", err)
	}
	return balances, nil
}

// Overview bundles the three aggregations for one window. The queries are
// independent reads, so they run concurrently.
type Overview struct {
	Summary  []core.SummaryRow
	Timeline []core.TimelinePoint
	Balances []core.AccountBalance
}

func (s *ReportService) Overview(ctx context.Context, userID string, from, to time.Time) (Overview, error) {
	var overview Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.Summary(gctx, userID, from, to)
		overview.Summary = rows
		return err
	})
	g.Go(func() error {
		points, err := s.Timeline(gctx, userID, from, to)
		overview.Timeline = points
		return err
	})
	g.Go(func() error {
		balances, err := s.AccountBalances(gctx, userID)
		overview.Balances = balances
		return err
	})

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return overview, nil
}

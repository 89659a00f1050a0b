package service

import (
	"context"

	"stockhub/internal/dto"
	"stockhub/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	recentPurchasesLimit = 5
	lowStockItemsLimit   = 5
)

// DashboardService aggregates the figures shown on the dashboard. The summary
// is served from cache when one is configured and still holds it.
type DashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardSummary, error)
}

type dashboardService struct {
	repo      repository.DashboardRepository
	purchases repository.PurchaseRepository
	cache     SummaryCache
	threshold int
}

func NewDashboardService(repo repository.DashboardRepository, purchases repository.PurchaseRepository, cache SummaryCache, lowStockThreshold int) DashboardService {
	return &dashboardService{repo: repo, purchases: purchases, cache: cache, threshold: lowStockThreshold}
}

func (s *dashboardService) Summary(ctx context.Context) (*dto.DashboardSummary, error) {
	if s.cache != nil {
		var cached dto.DashboardSummary
		if s.cache.Get(ctx, &cached) {
			return &cached, nil
		}
	}

	summary, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, summary)
	}
	log.Debug().Int64("products", summary.Stats.TotalProducts).Msg("dashboard summary computed")
	return summary, nil
}

func (s *dashboardService) compute(ctx context.Context) (*dto.DashboardSummary, error) {
	var (
		out dto.DashboardSummary
		err error
	)
	if out.Stats.TotalProducts, err = s.repo.CountProducts(ctx); err != nil {
		return nil, err
	}
	if out.Stats.TotalSuppliers, err = s.repo.CountSuppliers(ctx); err != nil {
		return nil, err
	}
	if out.Stats.LowStockItemsCount, err = s.repo.CountLowStock(ctx, s.threshold); err != nil {
		return nil, err
	}
	if out.Stats.TotalStockValue, err = s.repo.StockValue(ctx); err != nil {
		return nil, err
	}
	if out.RecentPurchases, err = s.purchases.Recent(ctx, recentPurchasesLimit); err != nil {
		return nil, err
	}

	low, err := s.repo.LowestStock(ctx, s.threshold, lowStockItemsLimit)
	if err != nil {
		return nil, err
	}
	out.LowStockItems = make([]dto.StockResponse, len(low))
	for i := range low {
		out.LowStockItems[i] = dto.StockToResponse(&low[i])
	}
	return &out, nil
}

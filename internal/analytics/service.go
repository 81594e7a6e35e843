package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/comexsur/backoffice/internal/masterdata/parties"
)

// Service is the read-side aggregator. It never writes to the ledger; the
// only state it touches is its own cache.
type Service struct {
	repo        Repository
	cache       *Cache
	sensitivity CaseSensitivity
	logger      *slog.Logger
}

// NewService wires a Repository with a Cache helper. The case sensitivity
// of search matching is a capability of the caller, not something the
// service probes from the environment.
func NewService(repo Repository, cache *Cache, sensitivity CaseSensitivity, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, sensitivity: sensitivity, logger: logger}
}

// TopProducts returns the party's products ranked by summed invoice amount,
// falling back to offer lines for products the party was never invoiced for.
// Ties keep scan order, so repeat calls return the same ranking.
func (s *Service) TopProducts(ctx context.Context, kind parties.PartyKind, partyID int64, n int) ([]ProductRollup, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown party kind %q", kind)
	}
	if n <= 0 {
		n = TopNSearch
	}

	key, err := s.cache.BuildKey(ctx, keyTopProducts(string(kind), partyID, n)...)
	if err != nil {
		return nil, fmt.Errorf("build cache key: %w", err)
	}

	rollups := []ProductRollup{}
	err = s.cache.FetchJSON(ctx, key, &rollups, func(ctx context.Context) (interface{}, error) {
		return s.computeTopProducts(ctx, kind, partyID, n)
	})
	if err != nil {
		return nil, err
	}
	return rollups, nil
}

func (s *Service) computeTopProducts(ctx context.Context, kind parties.PartyKind, partyID int64, n int) ([]ProductRollup, error) {
	invoiced, err := s.repo.InvoiceRollups(ctx, kind, partyID)
	if err != nil {
		return nil, fmt.Errorf("invoice rollups: %w", err)
	}
	offered, err := s.repo.OfferRollups(ctx, kind, partyID)
	if err != nil {
		return nil, fmt.Errorf("offer rollups: %w", err)
	}

	seen := make(map[int64]struct{}, len(invoiced))
	merged := make([]ProductRollup, 0, len(invoiced)+len(offered))
	for _, ru := range invoiced {
		seen[ru.ProductID] = struct{}{}
		merged = append(merged, ru)
	}
	for _, ru := range offered {
		if _, invoicedAlready := seen[ru.ProductID]; invoicedAlready {
			continue
		}
		merged = append(merged, ru)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].TotalAmount > merged[j].TotalAmount
	})
	if len(merged) > n {
		merged = merged[:n]
	}
	return merged, nil
}

// Invalidate bumps the cache version after a ledger mutation, orphaning
// every cached rollup at once.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("analytics cache bump failed", slog.Any("error", err))
	}
}

// Warm precomputes the detail-view rollups for every active party. Driven
// by the background worker off-peak.
func (s *Service) Warm(ctx context.Context) error {
	clients, err := s.repo.ClientRefs(ctx)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}
	importers, err := s.repo.ImporterRefs(ctx)
	if err != nil {
		return fmt.Errorf("list importers: %w", err)
	}
	for _, c := range clients {
		if _, err := s.TopProducts(ctx, parties.PartyClient, c.ID, TopNDetail); err != nil {
			return fmt.Errorf("warm client %d: %w", c.ID, err)
		}
	}
	for _, imp := range importers {
		if _, err := s.TopProducts(ctx, parties.PartyImporter, imp.ID, TopNDetail); err != nil {
			return fmt.Errorf("warm importer %d: %w", imp.ID, err)
		}
	}
	return nil
}

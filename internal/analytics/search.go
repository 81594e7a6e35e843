package analytics

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/comexsur/backoffice/internal/masterdata/parties"
)

// matcher builds the match predicate for one query under the configured
// sensitivity. Folding handles case pairs ASCII lowering misses. A Caser
// is stateful, so each matcher gets its own.
func (s *Service) matcher(query string) func(string) bool {
	query = strings.TrimSpace(query)
	if s.sensitivity == CaseSensitive {
		return func(candidate string) bool {
			return strings.Contains(candidate, query)
		}
	}
	caser := cases.Fold()
	folded := caser.String(query)
	return func(candidate string) bool {
		return strings.Contains(caser.String(candidate), folded)
	}
}

// Search runs the universal search: clients, importers and products whose
// name (or product code) contains the query, with each matched party
// expanded into its top products.
func (s *Service) Search(ctx context.Context, query string) (SearchResult, error) {
	result := SearchResult{
		Clients:   []PartyHit{},
		Importers: []PartyHit{},
		Products:  []Ref{},
	}
	if strings.TrimSpace(query) == "" {
		return result, nil
	}
	match := s.matcher(query)

	clients, err := s.repo.ClientRefs(ctx)
	if err != nil {
		return result, fmt.Errorf("list clients: %w", err)
	}
	for _, ref := range clients {
		if !match(ref.Name) {
			continue
		}
		top, err := s.TopProducts(ctx, parties.PartyClient, ref.ID, TopNSearch)
		if err != nil {
			return result, fmt.Errorf("expand client %d: %w", ref.ID, err)
		}
		result.Clients = append(result.Clients, PartyHit{Ref: ref, TopProducts: top})
	}

	importers, err := s.repo.ImporterRefs(ctx)
	if err != nil {
		return result, fmt.Errorf("list importers: %w", err)
	}
	for _, ref := range importers {
		if !match(ref.Name) {
			continue
		}
		top, err := s.TopProducts(ctx, parties.PartyImporter, ref.ID, TopNSearch)
		if err != nil {
			return result, fmt.Errorf("expand importer %d: %w", ref.ID, err)
		}
		result.Importers = append(result.Importers, PartyHit{Ref: ref, TopProducts: top})
	}

	products, err := s.repo.ProductRefs(ctx)
	if err != nil {
		return result, fmt.Errorf("list products: %w", err)
	}
	for _, ref := range products {
		if match(ref.Name) || match(ref.Code) {
			result.Products = append(result.Products, ref)
		}
	}
	return result, nil
}

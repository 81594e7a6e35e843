package products

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create persists a product, allocating the next PROD-NNN code when the
// caller does not supply one.
func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	if product.Code == "" {
		code, err := NextCode(ctx, s.repo)
		if err != nil {
			return Product{}, err
		}
		product.Code = code
	}
	product.Active = true
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, id int64, product Product) error {
	if id <= 0 {
		return ErrNotFound
	}
	if err := s.validate(product); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, product)
}

// Delete removes a product when nothing references it. A product referenced
// by any document line, in any family, is deactivated instead: line items
// must keep resolving their product forever. Returns true when the row was
// actually removed.
func (s *Service) Delete(ctx context.Context, id int64) (removed bool, err error) {
	if id <= 0 {
		return false, ErrNotFound
	}
	references, err := s.repo.CountLineReferences(ctx, id)
	if err != nil {
		return false, fmt.Errorf("count references: %w", err)
	}
	if references > 0 {
		return false, s.repo.SoftDelete(ctx, id)
	}
	return true, s.repo.HardDelete(ctx, id)
}

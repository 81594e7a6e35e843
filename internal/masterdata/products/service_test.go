package products

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	products   map[int64]*Product
	references map[int64]int
	nextID     int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		products:   make(map[int64]*Product),
		references: make(map[int64]int),
		nextID:     1,
	}
}

func (m *mockRepository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return *p, nil
}

func (m *mockRepository) Create(ctx context.Context, product Product) (Product, error) {
	for _, p := range m.products {
		if p.Code == product.Code {
			return Product{}, ErrDuplicateCode
		}
	}
	product.ID = m.nextID
	m.nextID++
	m.products[product.ID] = &product
	return product, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, product Product) error {
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	product.ID = id
	m.products[id] = &product
	return nil
}

func (m *mockRepository) SoftDelete(ctx context.Context, id int64) error {
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Active = false
	return nil
}

func (m *mockRepository) HardDelete(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockRepository) MaxCode(ctx context.Context, prefix string) (string, error) {
	max := ""
	for _, p := range m.products {
		if strings.HasPrefix(p.Code, prefix) && p.Code > max {
			max = p.Code
		}
	}
	return max, nil
}

func (m *mockRepository) CountLineReferences(ctx context.Context, id int64) (int, error) {
	return m.references[id], nil
}

func TestCreateAllocatesSequentialCodes(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.Create(ctx, Product{Name: "Anchovy fillets", UnitID: 1, BasePrice: 12})
	require.NoError(t, err)
	assert.Equal(t, "PROD-001", first.Code)
	assert.True(t, first.Active)

	second, err := svc.Create(ctx, Product{Name: "Olive oil", UnitID: 2, BasePrice: 8})
	require.NoError(t, err)
	assert.Equal(t, "PROD-002", second.Code)
}

func TestCreateKeepsExplicitCode(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, Product{Code: "PROD-500", Name: "Capers", UnitID: 1})
	require.NoError(t, err)
	assert.Equal(t, "PROD-500", p.Code)

	// The allocator continues from the highest existing code.
	next, err := svc.Create(ctx, Product{Name: "Tuna loin", UnitID: 1})
	require.NoError(t, err)
	assert.Equal(t, "PROD-501", next.Code)
}

func TestNextCodeIgnoresMalformedSuffix(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{Code: "PROD-XYZ", Name: "Broken"})
	require.NoError(t, err)

	p, err := svc.Create(ctx, Product{Name: "Fresh"})
	require.NoError(t, err)
	assert.Equal(t, "PROD-001", p.Code)
}

func TestDeleteReferencedProductSoftDeletes(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, Product{Name: "Anchovy fillets", UnitID: 1})
	require.NoError(t, err)
	repo.references[p.ID] = 3

	removed, err := svc.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	kept, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, kept.Active, "referenced product must be deactivated, not removed")
}

func TestDeleteUnreferencedProductRemovesRow(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, Product{Name: "Samples", UnitID: 1})
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{Name: "  "})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(ctx, Product{Name: "Olive oil", BasePrice: -1})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

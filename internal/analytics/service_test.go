package analytics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comexsur/backoffice/internal/masterdata/parties"
)

type fakeLine struct {
	productID int64
	code      string
	name      string
	quantity  float64
	amount    float64
}

// mockRepository stores raw line fixtures and groups them the way the SQL
// rollup queries do: summed per product, ordered by amount descending with
// first-appearance order breaking ties.
type mockRepository struct {
	invoiced  map[string][]fakeLine
	offered   map[string][]fakeLine
	clients   []Ref
	importers []Ref
	products  []Ref
	calls     int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		invoiced: make(map[string][]fakeLine),
		offered:  make(map[string][]fakeLine),
	}
}

func partyKey(kind parties.PartyKind, partyID int64) string {
	return fmt.Sprintf("%s:%d", kind, partyID)
}

func groupLines(lines []fakeLine) []ProductRollup {
	index := make(map[int64]int)
	var out []ProductRollup
	for _, l := range lines {
		if i, ok := index[l.productID]; ok {
			out[i].TotalQuantity += l.quantity
			out[i].TotalAmount += l.amount
			continue
		}
		index[l.productID] = len(out)
		out = append(out, ProductRollup{
			ProductID:     l.productID,
			ProductCode:   l.code,
			ProductName:   l.name,
			TotalQuantity: l.quantity,
			TotalAmount:   l.amount,
		})
	}
	// The SQL orders by summed amount; the service re-sorts anyway, so a
	// stable pass here is enough.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].TotalAmount > out[j-1].TotalAmount; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func (m *mockRepository) InvoiceRollups(_ context.Context, kind parties.PartyKind, partyID int64) ([]ProductRollup, error) {
	m.calls++
	return groupLines(m.invoiced[partyKey(kind, partyID)]), nil
}

func (m *mockRepository) OfferRollups(_ context.Context, kind parties.PartyKind, partyID int64) ([]ProductRollup, error) {
	m.calls++
	return groupLines(m.offered[partyKey(kind, partyID)]), nil
}

func (m *mockRepository) ClientRefs(context.Context) ([]Ref, error)   { return m.clients, nil }
func (m *mockRepository) ImporterRefs(context.Context) ([]Ref, error) { return m.importers, nil }
func (m *mockRepository) ProductRefs(context.Context) ([]Ref, error)  { return m.products, nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo Repository, cache *Cache) *Service {
	return NewService(repo, cache, CaseInsensitive, testLogger())
}

func TestTopProductsGroupsAndSorts(t *testing.T) {
	repo := newMockRepository()
	repo.invoiced[partyKey(parties.PartyClient, 1)] = []fakeLine{
		{productID: 1, code: "PROD-001", name: "Product A", quantity: 2, amount: 20},
		{productID: 2, code: "PROD-002", name: "Product B", quantity: 1, amount: 50},
		{productID: 1, code: "PROD-001", name: "Product A", quantity: 1, amount: 10},
	}
	svc := newTestService(repo, NewCache(nil, 0))

	rollups, err := svc.TopProducts(context.Background(), parties.PartyClient, 1, TopNSearch)
	require.NoError(t, err)
	require.Len(t, rollups, 2)

	assert.Equal(t, "Product B", rollups[0].ProductName)
	assert.Equal(t, 50.0, rollups[0].TotalAmount)
	assert.Equal(t, "Product A", rollups[1].ProductName)
	assert.Equal(t, 30.0, rollups[1].TotalAmount)
	assert.Equal(t, 3.0, rollups[1].TotalQuantity)
}

func TestTopProductsOfferFallback(t *testing.T) {
	repo := newMockRepository()
	key := partyKey(parties.PartyClient, 7)
	repo.invoiced[key] = []fakeLine{
		{productID: 1, code: "PROD-001", name: "Invoiced", quantity: 1, amount: 40},
	}
	repo.offered[key] = []fakeLine{
		// Same product offered too; the invoiced figure wins outright.
		{productID: 1, code: "PROD-001", name: "Invoiced", quantity: 9, amount: 900},
		{productID: 2, code: "PROD-002", name: "Only offered", quantity: 2, amount: 15},
	}
	svc := newTestService(repo, NewCache(nil, 0))

	rollups, err := svc.TopProducts(context.Background(), parties.PartyClient, 7, TopNSearch)
	require.NoError(t, err)
	require.Len(t, rollups, 2)

	assert.Equal(t, int64(1), rollups[0].ProductID)
	assert.Equal(t, 40.0, rollups[0].TotalAmount)
	assert.Equal(t, int64(2), rollups[1].ProductID)
	assert.Equal(t, 15.0, rollups[1].TotalAmount)
}

func TestTopProductsTruncates(t *testing.T) {
	repo := newMockRepository()
	key := partyKey(parties.PartyImporter, 3)
	for i := 1; i <= TopNDetail+5; i++ {
		repo.invoiced[key] = append(repo.invoiced[key], fakeLine{
			productID: int64(i),
			code:      fmt.Sprintf("PROD-%03d", i),
			name:      fmt.Sprintf("Product %d", i),
			quantity:  1,
			amount:    float64(i),
		})
	}
	svc := newTestService(repo, NewCache(nil, 0))

	rollups, err := svc.TopProducts(context.Background(), parties.PartyImporter, 3, TopNDetail)
	require.NoError(t, err)
	require.Len(t, rollups, TopNDetail)
	// Largest amounts first.
	assert.Equal(t, float64(TopNDetail+5), rollups[0].TotalAmount)
}

func TestTopProductsStableTieBreak(t *testing.T) {
	repo := newMockRepository()
	key := partyKey(parties.PartyClient, 2)
	repo.invoiced[key] = []fakeLine{
		{productID: 1, code: "PROD-001", name: "First", quantity: 1, amount: 25},
		{productID: 2, code: "PROD-002", name: "Second", quantity: 1, amount: 25},
	}
	svc := newTestService(repo, NewCache(nil, 0))

	rollups, err := svc.TopProducts(context.Background(), parties.PartyClient, 2, TopNSearch)
	require.NoError(t, err)
	require.Len(t, rollups, 2)
	assert.Equal(t, "First", rollups[0].ProductName)
	assert.Equal(t, "Second", rollups[1].ProductName)
}

func TestTopProductsRejectsUnknownKind(t *testing.T) {
	svc := newTestService(newMockRepository(), NewCache(nil, 0))
	_, err := svc.TopProducts(context.Background(), parties.PartyKind("VENDOR"), 1, 10)
	assert.Error(t, err)
}

func TestTopProductsCachesAndInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)

	repo := newMockRepository()
	repo.invoiced[partyKey(parties.PartyClient, 1)] = []fakeLine{
		{productID: 1, code: "PROD-001", name: "Cached", quantity: 1, amount: 10},
	}
	svc := newTestService(repo, cache)
	ctx := context.Background()

	first, err := svc.TopProducts(ctx, parties.PartyClient, 1, TopNSearch)
	require.NoError(t, err)
	require.Len(t, first, 1)
	callsAfterFirst := repo.calls

	second, err := svc.TopProducts(ctx, parties.PartyClient, 1, TopNSearch)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, repo.calls, "second read must hit the cache")

	svc.Invalidate(ctx)

	_, err = svc.TopProducts(ctx, parties.PartyClient, 1, TopNSearch)
	require.NoError(t, err)
	assert.Greater(t, repo.calls, callsAfterFirst, "bumped version must force a recompute")
}

func TestSearchFoldsCase(t *testing.T) {
	repo := newMockRepository()
	repo.clients = []Ref{{ID: 1, Name: "Comercial Andina"}, {ID: 2, Name: "Otro"}}
	repo.importers = []Ref{{ID: 5, Name: "ANDINA IMPORTS"}}
	repo.products = []Ref{{ID: 9, Name: "Harina", Code: "PROD-009"}}
	svc := newTestService(repo, NewCache(nil, 0))

	result, err := svc.Search(context.Background(), "andina")
	require.NoError(t, err)
	require.Len(t, result.Clients, 1)
	assert.Equal(t, int64(1), result.Clients[0].ID)
	require.Len(t, result.Importers, 1)
	assert.Equal(t, int64(5), result.Importers[0].ID)
	assert.Empty(t, result.Products)
}

func TestSearchCaseSensitive(t *testing.T) {
	repo := newMockRepository()
	repo.clients = []Ref{{ID: 1, Name: "Comercial Andina"}}
	svc := NewService(repo, NewCache(nil, 0), CaseSensitive, testLogger())

	result, err := svc.Search(context.Background(), "ANDINA")
	require.NoError(t, err)
	assert.Empty(t, result.Clients)

	result, err = svc.Search(context.Background(), "Andina")
	require.NoError(t, err)
	assert.Len(t, result.Clients, 1)
}

func TestSearchMatchesProductCode(t *testing.T) {
	repo := newMockRepository()
	repo.products = []Ref{
		{ID: 1, Name: "Harina", Code: "PROD-001"},
		{ID: 2, Name: "Azucar", Code: "PROD-002"},
	}
	svc := newTestService(repo, NewCache(nil, 0))

	result, err := svc.Search(context.Background(), "prod-002")
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, int64(2), result.Products[0].ID)
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := newTestService(newMockRepository(), NewCache(nil, 0))
	result, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, result.Clients)
	assert.Empty(t, result.Importers)
	assert.Empty(t, result.Products)
}

func TestSearchExpandsTopProducts(t *testing.T) {
	repo := newMockRepository()
	repo.clients = []Ref{{ID: 1, Name: "Comercial Andina"}}
	repo.invoiced[partyKey(parties.PartyClient, 1)] = []fakeLine{
		{productID: 4, code: "PROD-004", name: "Top seller", quantity: 2, amount: 80},
	}
	svc := newTestService(repo, NewCache(nil, 0))

	result, err := svc.Search(context.Background(), "comercial")
	require.NoError(t, err)
	require.Len(t, result.Clients, 1)
	require.Len(t, result.Clients[0].TopProducts, 1)
	assert.Equal(t, "Top seller", result.Clients[0].TopProducts[0].ProductName)
}

package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comexsur/backoffice/internal/masterdata/parties"
)

// Repository is the read side the aggregator runs on. All queries are
// read-only; nothing here mutates a document or a line.
type Repository interface {
	// InvoiceRollups groups invoice line items reachable from the party,
	// directly or through the client→importer association.
	InvoiceRollups(ctx context.Context, kind parties.PartyKind, partyID int64) ([]ProductRollup, error)
	// OfferRollups does the same over the three offer families. Used as a
	// fallback for products the party has never been invoiced for.
	OfferRollups(ctx context.Context, kind parties.PartyKind, partyID int64) ([]ProductRollup, error)

	ClientRefs(ctx context.Context) ([]Ref, error)
	ImporterRefs(ctx context.Context) ([]Ref, error)
	ProductRefs(ctx context.Context) ([]Ref, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// partyFilter builds the document ownership predicate. An importer's
// documents include those addressed through one of its clients.
func partyFilter(kind parties.PartyKind) string {
	if kind == parties.PartyImporter {
		return `(d.importer_id = $1 OR d.client_id IN (SELECT id FROM clients WHERE importer_id = $1))`
	}
	return `d.client_id = $1`
}

const rollupSelect = `
	SELECT p.id, p.code, p.name,
	       SUM(COALESCE(NULLIF(l.net_weight, 0), l.quantity)) AS total_quantity,
	       SUM(l.subtotal) AS total_amount
	FROM document_lines l
	JOIN documents d ON d.id = l.document_id
	JOIN products p ON p.id = l.product_id
	WHERE %s AND %s
	GROUP BY p.id, p.code, p.name
	ORDER BY total_amount DESC, MIN(l.id)`

func (r *repository) InvoiceRollups(ctx context.Context, kind parties.PartyKind, partyID int64) ([]ProductRollup, error) {
	query := fmt.Sprintf(rollupSelect, partyFilter(kind), `d.kind = 'INVOICE'`)
	return r.rollups(ctx, query, partyID)
}

func (r *repository) OfferRollups(ctx context.Context, kind parties.PartyKind, partyID int64) ([]ProductRollup, error) {
	query := fmt.Sprintf(rollupSelect, partyFilter(kind), `d.kind <> 'INVOICE'`)
	return r.rollups(ctx, query, partyID)
}

func (r *repository) rollups(ctx context.Context, query string, partyID int64) ([]ProductRollup, error) {
	rows, err := r.pool.Query(ctx, query, partyID)
	if err != nil {
		return nil, fmt.Errorf("query rollups: %w", err)
	}
	defer rows.Close()

	var out []ProductRollup
	for rows.Next() {
		var ru ProductRollup
		if err := rows.Scan(&ru.ProductID, &ru.ProductCode, &ru.ProductName, &ru.TotalQuantity, &ru.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan rollup: %w", err)
		}
		out = append(out, ru)
	}
	return out, rows.Err()
}

func (r *repository) ClientRefs(ctx context.Context) ([]Ref, error) {
	return r.refs(ctx, `SELECT id, name, '' FROM clients WHERE active ORDER BY id`)
}

func (r *repository) ImporterRefs(ctx context.Context) ([]Ref, error) {
	return r.refs(ctx, `SELECT id, name, '' FROM importers WHERE active ORDER BY id`)
}

func (r *repository) ProductRefs(ctx context.Context) ([]Ref, error) {
	return r.refs(ctx, `SELECT id, name, code FROM products WHERE active ORDER BY id`)
}

func (r *repository) refs(ctx context.Context, query string) ([]Ref, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query refs: %w", err)
	}
	defer rows.Close()

	var out []Ref
	for rows.Next() {
		var ref Ref
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Code); err != nil {
			return nil, fmt.Errorf("scan ref: %w", err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

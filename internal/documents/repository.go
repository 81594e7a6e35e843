package documents

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comexsur/backoffice/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for documents, their
// lines and the audit trail.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	Get(ctx context.Context, id int64) (*Document, error)
	GetByNumber(ctx context.Context, kind Kind, number string) (*Document, error)
	List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error)
	Create(ctx context.Context, doc Document) (int64, error)
	UpdateHeader(ctx context.Context, id int64, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdateTotals(ctx context.Context, id int64, subtotal, taxes, discount, total float64) error

	Lines(ctx context.Context, documentID int64) ([]Line, error)
	GetLine(ctx context.Context, lineID int64) (*Line, error)
	InsertLine(ctx context.Context, line Line) (int64, error)
	UpdateLine(ctx context.Context, line Line) error
	DeleteLine(ctx context.Context, lineID int64) error

	MaxNumber(ctx context.Context, kind Kind, prefix string) (string, error)
	ExpireOverdue(ctx context.Context, asOf time.Time) (int64, error)
	InsertEvent(ctx context.Context, event Event) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a repository over a pgx pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const documentColumns = `id, kind, number, issue_date, due_date, status, client_id, importer_id,
	subtotal, taxes, discount, total, notes, created_at, updated_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(
		&d.ID, &d.Kind, &d.Number, &d.IssueDate, &d.DueDate, &d.Status,
		&d.ClientID, &d.ImporterID,
		&d.Subtotal, &d.Taxes, &d.Discount, &d.Total,
		&d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	d, err := scanDocument(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	d.Lines, err = r.Lines(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repository) GetByNumber(ctx context.Context, kind Kind, number string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE kind = $1 AND number = $2`
	d, err := scanDocument(r.db.QueryRow(ctx, query, kind, number))
	if err != nil {
		return nil, err
	}
	d.Lines, err = r.Lines(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repository) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	where := ` WHERE kind = $1`
	args := []interface{}{req.Kind}
	argPos := 1

	if req.Status != nil {
		argPos++
		where += ` AND status = $` + strconv.Itoa(argPos)
		args = append(args, *req.Status)
	}
	if req.ClientID != nil {
		argPos++
		where += ` AND client_id = $` + strconv.Itoa(argPos)
		args = append(args, *req.ClientID)
	}
	if req.ImporterID != nil {
		argPos++
		where += ` AND importer_id = $` + strconv.Itoa(argPos)
		args = append(args, *req.ImporterID)
	}
	if req.DateFrom != nil {
		argPos++
		where += ` AND issue_date >= $` + strconv.Itoa(argPos)
		args = append(args, *req.DateFrom)
	}
	if req.DateTo != nil {
		argPos++
		where += ` AND issue_date <= $` + strconv.Itoa(argPos)
		args = append(args, *req.DateTo)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + documentColumns + ` FROM documents` + where +
		` ORDER BY issue_date DESC, id DESC`
	if req.Limit > 0 {
		argPos++
		query += ` LIMIT $` + strconv.Itoa(argPos)
		args = append(args, req.Limit)
		argPos++
		query += ` OFFSET $` + strconv.Itoa(argPos)
		args = append(args, req.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		err := rows.Scan(
			&d.ID, &d.Kind, &d.Number, &d.IssueDate, &d.DueDate, &d.Status,
			&d.ClientID, &d.ImporterID,
			&d.Subtotal, &d.Taxes, &d.Discount, &d.Total,
			&d.Notes, &d.CreatedAt, &d.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, doc Document) (int64, error) {
	query := `
		INSERT INTO documents (kind, number, issue_date, due_date, status, client_id, importer_id,
			subtotal, taxes, discount, total, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		doc.Kind, doc.Number, doc.IssueDate, doc.DueDate, doc.Status,
		doc.ClientID, doc.ImporterID,
		doc.Subtotal, doc.Taxes, doc.Discount, doc.Total, doc.Notes,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrDuplicateNumber
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateHeader(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := `UPDATE documents SET updated_at = NOW()`
	var args []interface{}
	argPos := 0

	for _, col := range []string{"number", "issue_date", "due_date", "notes", "taxes", "discount"} {
		if v, ok := updates[col]; ok {
			argPos++
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
		}
	}

	argPos++
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateNumber
		}
		return err
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateTotals(ctx context.Context, id int64, subtotal, taxes, discount, total float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE documents
		SET subtotal = $1, taxes = $2, discount = $3, total = $4, updated_at = NOW()
		WHERE id = $5`,
		subtotal, taxes, discount, total, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const lineColumns = `id, document_id, product_id, quantity, gross_weight, net_weight, packages,
	unit_price, cif_price, subtotal, line_order`

func (r *repository) Lines(ctx context.Context, documentID int64) ([]Line, error) {
	query := `SELECT ` + lineColumns + ` FROM document_lines WHERE document_id = $1 ORDER BY line_order, id`
	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		err := rows.Scan(
			&l.ID, &l.DocumentID, &l.ProductID, &l.Quantity,
			&l.GrossWeight, &l.NetWeight, &l.Packages,
			&l.UnitPrice, &l.CIFPrice, &l.Subtotal, &l.LineOrder,
		)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) GetLine(ctx context.Context, lineID int64) (*Line, error) {
	query := `SELECT ` + lineColumns + ` FROM document_lines WHERE id = $1`
	var l Line
	err := r.db.QueryRow(ctx, query, lineID).Scan(
		&l.ID, &l.DocumentID, &l.ProductID, &l.Quantity,
		&l.GrossWeight, &l.NetWeight, &l.Packages,
		&l.UnitPrice, &l.CIFPrice, &l.Subtotal, &l.LineOrder,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *repository) InsertLine(ctx context.Context, line Line) (int64, error) {
	query := `
		INSERT INTO document_lines (document_id, product_id, quantity, gross_weight, net_weight,
			packages, unit_price, cif_price, subtotal, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		line.DocumentID, line.ProductID, line.Quantity, line.GrossWeight, line.NetWeight,
		line.Packages, line.UnitPrice, line.CIFPrice, line.Subtotal, line.LineOrder,
	).Scan(&id)
	return id, err
}

func (r *repository) UpdateLine(ctx context.Context, line Line) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE document_lines
		SET product_id = $1, quantity = $2, gross_weight = $3, net_weight = $4, packages = $5,
			unit_price = $6, cif_price = $7, subtotal = $8, line_order = $9
		WHERE id = $10`,
		line.ProductID, line.Quantity, line.GrossWeight, line.NetWeight, line.Packages,
		line.UnitPrice, line.CIFPrice, line.Subtotal, line.LineOrder, line.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteLine(ctx context.Context, lineID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM document_lines WHERE id = $1`, lineID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MaxNumber(ctx context.Context, kind Kind, prefix string) (string, error) {
	// Length before lexicographic order: suffixes are zero-padded to three
	// digits, but once a year's sequence passes 999 the suffix grows a digit
	// and plain MAX(number) would rank Z26999 above Z261000.
	var number string
	err := r.db.QueryRow(ctx,
		`SELECT number FROM documents
		 WHERE kind = $1 AND number LIKE $2 || '%'
		 ORDER BY length(number) DESC, number DESC
		 LIMIT 1`,
		kind, prefix,
	).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return number, nil
}

func (r *repository) ExpireOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE documents
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND due_date IS NOT NULL AND due_date < $3
		  AND kind IN ($4, $5, $6)`,
		StatusExpired, StatusPending, asOf,
		KindGeneralOffer, KindClientOffer, KindImporterOffer)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) InsertEvent(ctx context.Context, event Event) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO document_events (id, document_id, action, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.DocumentID, event.Action, event.Detail, event.OccurredAt)
	return err
}

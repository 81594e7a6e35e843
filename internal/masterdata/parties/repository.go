package parties

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("party not found")

type Repository interface {
	ListClients(ctx context.Context, search string, limit, offset int) ([]Client, int, error)
	GetClient(ctx context.Context, id int64) (Client, error)
	CreateClient(ctx context.Context, client Client) (Client, error)
	UpdateClient(ctx context.Context, id int64, client Client) error
	DeactivateClient(ctx context.Context, id int64) error

	ListImporters(ctx context.Context, search string, limit, offset int) ([]Importer, int, error)
	GetImporter(ctx context.Context, id int64) (Importer, error)
	CreateImporter(ctx context.Context, importer Importer) (Importer, error)
	UpdateImporter(ctx context.Context, id int64, importer Importer) error
	DeactivateImporter(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const clientColumns = `id, name, tax_id, email, phone, address, importer_id, active, created_at, updated_at`

func (r *repository) ListClients(ctx context.Context, search string, limit, offset int) ([]Client, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0
	if search != "" {
		argCount++
		where += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + clientColumns + ` FROM clients` + where + ` ORDER BY name`
	if limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		err := rows.Scan(&c.ID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.Address,
			&c.ImporterID, &c.Active, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, c)
	}
	return clients, total, rows.Err()
}

func (r *repository) GetClient(ctx context.Context, id int64) (Client, error) {
	var c Client
	err := r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.Address,
			&c.ImporterID, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	return c, nil
}

func (r *repository) CreateClient(ctx context.Context, client Client) (Client, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO clients (name, tax_id, email, phone, address, importer_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
		RETURNING id, active, created_at, updated_at`,
		client.Name, client.TaxID, client.Email, client.Phone, client.Address, client.ImporterID,
	).Scan(&client.ID, &client.Active, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return Client{}, err
	}
	return client, nil
}

func (r *repository) UpdateClient(ctx context.Context, id int64, client Client) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE clients
		SET name = $1, tax_id = $2, email = $3, phone = $4, address = $5, importer_id = $6, updated_at = NOW()
		WHERE id = $7`,
		client.Name, client.TaxID, client.Email, client.Phone, client.Address, client.ImporterID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeactivateClient(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE clients SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const importerColumns = `id, name, country, tax_id, email, phone, active, created_at, updated_at`

func (r *repository) ListImporters(ctx context.Context, search string, limit, offset int) ([]Importer, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0
	if search != "" {
		argCount++
		where += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM importers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + importerColumns + ` FROM importers` + where + ` ORDER BY name`
	if limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var importers []Importer
	for rows.Next() {
		var i Importer
		err := rows.Scan(&i.ID, &i.Name, &i.Country, &i.TaxID, &i.Email, &i.Phone,
			&i.Active, &i.CreatedAt, &i.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		importers = append(importers, i)
	}
	return importers, total, rows.Err()
}

func (r *repository) GetImporter(ctx context.Context, id int64) (Importer, error) {
	var i Importer
	err := r.db.QueryRow(ctx, `SELECT `+importerColumns+` FROM importers WHERE id = $1`, id).
		Scan(&i.ID, &i.Name, &i.Country, &i.TaxID, &i.Email, &i.Phone,
			&i.Active, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Importer{}, ErrNotFound
		}
		return Importer{}, err
	}
	return i, nil
}

func (r *repository) CreateImporter(ctx context.Context, importer Importer) (Importer, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO importers (name, country, tax_id, email, phone, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
		RETURNING id, active, created_at, updated_at`,
		importer.Name, importer.Country, importer.TaxID, importer.Email, importer.Phone,
	).Scan(&importer.ID, &importer.Active, &importer.CreatedAt, &importer.UpdatedAt)
	if err != nil {
		return Importer{}, err
	}
	return importer, nil
}

func (r *repository) UpdateImporter(ctx context.Context, id int64, importer Importer) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE importers
		SET name = $1, country = $2, tax_id = $3, email = $4, phone = $5, updated_at = NOW()
		WHERE id = $6`,
		importer.Name, importer.Country, importer.TaxID, importer.Email, importer.Phone, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeactivateImporter(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE importers SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package units

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("unit not found")

type Repository interface {
	List(ctx context.Context) ([]Unit, error)
	Get(ctx context.Context, id int64) (Unit, error)
	Create(ctx context.Context, unit Unit) (Unit, error)
	Update(ctx context.Context, id int64, unit Unit) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) List(ctx context.Context) ([]Unit, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, abbreviation FROM units ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Abbreviation); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Unit, error) {
	var u Unit
	err := r.db.QueryRow(ctx, `SELECT id, name, abbreviation FROM units WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Abbreviation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Unit{}, ErrNotFound
		}
		return Unit{}, err
	}
	return u, nil
}

func (r *repository) Create(ctx context.Context, unit Unit) (Unit, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO units (name, abbreviation) VALUES ($1, $2) RETURNING id`,
		unit.Name, unit.Abbreviation,
	).Scan(&unit.ID)
	if err != nil {
		return Unit{}, err
	}
	return unit, nil
}

func (r *repository) Update(ctx context.Context, id int64, unit Unit) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE units SET name = $1, abbreviation = $2 WHERE id = $3`,
		unit.Name, unit.Abbreviation, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

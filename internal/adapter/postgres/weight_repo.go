package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"weighttrack/internal/domain"
)

var _ domain.WeightStore = (*DB)(nil)

func newDB(s *sql.DB) *DB {
	return &DB{sql: s, newID: uuid.NewString}
}

// List returns every entry in insertion order.
func (d *DB) List(ctx context.Context) ([]domain.WeightEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, weight, to_char(day, 'YYYY-MM-DD') FROM weight_entries ORDER BY created_at, id;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.WeightEntry, 0)
	for rows.Next() {
		var e domain.WeightEntry
		if err := rows.Scan(&e.ID, &e.Weight, &e.Date); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create inserts a new entry.
func (d *DB) Create(ctx context.Context, in domain.WeightInput) (*domain.WeightEntry, error) {
	e := domain.WeightEntry{ID: d.newID()}
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO weight_entries(id, weight, day) VALUES($1, $2, $3) RETURNING weight, to_char(day, 'YYYY-MM-DD');",
		e.ID, in.Weight, in.Date,
	).Scan(&e.Weight, &e.Date)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Update replaces the weight and date of an existing entry.
func (d *DB) Update(ctx context.Context, id string, in domain.WeightInput) (*domain.WeightEntry, error) {
	e := domain.WeightEntry{ID: id}
	err := d.sql.QueryRowContext(ctx,
		"UPDATE weight_entries SET weight=$1, day=$2 WHERE id=$3 RETURNING weight, to_char(day, 'YYYY-MM-DD');",
		in.Weight, in.Date, id,
	).Scan(&e.Weight, &e.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Delete removes an entry by id.
func (d *DB) Delete(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM weight_entries WHERE id=$1;", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

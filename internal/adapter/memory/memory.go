// Package memory implements an in-memory weight store for development and testing.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"weighttrack/internal/domain"
)

// DB implements an in-memory weight store. Entries are kept in insertion order.
type DB struct {
	mu      sync.Mutex
	weights []domain.WeightEntry
	newID   func() string
}

// New creates a new in-memory store.
func New() *DB {
	return &DB{newID: uuid.NewString}
}

// Ensure interfaces are met.
var _ domain.WeightStore = (*DB)(nil)

// List returns a copy of every entry in insertion order.
func (db *DB) List(ctx context.Context) ([]domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.WeightEntry, len(db.weights))
	copy(result, db.weights)
	return result, nil
}

// Create appends an entry with a fresh id.
func (db *DB) Create(ctx context.Context, in domain.WeightInput) (*domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	entry := domain.WeightEntry{ID: db.newID(), Date: in.Date, Weight: in.Weight}
	db.weights = append(db.weights, entry)
	return &entry, nil
}

// Update replaces the weight and date of an existing entry.
func (db *DB) Update(ctx context.Context, id string, in domain.WeightInput) (*domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.weights {
		if db.weights[i].ID == id {
			db.weights[i].Date = in.Date
			db.weights[i].Weight = in.Weight
			out := db.weights[i]
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Delete removes an entry by id.
func (db *DB) Delete(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, w := range db.weights {
		if w.ID == id {
			db.weights = append(db.weights[:i], db.weights[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

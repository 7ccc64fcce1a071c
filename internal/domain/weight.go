// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
)

// WeightEntry represents a single weight measurement as held by the remote store.
type WeightEntry struct {
	ID     string  `json:"_id"`
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// WeightInput is the payload of create and update requests.
type WeightInput struct {
	Weight float64 `json:"weight"`
	Date   string  `json:"date"`
}

// WeightStore is the port for the store of record. The remote API client, the
// in-memory store and the postgres store all implement it.
type WeightStore interface {
	List(ctx context.Context) ([]WeightEntry, error)
	Create(ctx context.Context, in WeightInput) (*WeightEntry, error)
	Update(ctx context.Context, id string, in WeightInput) (*WeightEntry, error)
	Delete(ctx context.Context, id string) error
}

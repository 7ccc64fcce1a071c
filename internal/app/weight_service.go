package app

import (
	"context"
	"math"

	"weighttrack/internal/domain"
)

// WeightService encapsulates the store-side weight use cases served by weightsd.
type WeightService struct {
	repo domain.WeightStore
}

// NewWeightService creates a WeightService backed by the given store.
func NewWeightService(repo domain.WeightStore) *WeightService {
	return &WeightService{repo: repo}
}

// List returns every entry.
func (s *WeightService) List(ctx context.Context) ([]domain.WeightEntry, error) {
	return s.repo.List(ctx)
}

// Create validates and stores a new entry.
func (s *WeightService) Create(ctx context.Context, in domain.WeightInput) (*domain.WeightEntry, error) {
	in, err := validateInput(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}

// Update validates and replaces an existing entry.
func (s *WeightService) Update(ctx context.Context, id string, in domain.WeightInput) (*domain.WeightEntry, error) {
	if id == "" {
		return nil, &domain.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	in, err := validateInput(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, in)
}

// Delete removes an entry.
func (s *WeightService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &domain.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	return s.repo.Delete(ctx, id)
}

func validateInput(in domain.WeightInput) (domain.WeightInput, error) {
	if math.IsNaN(in.Weight) || math.IsInf(in.Weight, 0) {
		return in, &domain.ValidationError{Field: "weight", Reason: "must be a finite number"}
	}
	date, err := domain.CanonicalDate(in.Date)
	if err != nil {
		return in, &domain.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	in.Date = date
	return in, nil
}

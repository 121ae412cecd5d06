package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NoopMonthViewStore is used when Redis is not configured. Every read
// misses, so views are always rebuilt from the database.
type NoopMonthViewStore struct{}

// NewNoopMonthViewStore creates a NoopMonthViewStore
func NewNoopMonthViewStore() *NoopMonthViewStore {
	return &NoopMonthViewStore{}
}

// Get always misses
func (NoopMonthViewStore) Get(ctx context.Context, tenantID uuid.UUID, year int, month time.Month, dest any) error {
	return ErrMiss
}

// Set discards the view
func (NoopMonthViewStore) Set(ctx context.Context, tenantID uuid.UUID, year int, month time.Month, view any) error {
	return nil
}

// Invalidate is a no-op
func (NoopMonthViewStore) Invalidate(ctx context.Context, tenantID uuid.UUID, year int, month time.Month) error {
	return nil
}

var _ MonthViewStore = (*NoopMonthViewStore)(nil)

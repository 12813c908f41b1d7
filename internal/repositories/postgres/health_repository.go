package postgres

import (
	"context"

	platform "github.com/nueve-shop/api/internal/platform/postgres"
)

// HealthRepository reports storage connectivity for readiness probes.
type HealthRepository struct {
	db *platform.DB
}

// NewHealthRepository constructs a HealthRepository backed by the pool.
func NewHealthRepository(db *platform.DB) *HealthRepository {
	return &HealthRepository{db: db}
}

// Check pings the pool.
func (r *HealthRepository) Check(ctx context.Context) error {
	return r.db.Ping(ctx)
}

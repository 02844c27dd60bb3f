// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"options-lab/internal/models"
)

// StrategyStore persists named strategies.
type StrategyStore interface {
	// SaveStrategy inserts s, or replaces the legs and description of the
	// strategy with the same name. s.ID and the timestamps are filled in.
	SaveStrategy(ctx context.Context, s *models.OptionStrategy) error
	// GetStrategy looks a strategy up by ID or by name.
	GetStrategy(ctx context.Context, idOrName string) (*models.OptionStrategy, error)
	ListStrategies(ctx context.Context, filter StrategyFilter) ([]models.OptionStrategy, error)
	DeleteStrategy(ctx context.Context, idOrName string) error

	// Lifecycle
	Close() error
}

// StrategyFilter represents filters for listing strategies.
type StrategyFilter struct {
	Underlying string
	Limit      int
}

package service

import (
	"context"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

//go:generate mockgen -destination=../mocks/mock_cache.go -package=mocks github.com/cypherlabdev/arbitrage-scanner-service/internal/service Cache

// Cache is an interface that abstracts opportunity cache operations
// This allows for easier testing and mocking
type Cache interface {
	SetBatch(ctx context.Context, opps []*models.ArbitrageOpportunity) error
	ClearEvent(ctx context.Context, eventID string) error
	Get(ctx context.Context, id string) (*models.ArbitrageOpportunity, error)
	GetByEvent(ctx context.Context, eventID string) ([]*models.ArbitrageOpportunity, error)
	GetTop(ctx context.Context, limit int) ([]*models.ArbitrageOpportunity, error)
	Ping(ctx context.Context) error
	Close() error
}

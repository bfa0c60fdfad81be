package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
	"github.com/cypherlabdev/arbitrage-scanner-service/pkg/arbitrage"
)

//go:generate mockgen -destination=../mocks/mock_scanner.go -package=mocks github.com/cypherlabdev/arbitrage-scanner-service/internal/service Scanner,Publisher,RecordScanner

// Scanner is an interface that abstracts the arbitrage engine
// This allows for easier testing and mocking
type Scanner interface {
	Scan(records []models.OddsRecord, stake decimal.Decimal) (*arbitrage.ScanResult, error)
}

// Publisher forwards detected opportunities to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, batchID string, opps []*models.ArbitrageOpportunity) error
	Close() error
}

// RecordScanner is the entry point used by transports (Kafka, HTTP, poller)
type RecordScanner interface {
	ScanRecords(ctx context.Context, source, batchID string, records []models.OddsRecord, stake *decimal.Decimal) (*arbitrage.ScanResult, error)
}

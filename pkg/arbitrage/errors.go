package arbitrage

import (
	"errors"
	"fmt"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

var (
	ErrMalformedRecord  = errors.New("malformed odds record")
	ErrIncompleteMarket = errors.New("incomplete market")
	ErrInvalidStake     = errors.New("invalid stake")
)

// MalformedRecordError reports a record excluded from its group
type MalformedRecordError struct {
	Record models.OddsRecord
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: event=%s market=%s outcome=%s bookmaker=%s: %s",
		ErrMalformedRecord, e.Record.EventID, e.Record.MarketType, e.Record.Outcome, e.Record.Bookmaker, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// IncompleteMarketError reports a group that lacks quotes for some required labels.
// It is informational: the group simply yields no combinations.
type IncompleteMarketError struct {
	Key     MarketKey
	Missing []models.OutcomeLabel
}

func (e *IncompleteMarketError) Error() string {
	return fmt.Sprintf("%s: %s missing %v", ErrIncompleteMarket, e.Key, e.Missing)
}

func (e *IncompleteMarketError) Unwrap() error { return ErrIncompleteMarket }

// InvalidStakeError reports a non-positive or non-numeric stake
type InvalidStakeError struct {
	Value string
}

func (e *InvalidStakeError) Error() string {
	return fmt.Sprintf("%s: %q (must be a number greater than zero)", ErrInvalidStake, e.Value)
}

func (e *InvalidStakeError) Unwrap() error { return ErrInvalidStake }

package oddsapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

// Market keys understood by Flatten
const (
	MarketH2H    = "h2h"
	MarketTotals = "totals"
)

const drawOutcome = "Draw"

// ErrRejected marks API data that could not be turned into odds records
var ErrRejected = errors.New("rejected odds API data")

// RejectError reports an event, market or outcome skipped during flattening
type RejectError struct {
	EventID   string
	Bookmaker string
	Market    string
	Reason    string
}

func (e *RejectError) Error() string {
	if e.Bookmaker == "" {
		return fmt.Sprintf("%s: event=%s: %s", ErrRejected, e.EventID, e.Reason)
	}
	return fmt.Sprintf("%s: event=%s bookmaker=%s market=%s: %s", ErrRejected, e.EventID, e.Bookmaker, e.Market, e.Reason)
}

func (e *RejectError) Unwrap() error { return ErrRejected }

// Flatten turns API events into one odds record per bookmaker outcome.
//
// totals quotes become two_way_line records keyed by their point. h2h quotes become
// two_way_outright records, or three_way_outright when any bookmaker prices a draw
// for the event. Anything that cannot be mapped is returned as a *RejectError and skipped.
func Flatten(events []Event) ([]models.OddsRecord, []error) {
	var records []models.OddsRecord
	var rejected []error

	for _, event := range events {
		if event.HomeTeam == "" || event.AwayTeam == "" || event.HomeTeam == event.AwayTeam {
			rejected = append(rejected, &RejectError{EventID: event.ID, Reason: "missing or identical teams"})
			continue
		}

		h2hType := models.MarketTwoWayOutright
		if hasDraw(event) {
			h2hType = models.MarketThreeWayOutright
		}

		for _, bookmaker := range event.Bookmakers {
			for _, market := range bookmaker.Markets {
				reject := func(reason string) {
					rejected = append(rejected, &RejectError{
						EventID:   event.ID,
						Bookmaker: bookmaker.Name(),
						Market:    market.Key,
						Reason:    reason,
					})
				}

				switch market.Key {
				case MarketH2H:
					for _, o := range market.Outcomes {
						label, ok := h2hLabel(event, o.Name)
						if !ok {
							reject(fmt.Sprintf("unknown outcome %q", o.Name))
							continue
						}
						records = append(records, newRecord(event, bookmaker, h2hType, label, o))
					}

				case MarketTotals:
					for _, o := range market.Outcomes {
						label, ok := totalsLabel(o.Name)
						if !ok {
							reject(fmt.Sprintf("unknown outcome %q", o.Name))
							continue
						}
						if o.Point == nil {
							reject("totals outcome without a point")
							continue
						}
						r := newRecord(event, bookmaker, models.MarketTwoWayLine, label, o)
						line := *o.Point
						r.Line = &line
						records = append(records, r)
					}

				default:
					reject("unsupported market")
				}
			}
		}
	}

	return records, rejected
}

func newRecord(event Event, bookmaker Bookmaker, market models.MarketType, label models.OutcomeLabel, o Outcome) models.OddsRecord {
	return models.OddsRecord{
		EventID:    event.ID,
		HomeTeam:   event.HomeTeam,
		AwayTeam:   event.AwayTeam,
		MarketType: market,
		Outcome:    label,
		Bookmaker:  bookmaker.Name(),
		Price:      o.Price,
	}
}

func hasDraw(event Event) bool {
	for _, bookmaker := range event.Bookmakers {
		for _, market := range bookmaker.Markets {
			if market.Key != MarketH2H {
				continue
			}
			for _, o := range market.Outcomes {
				if o.Name == drawOutcome {
					return true
				}
			}
		}
	}
	return false
}

func h2hLabel(event Event, name string) (models.OutcomeLabel, bool) {
	switch name {
	case event.HomeTeam:
		return models.OutcomeHome, true
	case event.AwayTeam:
		return models.OutcomeAway, true
	case drawOutcome:
		return models.OutcomeDraw, true
	}
	return "", false
}

func totalsLabel(name string) (models.OutcomeLabel, bool) {
	switch {
	case strings.EqualFold(name, "Over"):
		return models.OutcomeOver, true
	case strings.EqualFold(name, "Under"):
		return models.OutcomeUnder, true
	}
	return "", false
}

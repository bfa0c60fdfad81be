package arbitrage

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

// MarketKey identifies a set of directly comparable quotes
type MarketKey struct {
	EventID    string
	MarketType models.MarketType
	Line       string // Canonical decimal rendering, empty for outright markets
}

func (k MarketKey) String() string {
	if k.Line == "" {
		return fmt.Sprintf("%s:%s", k.EventID, k.MarketType)
	}
	return fmt.Sprintf("%s:%s:%s", k.EventID, k.MarketType, k.Line)
}

// KeyOf builds the grouping key of a record. Lines are compared by their canonical
// decimal value, so 2.5 and 2.50 share a key while 2.5 and 2.49999 do not.
func KeyOf(r models.OddsRecord) MarketKey {
	return MarketKey{
		EventID:    r.EventID,
		MarketType: r.MarketType,
		Line:       lineKey(r.Line),
	}
}

func lineKey(line *decimal.Decimal) string {
	if line == nil {
		return ""
	}
	return line.String()
}

// MarketGroup holds every record sharing one MarketKey. It is never mutated after GroupRecords returns it.
type MarketGroup struct {
	Key     MarketKey
	Line    *decimal.Decimal
	records []models.OddsRecord
}

// Records returns a copy of the group's records in input order
func (g *MarketGroup) Records() []models.OddsRecord {
	out := make([]models.OddsRecord, len(g.records))
	copy(out, g.records)
	return out
}

// Len returns the number of records in the group
func (g *MarketGroup) Len() int {
	return len(g.records)
}

// GroupRecords partitions records by (event, market type, line). Groups are returned in the
// order their first record appears; every input record lands in exactly one group.
func GroupRecords(records []models.OddsRecord) []*MarketGroup {
	index := make(map[MarketKey]int)
	groups := make([]*MarketGroup, 0)

	for _, r := range records {
		key := KeyOf(r)
		i, ok := index[key]
		if !ok {
			g := &MarketGroup{Key: key}
			if r.Line != nil {
				line := *r.Line
				g.Line = &line
			}
			groups = append(groups, g)
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].records = append(groups[i].records, r)
	}

	return groups
}

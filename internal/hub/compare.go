package hub

import (
	"fmt"
	"strings"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/schema"
)

// DriftKind classifies one discrepancy between a schema document and the hub
// database.
type DriftKind string

const (
	DriftMissingTable  DriftKind = "missing-table"
	DriftMissingColumn DriftKind = "missing-column"
	DriftTypeMismatch  DriftKind = "type-mismatch"
)

// Drift is one discrepancy found by Compare.
type Drift struct {
	Kind   DriftKind
	Table  string
	Column string
	Detail string
}

func (d Drift) String() string {
	switch d.Kind {
	case DriftMissingTable:
		return fmt.Sprintf("%s: table not found in hub database", d.Table)
	case DriftMissingColumn:
		return fmt.Sprintf("%s %s: column not found in hub database", d.Table, d.Column)
	default:
		return fmt.Sprintf("%s %s: %s", d.Table, d.Column, d.Detail)
	}
}

// Compare checks every table and column of a schema document against the hub
// database. Hub objects the document does not track are ignored: the sync
// schema is a chosen subset, not a mirror. onTable, if non-nil, is called
// once per document table for progress display.
func Compare(doc *schema.Schema, hubTables map[string]*HubTable, onTable func()) []Drift {
	var drifts []Drift
	for _, t := range doc.Tables {
		if onTable != nil {
			onTable()
		}
		ht, ok := hubTables[t.QuotedName]
		if !ok {
			drifts = append(drifts, Drift{Kind: DriftMissingTable, Table: t.QuotedName})
			continue
		}
		for _, c := range t.Columns {
			hc, ok := ht.Columns[c.QuotedName]
			if !ok {
				drifts = append(drifts, Drift{
					Kind:   DriftMissingColumn,
					Table:  t.QuotedName,
					Column: c.QuotedName,
				})
				continue
			}
			if c.DataType != "" && !strings.EqualFold(c.DataType, hc.DataType) {
				drifts = append(drifts, Drift{
					Kind:   DriftTypeMismatch,
					Table:  t.QuotedName,
					Column: c.QuotedName,
					Detail: fmt.Sprintf("document says %s, hub database says %s", c.DataType, hc.DataType),
				})
			}
		}
	}
	return drifts
}

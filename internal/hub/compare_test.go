package hub_test

import (
	"testing"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/hub"
	"github.com/michaelbaranov/maintain-azuredatasync/internal/schema"
)

func hubTable(quoted string, cols ...hub.HubColumn) *hub.HubTable {
	t := &hub.HubTable{QuotedName: quoted, Columns: make(map[string]hub.HubColumn)}
	for _, c := range cols {
		t.Columns[c.QuotedName] = c
	}
	return t
}

func TestQuoteName(t *testing.T) {
	if got := hub.QuoteName("dbo", "Users"); got != "[dbo].[Users]" {
		t.Errorf("QuoteName = %q", got)
	}
	if got := hub.QuoteColumn("Id"); got != "[Id]" {
		t.Errorf("QuoteColumn = %q", got)
	}
}

func TestCompare_CleanMatch(t *testing.T) {
	doc := &schema.Schema{Tables: []*schema.Table{
		{QuotedName: "[dbo].[T1]", Columns: []*schema.Column{
			{QuotedName: "[c1]", DataType: "int"},
		}},
	}}
	live := map[string]*hub.HubTable{
		"[dbo].[T1]": hubTable("[dbo].[T1]", hub.HubColumn{QuotedName: "[c1]", DataType: "INT"}),
	}

	progress := 0
	drifts := hub.Compare(doc, live, func() { progress++ })
	if len(drifts) != 0 {
		t.Errorf("unexpected drift: %v", drifts)
	}
	if progress != 1 {
		t.Errorf("progress callback ran %d times, want 1", progress)
	}
}

func TestCompare_ReportsDrift(t *testing.T) {
	doc := &schema.Schema{Tables: []*schema.Table{
		{QuotedName: "[dbo].[Gone]"},
		{QuotedName: "[dbo].[T1]", Columns: []*schema.Column{
			{QuotedName: "[missing]", DataType: "int"},
			{QuotedName: "[typed]", DataType: "int"},
		}},
	}}
	live := map[string]*hub.HubTable{
		"[dbo].[T1]": hubTable("[dbo].[T1]",
			hub.HubColumn{QuotedName: "[typed]", DataType: "bigint"},
			hub.HubColumn{QuotedName: "[untracked]", DataType: "nvarchar"},
		),
	}

	drifts := hub.Compare(doc, live, nil)
	kinds := make(map[hub.DriftKind]int)
	for _, d := range drifts {
		kinds[d.Kind]++
	}
	if kinds[hub.DriftMissingTable] != 1 {
		t.Errorf("missing-table drifts = %d, want 1", kinds[hub.DriftMissingTable])
	}
	if kinds[hub.DriftMissingColumn] != 1 {
		t.Errorf("missing-column drifts = %d, want 1", kinds[hub.DriftMissingColumn])
	}
	if kinds[hub.DriftTypeMismatch] != 1 {
		t.Errorf("type-mismatch drifts = %d, want 1", kinds[hub.DriftTypeMismatch])
	}
	if len(drifts) != 3 {
		t.Errorf("total drifts = %d, want 3 (untracked hub columns are not drift)", len(drifts))
	}
}

package schema

import (
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Reconcile brings the registered schema in line with what a schema refresh
// found in the hub database, honoring the filter. It returns a new Schema;
// neither input is modified.
//
// Two passes run in fixed order. The removal pass drops registered tables
// that fail the filter or vanished upstream and prunes registered columns
// that vanished upstream. The addition pass then walks the live schema and
// registers new tables and columns, so additions always see the
// already-pruned state and a re-added table cannot collide with a stale
// entry.
func Reconcile(registered *Schema, live []*LiveTable, f *Filter) *Schema {
	liveByName := make(map[string]*LiveTable, len(live))
	for _, t := range live {
		liveByName[t.QuotedName] = t
	}

	out := &Schema{MasterSyncMemberName: registered.MasterSyncMemberName}

	// Removal pass: keep only tables that pass the filter and still exist
	// upstream, and within those only columns that still exist upstream.
	for _, t := range registered.Tables {
		if !f.Include(t.QuotedName) {
			log.Info("removing table from sync schema, excluded by filter",
				zap.String("table", t.QuotedName))
			continue
		}
		lt, ok := liveByName[t.QuotedName]
		if !ok {
			log.Info("removing table from sync schema, no longer present in hub database",
				zap.String("table", t.QuotedName))
			continue
		}

		liveCols := make(map[string]struct{}, len(lt.Columns))
		for _, c := range lt.Columns {
			liveCols[c.QuotedName] = struct{}{}
		}

		kept := &Table{QuotedName: t.QuotedName}
		for _, c := range t.Columns {
			if _, ok := liveCols[c.QuotedName]; !ok {
				log.Info("removing column from sync schema, no longer present in hub database",
					zap.String("table", t.QuotedName),
					zap.String("column", c.QuotedName))
				continue
			}
			kept.Columns = append(kept.Columns, c)
		}
		out.Tables = append(out.Tables, kept)
	}

	// Addition pass: register every eligible live table and column that is
	// not tracked yet. A table the refresh could not describe is never
	// registered, and a brand-new table is only appended once it actually
	// gained a column.
	for _, lt := range live {
		if !f.Include(lt.QuotedName) {
			log.Info("skipping hub table, excluded by filter",
				zap.String("table", lt.QuotedName))
			continue
		}
		if lt.HasError {
			log.Warn("skipping hub table, schema refresh reported an error",
				zap.String("table", lt.QuotedName),
				zap.String("errorID", lt.ErrorID))
			continue
		}

		target := out.FindTable(lt.QuotedName)
		created := false
		if target == nil {
			target = &Table{QuotedName: lt.QuotedName}
			created = true
		}

		for _, lc := range lt.Columns {
			if target.FindColumn(lc.QuotedName) != nil {
				log.Debug("column already tracked",
					zap.String("table", lt.QuotedName),
					zap.String("column", lc.QuotedName))
				continue
			}
			if lc.HasError {
				log.Warn("skipping hub column, schema refresh reported an error",
					zap.String("table", lt.QuotedName),
					zap.String("column", lc.QuotedName),
					zap.String("errorID", lc.ErrorID))
				continue
			}
			log.Info("adding column to sync schema",
				zap.String("table", lt.QuotedName),
				zap.String("column", lc.QuotedName),
				zap.String("dataType", lc.DataType))
			target.Columns = append(target.Columns, &Column{
				QuotedName: lc.QuotedName,
				DataSize:   lc.DataSize,
				DataType:   lc.DataType,
			})
		}

		if created && len(target.Columns) > 0 {
			log.Info("adding table to sync schema",
				zap.String("table", lt.QuotedName),
				zap.Int("columns", len(target.Columns)))
			out.Tables = append(out.Tables, target)
		}
	}

	return out
}

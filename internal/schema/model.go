package schema

import (
	"github.com/pingcap/errors"
)

// Column is one synchronized column of a sync group table. DataSize and
// DataType are descriptive metadata reported by the service; they are copied
// verbatim and never interpreted.
type Column struct {
	QuotedName string `json:"quotedName"`
	DataSize   string `json:"dataSize"`
	DataType   string `json:"dataType"`
}

// Table is one synchronized table, identified by its quoted name
// ("[schema].[table]", case-sensitive exact match).
type Table struct {
	QuotedName string    `json:"quotedName"`
	Columns    []*Column `json:"columns"`
}

// Schema is the schema registered on a sync group: the set of tables and
// columns the service synchronizes. Tables keep the order the service
// reported them in.
type Schema struct {
	MasterSyncMemberName string   `json:"masterSyncMemberName,omitempty"`
	Tables               []*Table `json:"tables"`
}

// LiveColumn is a column as discovered in the hub database by a schema
// refresh. HasError means the service could not fully describe it; such a
// column must never be registered.
type LiveColumn struct {
	QuotedName string
	DataSize   string
	DataType   string
	HasError   bool
	ErrorID    string
}

// LiveTable is a table as discovered in the hub database by a schema refresh.
type LiveTable struct {
	QuotedName string
	Columns    []*LiveColumn
	HasError   bool
	ErrorID    string
}

// FindTable returns the table with the given quoted name, or nil.
func (s *Schema) FindTable(quotedName string) *Table {
	for _, t := range s.Tables {
		if t.QuotedName == quotedName {
			return t
		}
	}
	return nil
}

// FindColumn returns the column with the given quoted name, or nil.
func (t *Table) FindColumn(quotedName string) *Column {
	for _, c := range t.Columns {
		if c.QuotedName == quotedName {
			return c
		}
	}
	return nil
}

// Validate rejects a schema with duplicate table names or duplicate column
// names within one table. The reconciler assumes both inputs passed here.
func (s *Schema) Validate() error {
	tables := make(map[string]struct{}, len(s.Tables))
	for _, t := range s.Tables {
		if _, ok := tables[t.QuotedName]; ok {
			return errors.Errorf("duplicate table %s in registered schema", t.QuotedName)
		}
		tables[t.QuotedName] = struct{}{}

		cols := make(map[string]struct{}, len(t.Columns))
		for _, c := range t.Columns {
			if _, ok := cols[c.QuotedName]; ok {
				return errors.Errorf("duplicate column %s in table %s", c.QuotedName, t.QuotedName)
			}
			cols[c.QuotedName] = struct{}{}
		}
	}
	return nil
}

// ValidateLive rejects a refreshed schema with duplicate table names or
// duplicate column names within one table.
func ValidateLive(tables []*LiveTable) error {
	seen := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		if _, ok := seen[t.QuotedName]; ok {
			return errors.Errorf("duplicate table %s in refreshed schema", t.QuotedName)
		}
		seen[t.QuotedName] = struct{}{}

		cols := make(map[string]struct{}, len(t.Columns))
		for _, c := range t.Columns {
			if _, ok := cols[c.QuotedName]; ok {
				return errors.Errorf("duplicate column %s in refreshed table %s", c.QuotedName, t.QuotedName)
			}
			cols[c.QuotedName] = struct{}{}
		}
	}
	return nil
}

// Package hub inspects the hub database directly over INFORMATION_SCHEMA so
// a pushed sync schema can be cross-checked against what the database
// actually contains.
package hub

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pingcap/errors"
)

// HubColumn is a column as seen in the hub database.
type HubColumn struct {
	QuotedName string
	DataType   string
}

// HubTable is a base table as seen in the hub database, keyed by the same
// quoted name convention the sync service uses.
type HubTable struct {
	QuotedName string
	Columns    map[string]HubColumn
}

const columnsQuery = `
	SELECT c.TABLE_SCHEMA, c.TABLE_NAME, c.COLUMN_NAME, c.DATA_TYPE
	FROM INFORMATION_SCHEMA.COLUMNS c
	JOIN INFORMATION_SCHEMA.TABLES t
		ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
	WHERE t.TABLE_TYPE = 'BASE TABLE'
	ORDER BY c.TABLE_SCHEMA, c.TABLE_NAME, c.ORDINAL_POSITION`

// QuoteName composes the sync service's "[schema].[object]" form.
func QuoteName(schemaName, objectName string) string {
	return fmt.Sprintf("[%s].[%s]", schemaName, objectName)
}

// QuoteColumn brackets a bare column name.
func QuoteColumn(columnName string) string {
	return fmt.Sprintf("[%s]", columnName)
}

// Inspect reads every base table of the hub database into a map keyed by
// quoted table name.
func Inspect(ctx context.Context, db *sql.DB) (map[string]*HubTable, error) {
	rows, err := db.QueryContext(ctx, columnsQuery)
	if err != nil {
		return nil, errors.Annotate(err, "failed to query hub database columns")
	}
	defer rows.Close()

	tables := make(map[string]*HubTable)
	for rows.Next() {
		var schemaName, tableName, columnName, dataType string
		if err := rows.Scan(&schemaName, &tableName, &columnName, &dataType); err != nil {
			return nil, errors.Annotate(err, "failed to scan hub database column")
		}

		quoted := QuoteName(schemaName, tableName)
		t, ok := tables[quoted]
		if !ok {
			t = &HubTable{QuotedName: quoted, Columns: make(map[string]HubColumn)}
			tables[quoted] = t
		}
		qc := QuoteColumn(columnName)
		t.Columns[qc] = HubColumn{QuotedName: qc, DataType: dataType}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Annotate(err, "error iterating hub database columns")
	}
	return tables, nil
}

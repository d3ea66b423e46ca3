package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pingcap/errors"
)

// Document is the on-disk schema artifact written after every reconciliation
// run, dry-run or not, so operators keep an audit trail of what was (or would
// have been) pushed.
type Document struct {
	SyncGroup string  `json:"syncGroup"`
	Schema    *Schema `json:"schema"`
}

// DefaultDocumentPath returns the well-known location of the schema artifact
// for a sync group.
func DefaultDocumentPath(syncGroup string) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("maintain-azuredatasync_%s_schema.json", syncGroup))
}

// WriteDocument serializes the schema to path.
func WriteDocument(path, syncGroup string, s *Schema) error {
	doc := Document{SyncGroup: syncGroup, Schema: s}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Annotatef(err, "failed to write schema document %s", path)
	}
	return nil
}

// ReadDocument loads a schema artifact previously written by WriteDocument.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to read schema document %s", path)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Annotatef(err, "malformed schema document %s", path)
	}
	if doc.Schema == nil {
		return nil, errors.Errorf("schema document %s has no schema", path)
	}
	return &doc, nil
}

package schema_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/schema"
)

func TestDocumentRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	s := &schema.Schema{
		MasterSyncMemberName: "hub",
		Tables: []*schema.Table{
			tbl("[dbo].[T1]", col("[c1]")),
		},
	}

	if err := schema.WriteDocument(path, "prod-sync", s); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}

	doc, err := schema.ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.SyncGroup != "prod-sync" {
		t.Errorf("SyncGroup = %q, want prod-sync", doc.SyncGroup)
	}
	tab := doc.Schema.FindTable("[dbo].[T1]")
	if tab == nil {
		t.Fatal("[dbo].[T1] missing after round trip")
	}
	c := tab.FindColumn("[c1]")
	if c == nil || c.DataType != "int" {
		t.Errorf("column [c1] not preserved: %+v", c)
	}
}

func TestReadDocument_Malformed(t *testing.T) {
	if _, err := schema.ReadDocument(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing document")
	}
}

func TestDefaultDocumentPath(t *testing.T) {
	p := schema.DefaultDocumentPath("prod-sync")
	if !strings.Contains(filepath.Base(p), "prod-sync") {
		t.Errorf("path %q does not name the sync group", p)
	}
}

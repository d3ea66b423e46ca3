package datasync

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/sql/armsql"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/schema"
)

// The ARM wire types are all pointer-typed; conversions to and from the
// domain model are kept together here so nothing else has to deal with nils.

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func syncGroupInfoFromARM(g armsql.SyncGroup) *SyncGroupInfo {
	info := &SyncGroupInfo{Schema: &schema.Schema{}}
	props := g.Properties
	if props == nil {
		return info
	}
	info.Interval = deref(props.Interval)
	if props.SyncState != nil {
		info.SyncState = SyncState(*props.SyncState)
	}
	if props.Schema != nil {
		info.Schema = schemaFromARM(props.Schema)
	}
	return info
}

func schemaFromARM(s *armsql.SyncGroupSchema) *schema.Schema {
	out := &schema.Schema{
		MasterSyncMemberName: deref(s.MasterSyncMemberName),
	}
	for _, t := range s.Tables {
		if t == nil {
			continue
		}
		table := &schema.Table{QuotedName: deref(t.QuotedName)}
		for _, c := range t.Columns {
			if c == nil {
				continue
			}
			table.Columns = append(table.Columns, &schema.Column{
				QuotedName: deref(c.QuotedName),
				DataSize:   deref(c.DataSize),
				DataType:   deref(c.DataType),
			})
		}
		out.Tables = append(out.Tables, table)
	}
	return out
}

func schemaToARM(s *schema.Schema) *armsql.SyncGroupSchema {
	out := &armsql.SyncGroupSchema{}
	if s.MasterSyncMemberName != "" {
		out.MasterSyncMemberName = to.Ptr(s.MasterSyncMemberName)
	}
	for _, t := range s.Tables {
		table := &armsql.SyncGroupSchemaTable{
			QuotedName: to.Ptr(t.QuotedName),
		}
		for _, c := range t.Columns {
			table.Columns = append(table.Columns, &armsql.SyncGroupSchemaTableColumn{
				QuotedName: to.Ptr(c.QuotedName),
				DataSize:   to.Ptr(c.DataSize),
				DataType:   to.Ptr(c.DataType),
			})
		}
		out.Tables = append(out.Tables, table)
	}
	return out
}

func refreshedSchemaFromARM(full []*armsql.SyncFullSchemaProperties) *RefreshedSchema {
	out := &RefreshedSchema{}
	for _, props := range full {
		if props == nil {
			continue
		}
		if t := deref(props.LastUpdateTime); t.After(out.LastUpdateTime) {
			out.LastUpdateTime = t
		}
		for _, t := range props.Tables {
			if t == nil {
				continue
			}
			table := &schema.LiveTable{
				QuotedName: deref(t.QuotedName),
				HasError:   deref(t.HasError),
				ErrorID:    deref(t.ErrorID),
			}
			for _, c := range t.Columns {
				if c == nil {
					continue
				}
				table.Columns = append(table.Columns, &schema.LiveColumn{
					QuotedName: deref(c.QuotedName),
					DataSize:   deref(c.DataSize),
					DataType:   deref(c.DataType),
					HasError:   deref(c.HasError),
					ErrorID:    deref(c.ErrorID),
				})
			}
			out.Tables = append(out.Tables, table)
		}
	}
	return out
}

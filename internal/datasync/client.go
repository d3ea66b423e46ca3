// Package datasync wraps the Azure SQL Data Sync control-plane operations the
// tool depends on behind a narrow contract, so orchestration and tests never
// touch the ARM wire types directly.
package datasync

import (
	"context"
	"time"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/schema"
)

// IntervalDisabled turns periodic synchronization off when passed to
// SetSyncInterval. The service encodes "manual sync only" as -1.
const IntervalDisabled int32 = -1

// SyncState is the sync group's synchronization state as reported by the
// service.
type SyncState string

const (
	SyncStateProgressing SyncState = "Progressing"
	SyncStateGood        SyncState = "Good"
	SyncStateWarning     SyncState = "Warning"
	SyncStateError       SyncState = "Error"
	SyncStateNotReady    SyncState = "NotReady"
)

// InProgress reports whether a sync run is still executing.
func (s SyncState) InProgress() bool {
	return s == SyncStateProgressing
}

// Target identifies one sync group.
type Target struct {
	SubscriptionID string
	ResourceGroup  string
	Server         string
	Database       string
	SyncGroup      string
}

// SyncGroupInfo is the slice of sync group state the tool cares about.
type SyncGroupInfo struct {
	Schema    *schema.Schema
	SyncState SyncState
	Interval  int32
}

// RefreshedSchema is the hub database schema as discovered by the most recent
// schema refresh, with the service-side timestamp of that refresh.
type RefreshedSchema struct {
	Tables         []*schema.LiveTable
	LastUpdateTime time.Time
}

// Client is the sync-group control-plane contract.
type Client interface {
	// GetSyncGroup fetches the sync group's registered schema, sync state
	// and configured interval.
	GetSyncGroup(ctx context.Context, target Target) (*SyncGroupInfo, error)

	// SetSyncInterval reconfigures periodic sync. Pass IntervalDisabled to
	// turn it off.
	SetSyncInterval(ctx context.Context, target Target, seconds int32) error

	// TriggerSchemaRefresh asks the service to re-discover the hub schema.
	// The refresh runs asynchronously on the remote side.
	TriggerSchemaRefresh(ctx context.Context, target Target) error

	// GetRefreshedSchema fetches the latest discovered hub schema.
	GetRefreshedSchema(ctx context.Context, target Target) (*RefreshedSchema, error)

	// PushSchema replaces the sync group's registered schema.
	PushSchema(ctx context.Context, target Target, s *schema.Schema) error
}

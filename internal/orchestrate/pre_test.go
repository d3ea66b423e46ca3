package orchestrate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pingcap/errors"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/datasync"
	"github.com/michaelbaranov/maintain-azuredatasync/internal/orchestrate"
	"github.com/michaelbaranov/maintain-azuredatasync/internal/schema"
)

// fakeClient is an in-memory sync group used by the orchestration tests.
type fakeClient struct {
	mu sync.Mutex

	schema     *schema.Schema
	states     []datasync.SyncState // consumed one per GetSyncGroup call
	interval   int32
	refreshed  *datasync.RefreshedSchema
	refreshErr error

	getCalls      int
	triggerCalls  int
	pushCalls     int
	pushedSchema  *schema.Schema
	intervalCalls []int32
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		schema:    &schema.Schema{},
		refreshed: &datasync.RefreshedSchema{},
	}
}

func (f *fakeClient) GetSyncGroup(ctx context.Context, target datasync.Target) (*datasync.SyncGroupInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	state := datasync.SyncStateGood
	if len(f.states) > 0 {
		state = f.states[0]
		if len(f.states) > 1 {
			f.states = f.states[1:]
		}
	}
	return &datasync.SyncGroupInfo{Schema: f.schema, SyncState: state, Interval: f.interval}, nil
}

func (f *fakeClient) SetSyncInterval(ctx context.Context, target datasync.Target, seconds int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interval = seconds
	f.intervalCalls = append(f.intervalCalls, seconds)
	return nil
}

func (f *fakeClient) TriggerSchemaRefresh(ctx context.Context, target datasync.Target) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggerCalls++
	return nil
}

func (f *fakeClient) GetRefreshedSchema(ctx context.Context, target datasync.Target) (*datasync.RefreshedSchema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshed, nil
}

func (f *fakeClient) PushSchema(ctx context.Context, target datasync.Target, s *schema.Schema) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushCalls++
	f.pushedSchema = s
	return nil
}

var testTarget = datasync.Target{
	SubscriptionID: "sub",
	ResourceGroup:  "rg",
	Server:         "srv",
	Database:       "db",
	SyncGroup:      "sg",
}

func TestPreDeploy_DisablesSyncAndWaits(t *testing.T) {
	client := newFakeClient()
	client.states = []datasync.SyncState{
		datasync.SyncStateProgressing,
		datasync.SyncStateProgressing,
		datasync.SyncStateGood,
	}

	err := orchestrate.PreDeploy(context.Background(), client, testTarget, orchestrate.PreOptions{
		PollInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("PreDeploy: %v", err)
	}
	if client.interval != datasync.IntervalDisabled {
		t.Errorf("interval = %d, want %d", client.interval, datasync.IntervalDisabled)
	}
	if client.getCalls != 3 {
		t.Errorf("getCalls = %d, want 3", client.getCalls)
	}
}

func TestPreDeploy_MaxWaitExpires(t *testing.T) {
	client := newFakeClient()
	client.states = []datasync.SyncState{datasync.SyncStateProgressing}

	err := orchestrate.PreDeploy(context.Background(), client, testTarget, orchestrate.PreOptions{
		PollInterval: time.Millisecond,
		MaxWait:      20 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error when sync never goes idle")
	}
	if errors.Cause(err) != context.DeadlineExceeded {
		t.Errorf("cause = %v, want deadline exceeded", errors.Cause(err))
	}
}

func TestPreDeploy_Canceled(t *testing.T) {
	client := newFakeClient()
	client.states = []datasync.SyncState{datasync.SyncStateProgressing}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- orchestrate.PreDeploy(ctx, client, testTarget, orchestrate.PreOptions{
			PollInterval: 10 * time.Millisecond,
		})
	}()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("PreDeploy did not return after cancellation")
	}
}

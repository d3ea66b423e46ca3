package datasync

import (
	"context"
	"testing"
	"time"

	"github.com/pingcap/errors"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/schema"
)

type flakyClient struct {
	failures  int
	getCalls  int
	pushCalls int
}

func (f *flakyClient) GetSyncGroup(ctx context.Context, target Target) (*SyncGroupInfo, error) {
	f.getCalls++
	if f.getCalls <= f.failures {
		return nil, errors.New("transient")
	}
	return &SyncGroupInfo{Schema: &schema.Schema{}, SyncState: SyncStateGood}, nil
}

func (f *flakyClient) SetSyncInterval(ctx context.Context, target Target, seconds int32) error {
	return nil
}

func (f *flakyClient) TriggerSchemaRefresh(ctx context.Context, target Target) error {
	return nil
}

func (f *flakyClient) GetRefreshedSchema(ctx context.Context, target Target) (*RefreshedSchema, error) {
	return &RefreshedSchema{}, nil
}

func (f *flakyClient) PushSchema(ctx context.Context, target Target, s *schema.Schema) error {
	f.pushCalls++
	return errors.New("push failed")
}

func TestWithRetry_RecoversFromTransientFailure(t *testing.T) {
	inner := &flakyClient{failures: 2}
	c := WithRetry(inner, 3, time.Millisecond)

	info, err := c.GetSyncGroup(context.Background(), Target{})
	if err != nil {
		t.Fatalf("GetSyncGroup: %v", err)
	}
	if info.SyncState != SyncStateGood {
		t.Errorf("SyncState = %q", info.SyncState)
	}
	if inner.getCalls != 3 {
		t.Errorf("getCalls = %d, want 3", inner.getCalls)
	}
}

func TestWithRetry_GivesUpAfterAttempts(t *testing.T) {
	inner := &flakyClient{failures: 10}
	c := WithRetry(inner, 3, time.Millisecond)

	if _, err := c.GetSyncGroup(context.Background(), Target{}); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if inner.getCalls != 3 {
		t.Errorf("getCalls = %d, want 3", inner.getCalls)
	}
}

func TestWithRetry_PushIsNotRetried(t *testing.T) {
	inner := &flakyClient{}
	c := WithRetry(inner, 5, time.Millisecond)

	if err := c.PushSchema(context.Background(), Target{}, &schema.Schema{}); err == nil {
		t.Fatal("expected push error to surface")
	}
	if inner.pushCalls != 1 {
		t.Errorf("pushCalls = %d, want 1", inner.pushCalls)
	}
}

func TestWithRetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &flakyClient{failures: 10}
	c := WithRetry(inner, 3, time.Millisecond)
	if _, err := c.GetSyncGroup(ctx, Target{}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestWithRetry_SingleAttemptPassthrough(t *testing.T) {
	inner := &flakyClient{}
	if c := WithRetry(inner, 1, time.Millisecond); c != Client(inner) {
		t.Error("attempts < 2 must return the client unchanged")
	}
}

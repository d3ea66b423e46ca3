package datasync

import (
	"context"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/schema"
)

// retryClient adds bounded retry with doubling backoff to the read and
// trigger operations. PushSchema is deliberately not retried: it is the one
// remotely mutating call whose idempotency the service does not guarantee,
// and a failed push must surface immediately.
type retryClient struct {
	inner    Client
	attempts int
	backoff  time.Duration
}

// WithRetry wraps a Client so transient control-plane failures do not abort
// a run. attempts < 2 returns the client unchanged.
func WithRetry(c Client, attempts int, backoff time.Duration) Client {
	if attempts < 2 {
		return c
	}
	return &retryClient{inner: c, attempts: attempts, backoff: backoff}
}

func (r *retryClient) retry(ctx context.Context, op string, fn func(context.Context) error) error {
	var err error
	backoff := r.backoff
	for i := 0; i < r.attempts; i++ {
		if err = ctx.Err(); err != nil {
			return errors.Trace(err)
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == r.attempts-1 {
			break
		}
		log.Warn("remote call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", i+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return errors.Trace(ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return errors.Annotatef(err, "%s failed after %d attempts", op, r.attempts)
}

func (r *retryClient) GetSyncGroup(ctx context.Context, target Target) (*SyncGroupInfo, error) {
	var info *SyncGroupInfo
	err := r.retry(ctx, "GetSyncGroup", func(ctx context.Context) error {
		var err error
		info, err = r.inner.GetSyncGroup(ctx, target)
		return err
	})
	return info, err
}

func (r *retryClient) SetSyncInterval(ctx context.Context, target Target, seconds int32) error {
	return r.retry(ctx, "SetSyncInterval", func(ctx context.Context) error {
		return r.inner.SetSyncInterval(ctx, target, seconds)
	})
}

func (r *retryClient) TriggerSchemaRefresh(ctx context.Context, target Target) error {
	return r.retry(ctx, "TriggerSchemaRefresh", func(ctx context.Context) error {
		return r.inner.TriggerSchemaRefresh(ctx, target)
	})
}

func (r *retryClient) GetRefreshedSchema(ctx context.Context, target Target) (*RefreshedSchema, error) {
	var refreshed *RefreshedSchema
	err := r.retry(ctx, "GetRefreshedSchema", func(ctx context.Context) error {
		var err error
		refreshed, err = r.inner.GetRefreshedSchema(ctx, target)
		return err
	})
	return refreshed, err
}

func (r *retryClient) PushSchema(ctx context.Context, target Target, s *schema.Schema) error {
	return r.inner.PushSchema(ctx, target, s)
}

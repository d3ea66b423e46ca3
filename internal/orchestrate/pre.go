// Package orchestrate sequences the pre- and post-deployment maintenance of a
// sync group around the schema reconciler.
package orchestrate

import (
	"context"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/datasync"
)

// DefaultSyncPollInterval is how often the pre-deployment waiter checks the
// sync state.
const DefaultSyncPollInterval = 5 * time.Second

// PreOptions configures the pre-deployment wait.
type PreOptions struct {
	// PollInterval between sync state checks. Zero means
	// DefaultSyncPollInterval.
	PollInterval time.Duration
	// MaxWait bounds the wait for an in-flight sync to finish. Zero means
	// wait indefinitely (until ctx is canceled).
	MaxWait time.Duration
}

func (o *PreOptions) pollInterval() time.Duration {
	if o.PollInterval <= 0 {
		return DefaultSyncPollInterval
	}
	return o.PollInterval
}

// PreDeploy disables periodic synchronization and waits until any in-flight
// sync run reaches a terminal state, so a deployment can alter the hub schema
// without racing a running sync.
func PreDeploy(ctx context.Context, client datasync.Client, target datasync.Target, opts PreOptions) error {
	log.Info("disabling periodic sync", zap.String("syncGroup", target.SyncGroup))
	if err := client.SetSyncInterval(ctx, target, datasync.IntervalDisabled); err != nil {
		return errors.Trace(err)
	}

	if opts.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.MaxWait)
		defer cancel()
	}

	ticker := time.NewTicker(opts.pollInterval())
	defer ticker.Stop()

	for {
		info, err := client.GetSyncGroup(ctx, target)
		if err != nil {
			return errors.Trace(err)
		}
		if !info.SyncState.InProgress() {
			log.Info("sync group is idle",
				zap.String("syncGroup", target.SyncGroup),
				zap.String("syncState", string(info.SyncState)))
			return nil
		}
		log.Info("sync still in progress, waiting",
			zap.String("syncGroup", target.SyncGroup),
			zap.Duration("pollInterval", opts.pollInterval()))

		select {
		case <-ctx.Done():
			return errors.Annotatef(ctx.Err(), "gave up waiting for sync group %s to go idle", target.SyncGroup)
		case <-ticker.C:
		}
	}
}

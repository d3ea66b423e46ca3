package orchestrate

import (
	"context"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/datasync"
	"github.com/michaelbaranov/maintain-azuredatasync/internal/schema"
)

// Defaults of the post-deployment run.
const (
	DefaultRefreshPollInterval = 10 * time.Second
	DefaultRefreshTimeout      = 3000 * time.Second
	DefaultResumeInterval      = int32(600)
)

// PostOptions configures the post-deployment run.
type PostOptions struct {
	// ExcludePatterns are regexps matched (searched, not anchored) against
	// qualified table names.
	ExcludePatterns []string
	// IncludeNames are exact qualified names that bypass every exclude
	// pattern.
	IncludeNames []string
	// RefreshTimeout bounds the wait for the schema refresh to complete.
	// Zero means DefaultRefreshTimeout.
	RefreshTimeout time.Duration
	// PollInterval between refresh checks. Zero means
	// DefaultRefreshPollInterval.
	PollInterval time.Duration
	// DryRun computes and persists the schema document without pushing it
	// and leaves periodic sync disabled.
	DryRun bool
	// ResumeInterval is the periodic sync interval restored after a
	// successful push. Zero means DefaultResumeInterval.
	ResumeInterval int32
	// OutputPath of the schema document. Empty means
	// schema.DefaultDocumentPath.
	OutputPath string
}

func (o *PostOptions) refreshTimeout() time.Duration {
	if o.RefreshTimeout <= 0 {
		return DefaultRefreshTimeout
	}
	return o.RefreshTimeout
}

func (o *PostOptions) pollInterval() time.Duration {
	if o.PollInterval <= 0 {
		return DefaultRefreshPollInterval
	}
	return o.PollInterval
}

func (o *PostOptions) resumeInterval() int32 {
	if o.ResumeInterval <= 0 {
		return DefaultResumeInterval
	}
	return o.ResumeInterval
}

// Report summarizes a post-deployment run.
type Report struct {
	Schema       *schema.Schema
	DocumentPath string
	Pushed       bool
}

// PostDeploy refreshes the hub schema, reconciles the registered schema
// against it and, unless dry-running, pushes the result and re-enables
// periodic sync. The reconciled schema document is always written to disk
// before any remote mutation, so an audit artifact survives later failures.
func PostDeploy(ctx context.Context, client datasync.Client, target datasync.Target, opts PostOptions) (*Report, error) {
	start := time.Now().UTC()

	filter, err := schema.NewFilter(opts.ExcludePatterns, opts.IncludeNames)
	if err != nil {
		return nil, errors.Trace(err)
	}

	info, err := client.GetSyncGroup(ctx, target)
	if err != nil {
		return nil, errors.Trace(err)
	}
	before := info.Schema
	if err := before.Validate(); err != nil {
		return nil, errors.Annotate(err, "registered schema is malformed")
	}

	log.Info("triggering hub schema refresh", zap.String("syncGroup", target.SyncGroup))
	if err := client.TriggerSchemaRefresh(ctx, target); err != nil {
		return nil, errors.Trace(err)
	}

	refreshed, err := waitForRefresh(ctx, client, target, start, opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := schema.ValidateLive(refreshed.Tables); err != nil {
		return nil, errors.Annotate(err, "refreshed schema is malformed")
	}

	reconciled := schema.Reconcile(before, refreshed.Tables, filter)

	path := opts.OutputPath
	if path == "" {
		path = schema.DefaultDocumentPath(target.SyncGroup)
	}
	if err := schema.WriteDocument(path, target.SyncGroup, reconciled); err != nil {
		return nil, errors.Trace(err)
	}
	log.Info("schema document written",
		zap.String("path", path),
		zap.Int("tables", len(reconciled.Tables)))

	report := &Report{Schema: reconciled, DocumentPath: path}
	if opts.DryRun {
		log.Info("dry run, skipping schema push and leaving periodic sync disabled",
			zap.String("syncGroup", target.SyncGroup))
		return report, nil
	}

	log.Info("pushing reconciled schema", zap.String("syncGroup", target.SyncGroup))
	if err := client.PushSchema(ctx, target, reconciled); err != nil {
		return nil, errors.Trace(err)
	}
	report.Pushed = true

	log.Info("re-enabling periodic sync",
		zap.String("syncGroup", target.SyncGroup),
		zap.Int32("intervalSeconds", opts.resumeInterval()))
	if err := client.SetSyncInterval(ctx, target, opts.resumeInterval()); err != nil {
		return nil, errors.Trace(err)
	}
	return report, nil
}

// waitForRefresh polls until the service reports a schema update newer than
// the orchestration start time.
func waitForRefresh(ctx context.Context, client datasync.Client, target datasync.Target, start time.Time, opts PostOptions) (*datasync.RefreshedSchema, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.refreshTimeout())
	defer cancel()

	ticker := time.NewTicker(opts.pollInterval())
	defer ticker.Stop()

	for {
		refreshed, err := client.GetRefreshedSchema(ctx, target)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if refreshed.LastUpdateTime.After(start) {
			log.Info("hub schema refresh completed",
				zap.String("syncGroup", target.SyncGroup),
				zap.Time("lastUpdateTime", refreshed.LastUpdateTime))
			return refreshed, nil
		}
		log.Info("hub schema not refreshed yet, waiting",
			zap.String("syncGroup", target.SyncGroup),
			zap.Time("lastUpdateTime", refreshed.LastUpdateTime),
			zap.Duration("pollInterval", opts.pollInterval()))

		select {
		case <-ctx.Done():
			return nil, errors.Annotatef(ctx.Err(),
				"hub schema of sync group %s did not refresh within %s",
				target.SyncGroup, opts.refreshTimeout())
		case <-ticker.C:
		}
	}
}

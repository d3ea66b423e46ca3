package cmd

import (
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/orchestrate"
)

var (
	postExcludes       []string
	postIncludes       []string
	postRefreshTimeout int
	postDryRun         bool
	postResumeInterval int32
	postOutputPath     string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Refresh the hub schema, reconcile the sync schema and resume periodic sync",
	Long: `post triggers a hub schema refresh, waits for it to complete, reconciles the
sync group's registered schema against the refreshed hub schema (applying the
exclude patterns and include names) and writes the resulting schema document
to disk. Unless --dry-run is set it then pushes the document to the sync
group and re-enables periodic sync.

Exclude patterns are regular expressions searched against qualified
"[schema].[table]" names. An exact --include name always wins over every
exclude pattern.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newSyncClient()
		if err != nil {
			return err
		}

		report, err := orchestrate.PostDeploy(cmd.Context(), client, Target, orchestrate.PostOptions{
			ExcludePatterns: postExcludes,
			IncludeNames:    postIncludes,
			RefreshTimeout:  time.Duration(postRefreshTimeout) * time.Second,
			DryRun:          postDryRun,
			ResumeInterval:  postResumeInterval,
			OutputPath:      postOutputPath,
		})
		if err != nil {
			return errors.Trace(err)
		}

		log.Info("post-deployment maintenance complete",
			zap.String("syncGroup", Target.SyncGroup),
			zap.Int("tables", len(report.Schema.Tables)),
			zap.String("schemaDocument", report.DocumentPath),
			zap.Bool("pushed", report.Pushed))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(postCmd)

	postCmd.Flags().StringArrayVar(&postExcludes, "exclude", nil, "regexp excluding matching tables from sync (repeatable)")
	postCmd.Flags().StringArrayVar(&postIncludes, "include", nil, "exact table name to sync regardless of excludes (repeatable)")
	postCmd.Flags().IntVar(&postRefreshTimeout, "refresh-timeout", 3000, "seconds to wait for the hub schema refresh")
	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "write the schema document but do not push it or resume sync")
	postCmd.Flags().Int32Var(&postResumeInterval, "resume-interval", orchestrate.DefaultResumeInterval, "periodic sync interval in seconds restored after the push")
	postCmd.Flags().StringVar(&postOutputPath, "output", "", "path of the schema document (default: temp dir, named after the sync group)")
}

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
	prePollInterval time.Duration
	preMaxWait      time.Duration
)

var preCmd = &cobra.Command{
	Use:   "pre",
	Short: "Pause periodic sync and wait for any in-flight sync run to finish",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newSyncClient()
		if err != nil {
			return err
		}

		if err := orchestrate.PreDeploy(cmd.Context(), client, Target, orchestrate.PreOptions{
			PollInterval: prePollInterval,
			MaxWait:      preMaxWait,
		}); err != nil {
			return errors.Trace(err)
		}

		log.Info("pre-deployment maintenance complete, safe to deploy",
			zap.String("syncGroup", Target.SyncGroup))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(preCmd)

	preCmd.Flags().DurationVar(&prePollInterval, "poll-interval", orchestrate.DefaultSyncPollInterval, "how often to check the sync state")
	preCmd.Flags().DurationVar(&preMaxWait, "max-wait", 0, "give up waiting for an in-flight sync after this long (0 = wait forever)")
}

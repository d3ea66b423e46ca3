package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/datasync"
)

var (
	cfgFile      string
	logLevel     string
	retries      int
	retryBackoff time.Duration

	// Target is filled from flags/config by the root PersistentPreRunE and
	// identifies the sync group every subcommand operates on.
	Target datasync.Target
)

var RootCmd = &cobra.Command{
	Use:   "maintain-azuredatasync",
	Short: "Keep an Azure SQL Data Sync group's schema in step with its hub database",
	Long: `maintain-azuredatasync reconciles the schema registered on an Azure SQL
Data Sync group with the live schema of its hub database around a deployment.

Run "pre" before deploying to pause periodic sync and drain any in-flight
sync run, deploy your schema changes, then run "post" to refresh the hub
schema, reconcile the sync group's registered schema against it (honoring
include/exclude rules) and resume periodic sync.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, props, err := log.InitLogger(&log.Config{Level: viper.GetString("log.level")})
		if err != nil {
			return errors.Annotate(err, "failed to initialize logger")
		}
		log.ReplaceGlobals(logger, props)

		return resolveTarget(cmd)
	},
}

// resolveTarget fills Target with flag > config > active profile precedence
// and rejects incomplete identification before any remote call is made.
func resolveTarget(cmd *cobra.Command) error {
	// The verify command works straight against the hub database and only
	// needs the sync group name to locate the schema document.
	needsAzure := cmd.Name() != "verify"

	profile, _ := GetActiveTargetProfile()

	pick := func(key, fromProfile string) string {
		if v := viper.GetString(key); v != "" {
			return v
		}
		return fromProfile
	}

	if profile != nil {
		Target = datasync.Target{
			SubscriptionID: pick("azure.subscription", profile.Subscription),
			ResourceGroup:  pick("target.resource_group", profile.ResourceGroup),
			Server:         pick("target.server", profile.Server),
			Database:       pick("target.database", profile.Database),
			SyncGroup:      pick("target.sync_group", profile.SyncGroup),
		}
	} else {
		Target = datasync.Target{
			SubscriptionID: viper.GetString("azure.subscription"),
			ResourceGroup:  viper.GetString("target.resource_group"),
			Server:         viper.GetString("target.server"),
			Database:       viper.GetString("target.database"),
			SyncGroup:      viper.GetString("target.sync_group"),
		}
	}

	missing := []string{}
	if needsAzure {
		if Target.SubscriptionID == "" {
			missing = append(missing, "--subscription")
		}
		if Target.ResourceGroup == "" {
			missing = append(missing, "--resource-group")
		}
		if Target.Server == "" {
			missing = append(missing, "--server")
		}
		if Target.Database == "" {
			missing = append(missing, "--database")
		}
	}
	if Target.SyncGroup == "" {
		missing = append(missing, "--sync-group")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required identification: %v (set via flags, config file or an active target profile)", missing)
	}
	return nil
}

// newSyncClient builds the control-plane client used by pre and post,
// wrapped with bounded retry for transient Azure failures.
func newSyncClient() (datasync.Client, error) {
	client, err := datasync.NewAzureClient(Target.SubscriptionID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return datasync.WithRetry(client, retries, retryBackoff), nil
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./maintain-azuredatasync.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().String("subscription", "", "Azure subscription id")
	RootCmd.PersistentFlags().String("resource-group", "", "resource group of the server")
	RootCmd.PersistentFlags().String("server", "", "logical SQL server name")
	RootCmd.PersistentFlags().String("database", "", "hub database name")
	RootCmd.PersistentFlags().String("sync-group", "", "sync group name")
	RootCmd.PersistentFlags().IntVar(&retries, "retries", 3, "attempts per remote call (1 disables retry)")
	RootCmd.PersistentFlags().DurationVar(&retryBackoff, "retry-backoff", 5*time.Second, "initial backoff between retries, doubled per attempt")

	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("azure.subscription", RootCmd.PersistentFlags().Lookup("subscription"))
	viper.BindPFlag("target.resource_group", RootCmd.PersistentFlags().Lookup("resource-group"))
	viper.BindPFlag("target.server", RootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("target.database", RootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("target.sync_group", RootCmd.PersistentFlags().Lookup("sync-group"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")

		viper.SetConfigName("maintain-azuredatasync")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

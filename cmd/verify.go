package cmd

import (
	"database/sql"
	"fmt"

	"github.com/gosuri/uiprogress"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/michaelbaranov/maintain-azuredatasync/internal/hub"
	"github.com/michaelbaranov/maintain-azuredatasync/internal/schema"
)

var (
	verifyDSN      string
	verifyDocument string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Cross-check a schema document against the hub database",
	Long: `verify connects straight to the hub database and compares a schema document
produced by "post" with what INFORMATION_SCHEMA actually reports. It exits
nonzero when any tracked table or column is missing from the hub or has a
different data type. Hub objects the document does not track are ignored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := verifyDSN
		if dsn == "" {
			dsn = viper.GetString("target.hub_dsn")
		}
		if dsn == "" {
			if profile, err := GetActiveTargetProfile(); err == nil {
				dsn = profile.HubDSN
			}
		}
		if dsn == "" {
			return errors.New("--dsn is required (or hub_dsn in the config file)")
		}

		docPath := verifyDocument
		if docPath == "" {
			docPath = schema.DefaultDocumentPath(Target.SyncGroup)
		}
		doc, err := schema.ReadDocument(docPath)
		if err != nil {
			return errors.Trace(err)
		}

		db, err := sql.Open("sqlserver", dsn)
		if err != nil {
			return errors.Annotate(err, "failed to open hub database")
		}
		defer db.Close()
		if err := db.PingContext(cmd.Context()); err != nil {
			return errors.Annotate(err, "failed to connect to hub database")
		}

		log.Info("inspecting hub database",
			zap.String("schemaDocument", docPath),
			zap.Int("tables", len(doc.Schema.Tables)))
		hubTables, err := hub.Inspect(cmd.Context(), db)
		if err != nil {
			return errors.Trace(err)
		}

		var drifts []hub.Drift
		if len(doc.Schema.Tables) > 0 {
			uiprogress.Start()
			bar := uiprogress.AddBar(len(doc.Schema.Tables)).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return "Comparing: "
			})
			drifts = hub.Compare(doc.Schema, hubTables, func() {
				bar.Incr()
			})
			uiprogress.Stop()
		}

		if len(drifts) > 0 {
			for _, d := range drifts {
				fmt.Printf("[!] %s\n", d)
			}
			return errors.Errorf("schema document drifts from the hub database in %d place(s)", len(drifts))
		}

		log.Info("schema document matches the hub database",
			zap.String("syncGroup", Target.SyncGroup))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyDSN, "dsn", "", "hub database connection string (sqlserver://...)")
	verifyCmd.Flags().StringVar(&verifyDocument, "document", "", "schema document to verify (default: the well-known temp path)")
}

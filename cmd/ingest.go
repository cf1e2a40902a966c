package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strollerlabs/stroller-truth/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path|url]",
	Short: "Ingest a dataset snapshot into the record store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 0 {
			if err := cfg.Validate("ingest"); err != nil {
				return err
			}
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		path := cfg.Dataset.Path
		if len(args) == 1 {
			path = args[0]
		}

		var snap *store.Snapshot
		if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
			snap, err = env.Ingestor.LoadURL(ctx, path)
		} else {
			snap, err = env.Ingestor.LoadFile(ctx, path)
		}
		if err != nil {
			return err
		}

		meta := snap.Meta()
		fmt.Printf("ingested %d records (snapshot %s, extracted %s, schema %s)\n",
			snap.Len(), meta.SnapshotID, meta.ExtractedDate, meta.SchemaVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hurou927/fide-ratings/internal/load"
	"github.com/hurou927/fide-ratings/internal/output"
)

var batchSize int

var loadCmd = &cobra.Command{
	Use:   "load <source> <destination>",
	Short: "Load a players XML dump into the destination store",
	Long: `Parses the players list at <source> (.xml, .xml.gz or the .zip published by
FIDE) and upserts every player into <destination>, a SQLite file path or a
postgres:// URL. The schema, full-text index and country index are created
as needed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		opts := cfg.LoadOptions(args[0], args[1])
		if cmd.Flags().Changed("batch-size") {
			if batchSize <= 0 {
				return fmt.Errorf("--batch-size must be positive, got %d", batchSize)
			}
			opts.BatchSize = batchSize
		}

		res, err := load.Run(ctx, opts)
		if err != nil {
			return err
		}
		return output.NewWriter(cmd.OutOrStdout()).WriteSummary(res)
	},
}

func init() {
	loadCmd.Flags().IntVar(&batchSize, "batch-size", load.DefaultBatchSize, "records per transaction (overrides config)")
	rootCmd.AddCommand(loadCmd)
}

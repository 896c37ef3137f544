package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hurou927/fide-ratings/internal/db"
	"github.com/hurou927/fide-ratings/internal/schema"
)

var initCmd = &cobra.Command{
	Use:   "init <destination>",
	Short: "Create the players schema without loading data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		sqlDB, d, err := db.Open(ctx, args[0])
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer sqlDB.Close()

		if err := schema.Ensure(ctx, sqlDB, d, schema.Sync(cfg.Sync)); err != nil {
			return err
		}
		if err := schema.EnsureIndexes(ctx, sqlDB); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Schema ready in %s (%s, sync=%s)\n", args[0], d.Name(), cfg.Sync)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hurou927/fide-ratings/internal/db"
	"github.com/hurou927/fide-ratings/internal/output"
	"github.com/hurou927/fide-ratings/internal/schema"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <destination>",
	Short: "Report schema objects and row counts of a store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		sqlDB, d, err := db.Open(ctx, args[0])
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer sqlDB.Close()

		objects, err := schema.Introspect(ctx, sqlDB, d)
		if err != nil {
			return fmt.Errorf("introspecting schema: %w", err)
		}
		counts, err := schema.Count(ctx, sqlDB, d)
		if err != nil {
			return err
		}

		return output.NewWriter(cmd.OutOrStdout()).WriteInspection(d.Name(), objects, counts)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

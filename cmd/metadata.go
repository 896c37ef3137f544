package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hurou927/fide-ratings/internal/metadata"
)

var (
	templatePath string
	metadataOut  string
	metadataDate string
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Render the datasette metadata template with the publication date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now()
		if metadataDate != "" {
			var err error
			if date, err = time.Parse(metadata.DateLayout, metadataDate); err != nil {
				return fmt.Errorf("--date: %w", err)
			}
		}

		if err := metadata.WriteFile(templatePath, metadataOut, date); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Metadata written to: %s\n", metadataOut)
		return nil
	},
}

func init() {
	metadataCmd.Flags().StringVar(&templatePath, "template", "metadata_template.json", "template file")
	metadataCmd.Flags().StringVar(&metadataOut, "out", "metadata.json", "output file")
	metadataCmd.Flags().StringVar(&metadataDate, "date", "", "publication date as YYYY-MM-DD (default today, UTC)")
	rootCmd.AddCommand(metadataCmd)
}

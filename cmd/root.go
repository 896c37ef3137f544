package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hurou927/fide-ratings/internal/config"
)

var (
	cfgPath  string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fide-ratings",
	Short: "Load the FIDE ratings list into a searchable database",
	Long: `fide-ratings parses the XML player list published by FIDE and loads it into
a SQLite file (or a PostgreSQL database) with a full-text index over player
names, ready to be served by datasette or queried directly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}

		level := cfg.Level()
		if logLevel != "" {
			if level, err = log.ParseLevel(logLevel); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
		}
		log.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

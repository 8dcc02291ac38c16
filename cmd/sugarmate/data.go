package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sugarmate/internal/analytics"
	"sugarmate/internal/config"
	"sugarmate/internal/healthlog"
	"sugarmate/internal/storage"
)

var summaryDate string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the health log summary for one day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Parse()
		if err != nil {
			return err
		}
		loc := cfg.Location()
		day := time.Now().In(loc)
		if summaryDate != "" {
			day, err = time.ParseInLocation("2006-01-02", summaryDate, loc)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", summaryDate, err)
			}
		}
		store, err := openHealthLog(cfg)
		if err != nil {
			return err
		}
		return writeJSON(cmd, analytics.SummarizeDay(store.Entries(), day))
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the full health log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Parse()
		if err != nil {
			return err
		}
		store, err := openHealthLog(cfg)
		if err != nil {
			return err
		}
		return writeJSON(cmd, store.Entries())
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryDate, "date", "", "day to summarize (YYYY-MM-DD, default today)")
}

func openHealthLog(cfg *config.Config) (*healthlog.Store, error) {
	doc, err := storage.NewJSONFile(cfg.HealthLogFilePath)
	if err != nil {
		return nil, fmt.Errorf("open health log: %w", err)
	}
	return healthlog.NewStore(doc, logger), nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

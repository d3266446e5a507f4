package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dlget/dlq/internal/config"
	"github.com/dlget/dlq/internal/history"
	"github.com/dlget/dlq/internal/progress"
)

func runHistory(limit int) error {
	settings, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if settings.HistoryPath == "" {
		return fmt.Errorf("no history database configured (set history_path or %s)", config.EnvHistoryPath)
	}

	store, err := history.Open(settings.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(limit)
	if err != nil {
		return err
	}

	total, err := store.Count()
	if err != nil {
		return err
	}

	fmt.Printf("%-8s %-12s %-12s %-40s %s\n", "ID", "State", "Size", "URL", "Error")
	fmt.Printf("%-8s %-12s %-12s %-40s %s\n", "--", "-----", "----", "---", "-----")
	for _, rec := range records {
		url := rec.URL
		if len(url) > 40 {
			url = url[:37] + "..."
		}
		fmt.Printf("%-8s %-12s %-12s %-40s %s\n", rec.QueueID, rec.State, progress.HumanSize(rec.Bytes), url, rec.Error)
	}
	fmt.Printf("\n%d of %d recorded outcomes\n", len(records), total)
	return nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent download outcomes",
	Long:  "Display the most recent terminal download outcomes recorded in the history database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return runHistory(limit)
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of records to show")
	RootCmd.AddCommand(historyCmd)
}

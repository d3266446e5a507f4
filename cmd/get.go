package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dlget/dlq/internal/config"
	"github.com/dlget/dlq/internal/download"
	"github.com/dlget/dlq/internal/fetch"
	"github.com/dlget/dlq/internal/history"
	"github.com/dlget/dlq/internal/progress"
	"github.com/dlget/dlq/internal/queue"
	"github.com/dlget/dlq/internal/storage"
)

// connectTimeout bounds the response-header wait; body reads are unbounded
const connectTimeout = 30 * time.Second

func runGet(urls []string, dir, output string, priority, parallel int) error {
	settings, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if dir != "" {
		settings.DownloadDir = dir
	}
	if parallel > 0 {
		settings.MaxParallel = parallel
	}
	if output != "" && len(urls) > 1 {
		return fmt.Errorf("--output is only valid with a single URL")
	}

	optimizer := storage.NewOptimizer(settings.DownloadDir)
	fetcher := fetch.NewHTTPFetcher(connectTimeout)
	pool := download.NewPool(fetcher, optimizer, settings.ChunkSize)
	manager := queue.NewManager(pool, settings.MaxParallel, settings.PollInterval)

	if settings.HistoryPath != "" {
		store, err := history.Open(settings.HistoryPath)
		if err != nil {
			logger.WithError(err).Warn("History disabled, could not open database")
		} else {
			manager.SetRecorder(store)
			defer store.Close()
		}
	}

	for _, url := range urls {
		path := optimizer.SuggestPath(url, output, settings.DownloadDir)
		id := manager.Add(url, path, priority)
		logger.WithFields(logger.Fields{"id": id, "url": url, "path": path}).Debug("Queued")
	}

	manager.Start()
	defer func() {
		if err := manager.Stop(); err != nil {
			logger.WithError(err).Warn("Shutdown was not clean")
		}
	}()

	tracker := progress.NewTracker(manager, os.Stdout)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	ticker := time.NewTicker(settings.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stdout, "Interrupted, shutting down...")
			return nil
		case <-ticker.C:
			tracker.Render()
			st := manager.Status()
			if st.QueuedCount == 0 && st.ActiveCount == 0 {
				return nil
			}
		}
	}
}

var getCmd = &cobra.Command{
	Use:   "get URL...",
	Short: "Download one or more URLs through the queue",
	Long: `Queue the given URLs for download and render progress until every
transfer reaches a terminal state. Lower priority numbers dispatch first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		output, _ := cmd.Flags().GetString("output")
		priority, _ := cmd.Flags().GetInt("priority")
		parallel, _ := cmd.Flags().GetInt("parallel")
		return runGet(args, dir, output, priority, parallel)
	},
}

func init() {
	getCmd.Flags().StringP("dir", "d", "", "Download directory (default: settings)")
	getCmd.Flags().StringP("output", "o", "", "Explicit output filename (single URL only)")
	getCmd.Flags().IntP("priority", "p", 0, "Priority for the queued URLs (lower dispatches first)")
	getCmd.Flags().IntP("parallel", "n", 0, "Maximum parallel downloads (default: settings)")
	RootCmd.AddCommand(getCmd)
}

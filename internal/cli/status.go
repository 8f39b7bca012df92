package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pointme/resilience/internal/control"
	"github.com/pointme/resilience/internal/core/config"
	"github.com/pointme/resilience/internal/infra/backend"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pending offline actions and queue depth",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := newOfflineApp(cfg)
	if err != nil {
		slog.Error("Failed to open substrate", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	actions, err := app.Queue().PeekAll(ctx)
	if err != nil {
		slog.Error("Failed to read queue", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Queue depth: %d\n", len(actions))
	if len(actions) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tATTEMPTS\tENQUEUED")
	for _, a := range actions {
		enqueued := time.UnixMilli(a.EnqueuedAt).UTC().Format(time.RFC3339)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", a.ID, a.Kind, a.Attempts, enqueued)
	}
	_ = w.Flush()
}

// newOfflineApp builds an App against the configured substrate without
// starting the monitor or subscriptions. Good enough for one-shot admin
// commands.
func newOfflineApp(cfg *config.AppConfig) (*control.App, error) {
	return control.NewApp(control.Config{
		Redis:       cfg.Redis,
		Database:    cfg.Database,
		MaxAttempts: cfg.Queue.MaxAttempts,
		Topics:      cfg.Topics,
	}, backend.NewMemoryBackend(), slog.Default())
}

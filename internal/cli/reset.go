package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pointme/resilience/internal/core/config"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard all pending offline actions",
	Long:  `Reset clears the offline action queue. Queued mutations are lost; this is the explicit user-initiated escape hatch for a queue stuck on a bad action.`,
	Run:   runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) {
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

	depth, err := app.Queue().Len(ctx)
	if err != nil {
		slog.Error("Failed to read queue", "error", err)
		os.Exit(1)
	}

	if err := app.Queue().Clear(ctx); err != nil {
		slog.Error("Failed to clear queue", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Cleared %d pending action(s)\n", depth)
}

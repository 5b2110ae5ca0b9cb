package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mamadbah2/pantry/internal/app"
	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/service/inventory"
	"github.com/mamadbah2/pantry/internal/ui"
	"github.com/mamadbah2/pantry/pkg/clients/pantry"
	"github.com/mamadbah2/pantry/pkg/logger"
)

// TUIOptions holds flags for the tui command.
type TUIOptions struct {
	Remote string
	Theme  string
}

// NewTUICommand creates the tui command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TUIOptions{}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal inventory",
		Long: `Open the terminal inventory.

By default the terminal talks to the configured store directly. With
--remote (or PANTRY_SERVER_URL) it drives a running pantry server instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Remote, "remote", "", "base URL of a pantry server (overrides PANTRY_SERVER_URL)")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "color theme: pantry or light (overrides PANTRY_THEME)")

	return cmd
}

func runTUI(ctx context.Context, cfg *config.Config, opts *TUIOptions) error {
	theme, err := ui.ThemeByName(firstNonEmpty(opts.Theme, cfg.UI.Theme))
	if err != nil {
		return err
	}

	base, err := logger.NewFile(cfg.UI.LogFile, zapcore.InfoLevel)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", cfg.UI.LogFile, err)
	}
	defer func() { _ = base.Sync() }()

	intents, closeFn, err := buildIntents(ctx, cfg, firstNonEmpty(opts.Remote, cfg.UI.ServerURL), base)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(context.Background()); err != nil {
			base.Error("failed to close store", zap.Error(err))
		}
	}()

	return ui.Run(ctx, intents, theme, logger.Named(base, "ui"))
}

// buildIntents returns a remote client when serverURL is set, otherwise a
// controller over the configured store.
func buildIntents(ctx context.Context, cfg *config.Config, serverURL string, base *zap.Logger) (inventory.Intents, func(context.Context) error, error) {
	if serverURL != "" {
		base.Info("terminal ui using remote server", zap.String("url", serverURL))
		return pantry.NewClient(serverURL), func(context.Context) error { return nil }, nil
	}

	store, err := app.OpenStore(ctx, cfg, logger.Named(base, "repo"))
	if err != nil {
		return nil, nil, err
	}

	opts := inventory.Options{AtomicCounters: cfg.Inventory.AtomicCounters}
	return inventory.NewController(store, opts, logger.Named(base, "svc.inventory")), store.Close, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/app"
	"github.com/mamadbah2/pantry/pkg/logger"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the WhatsApp webhook and the report scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}

			base, err := logger.New()
			if err != nil {
				return err
			}
			defer func() { _ = base.Sync() }()
			zap.ReplaceGlobals(base)

			return app.Serve(cmd.Context(), cfg, base)
		},
	}
}

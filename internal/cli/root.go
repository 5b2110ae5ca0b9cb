package cli

import (
	"github.com/spf13/cobra"

	"github.com/mamadbah2/pantry/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.EnvFile)
}

// NewRootCommand creates the root command for the pantry CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "pantry",
		Short:         "Pantry inventory tracker",
		Long:          "Track pantry items and their quantities from a terminal, an HTTP API or WhatsApp.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file to load before reading the environment (default .env)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))

	return cmd
}

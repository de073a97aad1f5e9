package commands

import (
	"github.com/spf13/cobra"

	"github.com/abcbank/ledger/internal/buildinfo"
	"github.com/abcbank/ledger/internal/config"
)

type rootOptions struct {
	configPath string
	dataFile   string
	logLevel   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "abcbank",
		Short:   "ABC automated banking service",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "config file (defaults apply when missing)")
	flags.StringVar(&opts.dataFile, "data", "", "client data file (overrides data_file)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newMenuCommand(opts),
		newTotalsCommand(opts),
		newRangesCommand(opts),
		newProjectCommand(opts),
		newCheckCommand(opts),
		newHistoryCommand(opts),
	)

	return rootCmd
}

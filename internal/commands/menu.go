package commands

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abcbank/ledger/internal/txlog"
)

func newMenuCommand(opts *rootOptions) *cobra.Command {
	var noLog bool

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive banking menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			var recorder *txlog.Recorder
			if !noLog && e.cfg.Log.TransactionLog != "" {
				recorder = txlog.NewRecorder(e.cfg.Log.TransactionLog, uuid.NewString())
				e.logger.Debug("recording transactions",
					zap.String("path", e.cfg.Log.TransactionLog),
					zap.String("session", recorder.Session()))
			}

			s := NewSession(cmd.InOrStdin(), cmd.OutOrStdout(), e.store, e.engine, recorder, e.logger)
			return s.Run()
		},
	}

	cmd.Flags().BoolVar(&noLog, "no-log", false, "do not write the transaction log")
	return cmd
}

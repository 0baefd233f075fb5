package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"finlens/internal/config"
	"finlens/internal/logging"
	"finlens/internal/server"
)

func newServeCommand() *cobra.Command {
	var addr string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.ListenAddr = addr
			}
			if debug {
				cfg.Debug = true
				cfg.LogLevel = "debug"
			}
			logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

			app, err := server.SetupDependencies(cfg)
			if err != nil {
				return err
			}

			if app.Store.IsEncrypted() {
				passphrase, err := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).read("Statement store passphrase: ")
				if err != nil {
					return err
				}
				if err := app.Store.Unlock(passphrase); err != nil {
					return fmt.Errorf("unlock statement store: %w", err)
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides FINLENS_LISTEN_ADDR)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging and template reloading")

	return cmd
}

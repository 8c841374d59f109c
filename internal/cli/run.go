package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diegolucasb/lockbox/internal/app"
	"github.com/diegolucasb/lockbox/internal/tui"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	MetricsAddr string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the terminal UI",
		Long: `Open the record list in the terminal.

Logs go to log.file so the screen stays intact. Every dispatched action is
journaled under a new session id; see "lockbox trace".

Example:
  lockbox run
  lockbox run --metrics-addr :9464 --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides metrics.addr)")

	return cmd
}

func runApp(opts *RunOptions, cmd *cobra.Command) error {
	cfg, v, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logOut, closeLog, err := openLogFile(cfg.Log.File)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open log file", err)
	}
	defer closeLog()

	logger, err := NewLogger(logOut, cfg.Log, opts.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid log settings", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(app.Options{Config: cfg, Viper: v, Logger: logger})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("error closing app", "error", err)
		}
	}()
	a.Start()

	addr := cfg.Metrics.Addr
	if opts.MetricsAddr != "" {
		addr = opts.MetricsAddr
	}
	if addr != "" {
		go func() {
			logger.Info("serving metrics", "addr", addr)
			if err := a.Metrics.Serve(ctx, addr); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	err = tui.Run(ctx, tui.Deps{
		Dispatcher: a.Dispatcher,
		Records:    a.Data.List(),
		Security:   a.Security,
		Routes:     a.Routes.Routes(),
		Metrics:    a.Metrics,
		Logger:     logger,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "terminal UI failed", err)
	}
	logger.Info("shutdown complete", "session", a.Session)
	return nil
}

// openLogFile opens path for appending. An empty path discards logs.
func openLogFile(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

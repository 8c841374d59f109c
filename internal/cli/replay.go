package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/storage"
	"github.com/diegolucasb/lockbox/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Session string
}

// ReplaySummary is the store state after re-dispatching a session.
type ReplaySummary struct {
	Actions int    `json:"actions"`
	Data    string `json:"data"`
	Route   string `json:"route,omitempty"`
	Items   int    `json:"items"`
}

// ReplayResult holds the replay of one session.
type ReplayResult struct {
	Session       string        `json:"session"`
	Final         ReplaySummary `json:"final"`
	Deterministic bool          `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-dispatch a journaled session",
		Long: `Re-dispatch the journaled actions of a session into fresh stores and
report the resulting state.

The session is replayed twice; both runs must end in the same state.
Replayed actions are not journaled again.

Exit codes:
  0 - Replay is deterministic
  1 - The two runs disagree
  2 - Command error (unknown session, unreadable journal, etc.)

Examples:
  lockbox replay --session 0192f0c4-...
  lockbox replay --session 0192f0c4-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session to replay (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	out := opts.formatter(cmd)

	cfg, _, err := opts.loadConfig()
	if err != nil {
		return err
	}
	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	actions, err := storage.ReplayJournal(ctx, st, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	if len(actions) == 0 {
		_ = out.Error(CodeNotFound, "no actions journaled for session "+opts.Session, nil)
		return NewExitError(ExitCommandError, "session not found: "+opts.Session)
	}

	logger := slog.New(slog.DiscardHandler)
	if opts.Verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	first := replaySession(st, actions, logger)
	second := replaySession(st, actions, logger)

	result := ReplayResult{
		Session:       opts.Session,
		Final:         first,
		Deterministic: first == second,
	}

	if out.IsJSON() {
		if err := out.Success(result); err != nil {
			return err
		}
	} else {
		route := result.Final.Route
		if route == "" {
			route = "none"
		}
		out.Printf("Session: %s", result.Session)
		out.Printf("  actions: %d", result.Final.Actions)
		out.Printf("  data:    %s (%d item(s))", result.Final.Data, result.Final.Items)
		out.Printf("  route:   %s", route)
		if result.Deterministic {
			out.Printf("✓ Replay is deterministic")
		}
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, "replay is not deterministic")
	}
	return nil
}

// replaySession dispatches actions into a dispatcher with fresh data and
// route stores over the stored records.
func replaySession(st *storage.Store, actions []action.Action, logger *slog.Logger) ReplaySummary {
	d := flux.NewDispatcher(flux.WithLogger(logger))
	data := store.NewDataStore(d, storage.NewRecords(st),
		store.WithDataLogger(logger),
		store.WithRefreshScheduler(flux.Immediate),
	)
	routes := store.NewRouteStore(d)
	defer func() {
		routes.Close()
		data.Close()
		d.Close()
	}()

	for _, a := range actions {
		d.Dispatch(a)
	}

	sum := ReplaySummary{Actions: len(actions), Data: data.Current().String()}
	if r, ok := routes.Routes().Value(); ok {
		sum.Route = r.Name()
	}
	if ps, ok := data.List().Value(); ok {
		sum.Items = len(ps)
	}
	return sum
}

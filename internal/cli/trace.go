package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/storage"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Session string
	Action  string // optional - filter to one action name
}

// TraceEntry is one journaled action.
type TraceEntry struct {
	Seq        int64             `json:"seq"`
	Action     string            `json:"action"`
	Args       map[string]string `json:"args,omitempty"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// TraceResult is the journal of one session.
type TraceResult struct {
	Session string         `json:"session"`
	Entries []TraceEntry   `json:"entries"`
	Counts  map[string]int `json:"counts"`
}

// SessionView summarizes one session.
type SessionView struct {
	Session   string    `json:"session"`
	Actions   int       `json:"actions"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled actions",
		Long: `Show the action journal.

Without --session, lists journaled sessions, most recent first. With
--session, prints that session's actions in dispatch order.

Examples:
  lockbox trace
  lockbox trace --session 0192f0c4-...
  lockbox trace --session 0192f0c4-... --action route.item_detail --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session to print")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter to one action name")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
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

	if opts.Session == "" {
		return listSessions(ctx, st, out)
	}

	entries, err := storage.ReadJournal(ctx, st, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := TraceResult{
		Session: opts.Session,
		Entries: []TraceEntry{},
		Counts:  map[string]int{},
	}
	for _, e := range entries {
		if opts.Action != "" && e.Name != opts.Action {
			continue
		}
		result.Entries = append(result.Entries, TraceEntry{
			Seq:        e.Seq,
			Action:     e.Name,
			Args:       e.Args,
			RecordedAt: e.RecordedAt,
		})
		result.Counts[e.Name]++
	}

	if out.IsJSON() {
		return out.Success(result)
	}

	if len(result.Entries) == 0 {
		out.Printf("No actions found for session: %s", opts.Session)
		return nil
	}
	out.Printf("Session: %s", result.Session)
	out.Printf("")
	for _, e := range result.Entries {
		out.Printf("  #%-4d %s  %s", e.Seq, e.RecordedAt.Format(time.RFC3339), action.Record{Name: e.Action, Args: e.Args})
	}
	out.Printf("")
	out.Printf("%d action(s)", len(result.Entries))
	return nil
}

func listSessions(ctx context.Context, st *storage.Store, out *OutputFormatter) error {
	sessions, err := storage.Sessions(ctx, st)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	views := make([]SessionView, len(sessions))
	for i, s := range sessions {
		views[i] = SessionView{
			Session:   s.ID,
			Actions:   s.Actions,
			FirstSeen: s.FirstSeen,
			LastSeen:  s.LastSeen,
		}
	}

	if out.IsJSON() {
		return out.Success(views)
	}
	if len(views) == 0 {
		out.Printf("No sessions journaled.")
		return nil
	}
	for _, v := range views {
		out.Printf("%s  %4d action(s)  %s .. %s", v.Session, v.Actions,
			v.FirstSeen.Format(time.RFC3339), v.LastSeen.Format(time.RFC3339))
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/diegolucasb/lockbox/internal/action"
)

// JournalEntry is one persisted action.
type JournalEntry struct {
	Session    string
	Seq        int64
	Name       string
	Args       map[string]string
	RecordedAt time.Time
}

// Action rebuilds the journaled action.
func (e JournalEntry) Action() (action.Action, error) {
	return action.FromRecord(action.Record{Name: e.Name, Args: e.Args})
}

// SessionSummary describes one journaled session.
type SessionSummary struct {
	ID        string
	Actions   int
	FirstSeen time.Time
	LastSeen  time.Time
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithJournalLogger sets the logger. Defaults to slog.Default().
func WithJournalLogger(l *slog.Logger) JournalOption {
	return func(j *Journal) { j.logger = l }
}

// WithNow sets the wall clock used for recorded_at.
func WithNow(now func() time.Time) JournalOption {
	return func(j *Journal) { j.now = now }
}

// Journal persists dispatched actions for one session.
// It implements flux.Hook.
type Journal struct {
	db      *sql.DB
	session string
	logger  *slog.Logger
	now     func() time.Time
}

// NewJournal creates a journal writing under session.
func NewJournal(s *Store, session string, opts ...JournalOption) *Journal {
	j := &Journal{
		db:      s.db,
		session: session,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Session returns the session id rows are written under.
func (j *Journal) Session() string {
	return j.session
}

// ActionDispatched writes a. Failures are logged; dispatch continues.
func (j *Journal) ActionDispatched(seq int64, a action.Action) {
	if err := j.Append(context.Background(), seq, a); err != nil {
		j.logger.Error("journal append failed", "seq", seq, "action", a.Name(), "error", err)
	}
}

// Append writes a at seq.
func (j *Journal) Append(ctx context.Context, seq int64, a action.Action) error {
	rec := action.ToRecord(a)
	args, err := action.EncodeArgs(rec)
	if err != nil {
		return err
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO action_journal (session, seq, name, args, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, j.session, seq, rec.Name, args, j.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert journal entry %d: %w", seq, err)
	}
	return nil
}

// ReadJournal returns the entries of session in seq order.
func ReadJournal(ctx context.Context, s *Store, session string) ([]JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session, seq, name, args, recorded_at
		FROM action_journal
		WHERE session = ?
		ORDER BY seq ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	entries := []JournalEntry{}
	for rows.Next() {
		var (
			e    JournalEntry
			args string
			at   int64
		)
		if err := rows.Scan(&e.Session, &e.Seq, &e.Name, &args, &at); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Args, err = action.DecodeArgs(args)
		if err != nil {
			return nil, fmt.Errorf("journal entry %d: %w", e.Seq, err)
		}
		e.RecordedAt = time.UnixMilli(at).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// ReplayJournal returns the actions of session in dispatch order.
func ReplayJournal(ctx context.Context, s *Store, session string) ([]action.Action, error) {
	entries, err := ReadJournal(ctx, s, session)
	if err != nil {
		return nil, err
	}
	out := make([]action.Action, 0, len(entries))
	for _, e := range entries {
		a, err := e.Action()
		if err != nil {
			return nil, fmt.Errorf("journal entry %d: %w", e.Seq, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// Sessions lists journaled sessions, most recent first.
func Sessions(ctx context.Context, s *Store) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session, COUNT(*), MIN(recorded_at), MAX(recorded_at)
		FROM action_journal
		GROUP BY session
		ORDER BY MAX(recorded_at) DESC, session ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := []SessionSummary{}
	for rows.Next() {
		var (
			sum         SessionSummary
			first, last int64
		)
		if err := rows.Scan(&sum.ID, &sum.Actions, &first, &last); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.FirstSeen = time.UnixMilli(first).UTC()
		sum.LastSeen = time.UnixMilli(last).UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/diegolucasb/lockbox/internal/model"
	"github.com/diegolucasb/lockbox/internal/storage"
)

// RecordsOptions holds flags for the records commands.
type RecordsOptions struct {
	*RootOptions
	ID       string
	Username string
	Password string

	// Now overrides the clock used for timestamps (for testing).
	Now func() time.Time
}

// RecordView is the listing form of a record. Passwords are never listed.
type RecordView struct {
	ID          string  `json:"id"`
	Hostname    string  `json:"hostname"`
	Title       string  `json:"title"`
	Username    *string `json:"username"`
	TimesUsed   int64   `json:"times_used"`
	TimeCreated int64   `json:"time_created"`
}

func newRecordView(p model.ServerPassword) RecordView {
	return RecordView{
		ID:          p.ID,
		Hostname:    p.Hostname,
		Title:       model.TitleFromHostname(p.Hostname),
		Username:    p.Username,
		TimesUsed:   p.TimesUsed,
		TimeCreated: p.TimeCreated,
	}
}

// NewRecordsCommand creates the records command group.
func NewRecordsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordsOptions{RootOptions: rootOpts, Now: time.Now}

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage saved logins",
	}

	add := &cobra.Command{
		Use:   "add <hostname>",
		Short: "Save a login",
		Long: `Save a login for an origin.

The id defaults to a new UUIDv7. Saving with an existing id replaces
that record.

Examples:
  lockbox records add https://www.mozilla.org --username alice --password hunter2
  lockbox records add https://example.com --password s3cret --id work`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsAdd(opts, args[0], cmd)
		},
	}
	add.Flags().StringVar(&opts.ID, "id", "", "record id (default: new UUIDv7)")
	add.Flags().StringVar(&opts.Username, "username", "", "login username")
	add.Flags().StringVar(&opts.Password, "password", "", "login password (required)")
	_ = add.MarkFlagRequired("password")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List saved logins",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsList(opts, cmd)
		},
	}

	remove := &cobra.Command{
		Use:           "remove <id>",
		Aliases:       []string{"rm"},
		Short:         "Delete a saved login",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsRemove(opts, args[0], cmd)
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}

func withRecords(opts *RecordsOptions, fn func(ctx context.Context, r *storage.Records) error) error {
	cfg, _, err := opts.loadConfig()
	if err != nil {
		return err
	}
	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(context.Background(), storage.NewRecords(st))
}

func runRecordsAdd(opts *RecordsOptions, hostname string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	hostname = strings.TrimSpace(hostname)
	if hostname == "" {
		_ = out.Error(CodeInvalidInput, "hostname is required", nil)
		return NewExitError(ExitCommandError, "hostname is required")
	}

	id := opts.ID
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}
	now := opts.Now().UnixMilli()

	p := model.ServerPassword{
		ID:                  id,
		Hostname:            hostname,
		Password:            opts.Password,
		TimeCreated:         now,
		TimePasswordChanged: now,
	}
	if opts.Username != "" {
		username := opts.Username
		p.Username = &username
	}

	return withRecords(opts, func(ctx context.Context, r *storage.Records) error {
		if err := r.Upsert(ctx, p); err != nil {
			return WrapExitError(ExitCommandError, "failed to save record", err)
		}
		out.VerboseLog("saved record %s", id)
		if out.IsJSON() {
			return out.Success(newRecordView(p))
		}
		return out.Success(fmt.Sprintf("Saved %s (%s)", id, model.TitleFromHostname(hostname)))
	})
}

func runRecordsList(opts *RecordsOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	return withRecords(opts, func(ctx context.Context, r *storage.Records) error {
		ps, err := r.List(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list records", err)
		}

		views := make([]RecordView, len(ps))
		for i, p := range ps {
			views[i] = newRecordView(p)
		}
		if out.IsJSON() {
			return out.Success(views)
		}
		if len(views) == 0 {
			out.Printf("No records.")
			return nil
		}
		out.Printf("%s", recordsTable(views))
		out.Printf("%d record(s)", len(views))
		return nil
	})
}

func recordsTable(views []RecordView) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "USERNAME", "USED")
	for _, v := range views {
		username := "-"
		if v.Username != nil {
			username = *v.Username
		}
		t.Row(v.ID, v.Title, username, fmt.Sprint(v.TimesUsed))
	}
	return t.String()
}

func runRecordsRemove(opts *RecordsOptions, id string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	return withRecords(opts, func(ctx context.Context, r *storage.Records) error {
		err := r.Delete(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			_ = out.Error(CodeNotFound, fmt.Sprintf("no record with id %q", id), nil)
			return WrapExitError(ExitFailure, "record not found", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to remove record", err)
		}
		if out.IsJSON() {
			return out.Success(map[string]string{"removed": id})
		}
		return out.Success("Removed " + id)
	})
}

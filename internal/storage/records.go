package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/model"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Records is the SQLite record source.
//
// It satisfies store.RecordSource: Refresh loads the table and publishes it
// on Records. Writes publish the new list too.
type Records struct {
	db   *sql.DB
	list *flux.Relay[[]model.ServerPassword]
}

// NewRecords creates a record source over s.
func NewRecords(s *Store) *Records {
	return &Records{
		db:   s.db,
		list: flux.NewRelay[[]model.ServerPassword]("storage.records"),
	}
}

// Records streams the published record list.
func (r *Records) Records() flux.Observable[[]model.ServerPassword] {
	return r.list
}

// Refresh reads every record and publishes the list.
func (r *Records) Refresh(ctx context.Context) error {
	ps, err := r.List(ctx)
	if err != nil {
		return err
	}
	r.list.Emit(ps)
	return nil
}

// List returns every record ordered by hostname, then id.
func (r *Records) List(ctx context.Context) ([]model.ServerPassword, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, hostname, username, password, times_used,
		       time_created, time_last_used, time_password_changed
		FROM records
		ORDER BY hostname ASC, id ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	ps := []model.ServerPassword{}
	for rows.Next() {
		p, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return ps, nil
}

// Get returns the record with id.
func (r *Records) Get(ctx context.Context, id string) (model.ServerPassword, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, hostname, username, password, times_used,
		       time_created, time_last_used, time_password_changed
		FROM records
		WHERE id = ?
	`, id)
	p, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ServerPassword{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

// Upsert inserts p or replaces the record with the same id, then publishes
// the new list.
func (r *Records) Upsert(ctx context.Context, p model.ServerPassword) error {
	var username sql.NullString
	if p.Username != nil {
		username = sql.NullString{String: *p.Username, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (id, hostname, username, password, times_used,
		                     time_created, time_last_used, time_password_changed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hostname = excluded.hostname,
			username = excluded.username,
			password = excluded.password,
			times_used = excluded.times_used,
			time_last_used = excluded.time_last_used,
			time_password_changed = excluded.time_password_changed
	`, p.ID, p.Hostname, username, p.Password, p.TimesUsed,
		p.TimeCreated, p.TimeLastUsed, p.TimePasswordChanged)
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", p.ID, err)
	}
	return r.Refresh(ctx)
}

// Delete removes the record with id and publishes the new list.
func (r *Records) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.Refresh(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (model.ServerPassword, error) {
	var (
		p        model.ServerPassword
		username sql.NullString
	)
	err := s.Scan(&p.ID, &p.Hostname, &username, &p.Password, &p.TimesUsed,
		&p.TimeCreated, &p.TimeLastUsed, &p.TimePasswordChanged)
	if errors.Is(err, sql.ErrNoRows) {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("scan record: %w", err)
	}
	if username.Valid {
		u := username.String
		p.Username = &u
	}
	return p, nil
}

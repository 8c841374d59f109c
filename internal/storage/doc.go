// Package storage provides SQLite-backed persistence for password records
// and the action journal.
//
// Tables:
//   - records: one row per ServerPassword
//   - action_journal: every dispatched action, keyed by (session, seq)
//
// Schema changes are golang-migrate migrations embedded from migrations/.
//
// # Ordering
//
// Journal queries order by seq, the dispatcher's logical clock, never by
// recorded_at. recorded_at is informational only.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
package storage

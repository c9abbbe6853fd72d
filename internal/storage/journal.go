package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"predict_go/internal/event"
)

// Journal persists accepted order lifecycle events in SQLite for audit and
// post-mortem. It is append-only; the tracker feeds it through its event
// sink.
type Journal struct {
	db *sql.DB
}

// NewJournal opens (or creates) the journal database with WAL mode enabled.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS order_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type INTEGER NOT NULL,
			client_order_id TEXT NOT NULL,
			condition_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create order_events table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_order_events_client
		ON order_events (client_order_id);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create order_events index: %w", err)
	}

	return &Journal{db: db}, nil
}

// Append stores one lifecycle event.
func (j *Journal) Append(ctx context.Context, ev event.OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		"INSERT INTO order_events (type, client_order_id, condition_id, ts, payload) VALUES (?, ?, ?, ?, ?)",
		ev.Type, ev.ClientOrderID, ev.ConditionID, ev.TsUnixMicros, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// LoadByOrder returns all recorded events for one client order ID, oldest
// first.
func (j *Journal) LoadByOrder(ctx context.Context, clientOrderID string) ([]event.OrderEvent, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT payload FROM order_events WHERE client_order_id = ? ORDER BY id ASC",
		clientOrderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []event.OrderEvent
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		var ev event.OrderEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

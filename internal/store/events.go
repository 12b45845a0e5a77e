package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"outreach-engine/internal/domain"
)

// AppendEvent adds one entry to a lead's append-only event thread.
func AppendEvent(ctx context.Context, db *sql.DB, entityID, typ, payload string) (string, error) {
	id := uuid.NewString()
	if payload == "" {
		payload = "{}"
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO lead_events (id, entity_id, at, type, payload)
VALUES (?,?,?,?,?);`,
		id, entityID, time.Now().UTC().Format(time.RFC3339), typ, payload)
	if err != nil {
		return "", fmt.Errorf("append event %s: %w", entityID, err)
	}
	return id, nil
}

// SetEventResponse attaches an inbound response to a thread entry.
func SetEventResponse(ctx context.Context, db *sql.DB, eventID, response string) error {
	res, err := db.ExecContext(ctx, `
UPDATE lead_events SET response = ? WHERE id = ? AND response IS NULL;`,
		response, eventID)
	if err != nil {
		return fmt.Errorf("set event response %s: %w", eventID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.PermanentError{Op: "set event response",
			Err: fmt.Errorf("event %s has no open entry", eventID)}
	}
	return nil
}

func ListEvents(ctx context.Context, db *sql.DB, entityID string) ([]domain.ThreadEntry, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, entity_id, at, type, payload, response
FROM lead_events WHERE entity_id = ? ORDER BY at;`, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ThreadEntry
	for rows.Next() {
		var e domain.ThreadEntry
		var at string
		var resp sql.NullString
		if err := rows.Scan(&e.ID, &e.EntityID, &at, &e.Type, &e.Payload, &resp); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339, at)
		if resp.Valid {
			e.Response = resp.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

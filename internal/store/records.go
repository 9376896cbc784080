package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MauliQT/resonate/internal/engine"
)

// ErrRunNotFound is returned when no run record exists under the given id.
var ErrRunNotFound = errors.New("run record not found")

// RunRecordRepository is the append-only run history. Records are stored as
// JSON detail blobs with the columns needed for listing duplicated out.
type RunRecordRepository struct {
	db *sql.DB
}

// AppendRunRecord persists one terminal run record. It satisfies the engine's
// record store contract. Records are never updated or deleted.
func (r *RunRecordRepository) AppendRunRecord(rec *engine.RunRecord) error {
	detail, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serialize run record '%s': %w", rec.ID, err)
	}

	query := `
		INSERT INTO run_records (id, applet_id, state, started_at, ended_at, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, rec.ID, rec.AppletID, string(rec.State), rec.StartedAt, rec.EndedAt, detail); err != nil {
		return fmt.Errorf("append run record '%s': %w", rec.ID, err)
	}
	return nil
}

// Run fetches one record with full stage detail.
func (r *RunRecordRepository) Run(id string) (*engine.RunRecord, error) {
	var detail []byte
	err := r.db.QueryRow(`SELECT detail FROM run_records WHERE id = ?`, id).Scan(&detail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run record '%s': %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load run record '%s': %w", id, err)
	}

	return decodeRecord(id, detail)
}

// ListRuns returns an applet's records most recent first. A limit of zero or
// less means no limit.
func (r *RunRecordRepository) ListRuns(appletID string, limit int) ([]*engine.RunRecord, error) {
	query := `SELECT id, detail FROM run_records WHERE applet_id = ? ORDER BY started_at DESC, id`
	args := []any{appletID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list run records for '%s': %w", appletID, err)
	}
	defer rows.Close()

	var records []*engine.RunRecord
	for rows.Next() {
		var id string
		var detail []byte
		if err := rows.Scan(&id, &detail); err != nil {
			return nil, fmt.Errorf("scan run record row: %w", err)
		}

		rec, err := decodeRecord(id, detail)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func decodeRecord(id string, detail []byte) (*engine.RunRecord, error) {
	var rec engine.RunRecord
	if err := json.Unmarshal(detail, &rec); err != nil {
		return nil, fmt.Errorf("decode run record '%s': %w", id, err)
	}
	return &rec, nil
}

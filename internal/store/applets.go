package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MauliQT/resonate/internal/applet"
)

// ErrAppletNotFound is returned when no applet exists under the given id.
var ErrAppletNotFound = errors.New("applet not found")

// AppletRepository persists applet definitions. The full definition is stored
// as the YAML document; name and enabled are duplicated into columns so lists
// and toggles never parse YAML.
type AppletRepository struct {
	db *sql.DB
}

// Save upserts an applet definition. The definition is validated before it
// touches the database.
func (r *AppletRepository) Save(a *applet.Applet) error {
	if err := applet.Validate(a); err != nil {
		return err
	}

	definition, err := applet.Marshal(a)
	if err != nil {
		return fmt.Errorf("serialize applet '%s': %w", a.ID, err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO applets (id, name, enabled, definition, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			enabled = excluded.enabled,
			definition = excluded.definition,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, a.ID, a.Name, a.Enabled, definition, now, now); err != nil {
		return fmt.Errorf("save applet '%s': %w", a.ID, err)
	}
	return nil
}

// Applet loads one definition by id. It satisfies the scheduler's applet
// source contract.
func (r *AppletRepository) Applet(id string) (*applet.Applet, error) {
	var definition []byte
	var enabled bool

	query := `SELECT definition, enabled FROM applets WHERE id = ?`
	err := r.db.QueryRow(query, id).Scan(&definition, &enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("applet '%s': %w", id, ErrAppletNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load applet '%s': %w", id, err)
	}

	a, err := applet.Parse(definition, id)
	if err != nil {
		return nil, fmt.Errorf("decode applet '%s': %w", id, err)
	}
	// The enabled column is authoritative; SetEnabled flips it without
	// rewriting the document.
	a.Enabled = enabled
	return a, nil
}

// List returns all stored applets ordered by id.
func (r *AppletRepository) List() ([]*applet.Applet, error) {
	rows, err := r.db.Query(`SELECT id, definition, enabled FROM applets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list applets: %w", err)
	}
	defer rows.Close()

	var applets []*applet.Applet
	for rows.Next() {
		var id string
		var definition []byte
		var enabled bool
		if err := rows.Scan(&id, &definition, &enabled); err != nil {
			return nil, fmt.Errorf("scan applet row: %w", err)
		}

		a, err := applet.Parse(definition, id)
		if err != nil {
			return nil, fmt.Errorf("decode applet '%s': %w", id, err)
		}
		a.Enabled = enabled
		applets = append(applets, a)
	}
	return applets, rows.Err()
}

// SetEnabled flips the enabled flag without touching the definition document.
func (r *AppletRepository) SetEnabled(id string, enabled bool) error {
	result, err := r.db.Exec(
		`UPDATE applets SET enabled = ?, updated_at = ? WHERE id = ?`,
		enabled, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update applet '%s': %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update applet '%s': %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("applet '%s': %w", id, ErrAppletNotFound)
	}
	return nil
}

// Delete removes an applet definition. Its run records are kept for history.
func (r *AppletRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM applets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete applet '%s': %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete applet '%s': %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("applet '%s': %w", id, ErrAppletNotFound)
	}
	return nil
}

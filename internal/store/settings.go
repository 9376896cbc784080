package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GlobalSettingsRepository persists plugin-wide settings values. It backs the
// settings resolver's global source; per-field writes are last-writer-wins.
type GlobalSettingsRepository struct {
	db *sql.DB
}

// SetGlobal stores a plugin-wide value for one settings field.
func (r *GlobalSettingsRepository) SetGlobal(pluginName, field, value string) error {
	query := `
		INSERT INTO global_settings (plugin, field, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (plugin, field) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, pluginName, field, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("save global setting %s/%s: %w", pluginName, field, err)
	}
	return nil
}

// GlobalSetting returns the persisted value for a plugin field and whether one
// exists. It satisfies the settings resolver's global source contract.
func (r *GlobalSettingsRepository) GlobalSetting(pluginName, field string) (string, bool, error) {
	var value string
	query := `SELECT value FROM global_settings WHERE plugin = ? AND field = ?`

	err := r.db.QueryRow(query, pluginName, field).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load global setting %s/%s: %w", pluginName, field, err)
	}
	return value, true, nil
}

// Globals returns all persisted values for one plugin keyed by field name.
func (r *GlobalSettingsRepository) Globals(pluginName string) (map[string]string, error) {
	rows, err := r.db.Query(`SELECT field, value FROM global_settings WHERE plugin = ?`, pluginName)
	if err != nil {
		return nil, fmt.Errorf("list global settings for '%s': %w", pluginName, err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("scan global setting row: %w", err)
		}
		values[field] = value
	}
	return values, rows.Err()
}

// DeleteGlobal removes a persisted value. Missing rows are not an error.
func (r *GlobalSettingsRepository) DeleteGlobal(pluginName, field string) error {
	if _, err := r.db.Exec(`DELETE FROM global_settings WHERE plugin = ? AND field = ?`, pluginName, field); err != nil {
		return fmt.Errorf("delete global setting %s/%s: %w", pluginName, field, err)
	}
	return nil
}

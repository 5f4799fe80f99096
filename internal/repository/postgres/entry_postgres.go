package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pdfgate/internal/model"
	"pdfgate/internal/repository"
)

// EntryPostgres is a PostgreSQL implementation of repository.EntryStore.
// Entries are written by the external form-submission subsystem; this store
// only reads.
type EntryPostgres struct {
	db *sql.DB
}

// NewEntryPostgres creates a new EntryPostgres store.
func NewEntryPostgres(db *sql.DB) *EntryPostgres {
	return &EntryPostgres{db: db}
}

var _ repository.EntryStore = (*EntryPostgres)(nil)

// Get fetches a single entry by its ID.
func (r *EntryPostgres) Get(ctx context.Context, entryID string) (*model.Entry, error) {
	const q = `
		SELECT id, form_id, created_by, ip, date_created, fields
		FROM entries
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, entryID)

	var (
		e          model.Entry
		createdBy  sql.NullString
		fieldsJSON []byte
	)
	if err := row.Scan(
		&e.ID,
		&e.FormID,
		&createdBy,
		&e.IP,
		&e.DateCreated,
		&fieldsJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	e.CreatedBy = createdBy.String
	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal entry fields: %w", err)
		}
	}
	return &e, nil
}

// CapabilityPostgres is a PostgreSQL implementation of
// repository.CapabilityStore backed by a flat user_capabilities table.
type CapabilityPostgres struct {
	db *sql.DB
}

// NewCapabilityPostgres creates a new CapabilityPostgres store.
func NewCapabilityPostgres(db *sql.DB) *CapabilityPostgres {
	return &CapabilityPostgres{db: db}
}

var _ repository.CapabilityStore = (*CapabilityPostgres)(nil)

// HasCapability reports whether the user holds the named capability.
func (r *CapabilityPostgres) HasCapability(ctx context.Context, userID, capability string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM user_capabilities
			WHERE user_id = $1 AND capability = $2
		)
	`
	var has bool
	if err := r.db.QueryRowContext(ctx, q, userID, capability).Scan(&has); err != nil {
		return false, err
	}
	return has, nil
}

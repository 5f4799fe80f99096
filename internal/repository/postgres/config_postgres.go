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

// ConfigPostgres is a PostgreSQL implementation of repository.ConfigStore.
// It uses database/sql with parameterized queries and contains no business
// logic. Insertion order is preserved through the position sequence column.
type ConfigPostgres struct {
	db *sql.DB
}

// NewConfigPostgres creates a new ConfigPostgres store.
func NewConfigPostgres(db *sql.DB) *ConfigPostgres {
	return &ConfigPostgres{db: db}
}

var _ repository.ConfigStore = (*ConfigPostgres)(nil)

const configColumns = `id, form_id, name, active, public_access, restrict_owner,
		conditional_logic, notification_targets, template_id, filename_pattern,
		paper_size, orientation, rtl`

// Get fetches a single configuration by (form_id, id).
func (r *ConfigPostgres) Get(ctx context.Context, formID, configID string) (*model.DocumentConfiguration, error) {
	q := `
		SELECT ` + configColumns + `
		FROM pdf_configurations
		WHERE form_id = $1 AND id = $2
	`
	row := r.db.QueryRowContext(ctx, q, formID, configID)
	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return cfg, nil
}

// GetAll returns every configuration for a form in insertion order.
func (r *ConfigPostgres) GetAll(ctx context.Context, formID string) ([]model.DocumentConfiguration, error) {
	q := `
		SELECT ` + configColumns + `
		FROM pdf_configurations
		WHERE form_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, q, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := make([]model.DocumentConfiguration, 0)
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, *cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return configs, nil
}

// Update inserts or replaces a configuration record. New records take the
// next position; replaced records keep theirs.
func (r *ConfigPostgres) Update(ctx context.Context, formID string, cfg *model.DocumentConfiguration) error {
	// NULL means no logic configured; present-but-empty logic round-trips
	// as an empty JSON object.
	var logicJSON any
	if cfg.ConditionalLogic != nil {
		b, err := json.Marshal(cfg.ConditionalLogic)
		if err != nil {
			return fmt.Errorf("marshal conditional logic: %w", err)
		}
		logicJSON = b
	}
	targetsJSON, err := json.Marshal(cfg.NotificationTargets)
	if err != nil {
		return fmt.Errorf("marshal notification targets: %w", err)
	}

	const q = `
		INSERT INTO pdf_configurations
			(id, form_id, name, active, public_access, restrict_owner,
			 conditional_logic, notification_targets, template_id, filename_pattern,
			 paper_size, orientation, rtl)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (form_id, id) DO UPDATE SET
			name = EXCLUDED.name,
			active = EXCLUDED.active,
			public_access = EXCLUDED.public_access,
			restrict_owner = EXCLUDED.restrict_owner,
			conditional_logic = EXCLUDED.conditional_logic,
			notification_targets = EXCLUDED.notification_targets,
			template_id = EXCLUDED.template_id,
			filename_pattern = EXCLUDED.filename_pattern,
			paper_size = EXCLUDED.paper_size,
			orientation = EXCLUDED.orientation,
			rtl = EXCLUDED.rtl
	`
	_, err = r.db.ExecContext(ctx, q,
		cfg.ID,
		formID,
		cfg.Name,
		cfg.Active,
		cfg.PublicAccess,
		cfg.RestrictOwner,
		logicJSON,
		targetsJSON,
		cfg.TemplateID,
		cfg.FilenamePattern,
		cfg.PaperSize,
		cfg.Orientation,
		cfg.RTL,
	)
	return err
}

// Delete removes a configuration. Missing rows are not an error.
func (r *ConfigPostgres) Delete(ctx context.Context, formID, configID string) error {
	const q = `DELETE FROM pdf_configurations WHERE form_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, formID, configID)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (*model.DocumentConfiguration, error) {
	var (
		cfg         model.DocumentConfiguration
		logicJSON   []byte
		targetsJSON []byte
	)
	if err := row.Scan(
		&cfg.ID,
		&cfg.FormID,
		&cfg.Name,
		&cfg.Active,
		&cfg.PublicAccess,
		&cfg.RestrictOwner,
		&logicJSON,
		&targetsJSON,
		&cfg.TemplateID,
		&cfg.FilenamePattern,
		&cfg.PaperSize,
		&cfg.Orientation,
		&cfg.RTL,
	); err != nil {
		return nil, err
	}

	// A NULL column means no logic configured; an empty JSON object is
	// present-but-empty. The distinction matters to the pipeline.
	if len(logicJSON) > 0 {
		var logic model.ConditionalLogic
		if err := json.Unmarshal(logicJSON, &logic); err != nil {
			return nil, fmt.Errorf("unmarshal conditional logic: %w", err)
		}
		cfg.ConditionalLogic = &logic
	}
	if len(targetsJSON) > 0 {
		if err := json.Unmarshal(targetsJSON, &cfg.NotificationTargets); err != nil {
			return nil, fmt.Errorf("unmarshal notification targets: %w", err)
		}
	}
	return &cfg, nil
}

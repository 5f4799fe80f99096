package repository

import (
	"context"

	"pdfgate/internal/model"
)

// ConfigStore defines data access for document configurations.
// No business logic here — strictly persistence operations. Configuration
// records are keyed by (form_id, config_id); GetAll must return records in
// their insertion order, which legacy positional resolution depends on.
type ConfigStore interface {
	// Get returns one configuration, or ErrNotFound when the id does not
	// exist for the given form.
	Get(ctx context.Context, formID, configID string) (*model.DocumentConfiguration, error)

	// GetAll returns every configuration for a form in insertion order.
	GetAll(ctx context.Context, formID string) ([]model.DocumentConfiguration, error)

	// Update inserts or replaces a configuration record.
	Update(ctx context.Context, formID string, cfg *model.DocumentConfiguration) error

	// Delete removes a configuration. It returns nil if the record was
	// deleted or did not exist.
	Delete(ctx context.Context, formID, configID string) error
}

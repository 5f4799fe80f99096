package repository

import (
	"context"

	"pdfgate/internal/model"
)

// EntryStore defines read access to form submissions. Entries are written
// by the external form-submission subsystem; this service only reads them.
type EntryStore interface {
	// Get returns an entry by id, or ErrNotFound.
	Get(ctx context.Context, entryID string) (*model.Entry, error)
}

// CapabilityStore answers capability checks for authenticated users.
type CapabilityStore interface {
	// HasCapability reports whether the user holds the named capability.
	HasCapability(ctx context.Context, userID, capability string) (bool, error)
}

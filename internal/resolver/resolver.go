// Package resolver selects which document configuration governs a request
// when several records can apply to the same form or entry.
package resolver

import (
	"context"
	"errors"

	"pdfgate/internal/conditional"
	"pdfgate/internal/model"
	"pdfgate/internal/repository"
)

// ErrNotFound is returned when no configuration matches a lookup.
var ErrNotFound = errors.New("document configuration not found")

// Resolver looks up document configurations through the config store.
type Resolver struct {
	configs repository.ConfigStore
}

// New creates a Resolver backed by the given store.
func New(configs repository.ConfigStore) *Resolver {
	return &Resolver{configs: configs}
}

// Resolve returns the configuration with the given id for the form, or
// ErrNotFound when it does not exist or does not apply to the form.
func (r *Resolver) Resolve(ctx context.Context, formID, configID string) (*model.DocumentConfiguration, error) {
	cfg, err := r.configs.Get(ctx, formID, configID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cfg, nil
}

// ActiveConfigsForEntry returns the configurations that currently apply to
// the entry: active, with conditional logic either absent or passing.
// Order is the store's insertion order; callers must not assume any other.
func (r *Resolver) ActiveConfigsForEntry(ctx context.Context, formID string, entry *model.Entry) ([]model.DocumentConfiguration, error) {
	all, err := r.configs.GetAll(ctx, formID)
	if err != nil {
		return nil, err
	}

	applicable := make([]model.DocumentConfiguration, 0, len(all))
	for _, cfg := range all {
		if !cfg.Active {
			continue
		}
		if !conditional.Matches(cfg.ConditionalLogic, entry) {
			continue
		}
		applicable = append(applicable, cfg)
	}
	return applicable, nil
}

// ResolveLegacy maps an old-style link, which names a configuration by its
// template and a 1-based positional index among the form's configurations,
// to the configuration's stable id.
//
// The positional path is tried first: when the index is valid and the
// configuration at that position uses the requested template, it wins even
// if inactive. Otherwise the first active configuration using the template
// is taken. Both paths predate stable ids and must stay as they are.
func (r *Resolver) ResolveLegacy(ctx context.Context, formID, templateID string, positionalIndex int) (string, error) {
	all, err := r.configs.GetAll(ctx, formID)
	if err != nil {
		return "", err
	}

	if positionalIndex > 0 {
		selector := positionalIndex - 1
		if selector < len(all) && all[selector].TemplateID == templateID {
			return all[selector].ID, nil
		}
	}

	for _, cfg := range all {
		if cfg.Active && cfg.TemplateID == templateID {
			return cfg.ID, nil
		}
	}

	return "", ErrNotFound
}

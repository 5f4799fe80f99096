// Package shortcode implements the embeddable shortcode call contract:
// given a configuration and entry, return a document URL or a tagged error
// the host can render in place.
package shortcode

import (
	"context"
	"errors"

	"pdfgate/internal/conditional"
	"pdfgate/internal/model"
	"pdfgate/internal/pdfurl"
	"pdfgate/internal/repository"
	"pdfgate/internal/resolver"
)

// Error tags. These are part of the contract: hosts match on them to pick
// the message rendered in place of the shortcode.
var (
	ErrNoEntryID            = errors.New("no_entry_id")
	ErrInvalidConfig        = errors.New("invalid_pdf_config")
	ErrNotActive            = errors.New("pdf_not_active")
	ErrConditionalLogicFail = errors.New("conditional_logic_not_met")
)

// Params are the shortcode attributes.
type Params struct {
	ConfigID string
	EntryID  string
	Type     model.Action // view or download; defaults to view
	Signed   bool
	Expires  string // human-style duration, empty = builder default
	Print    bool
}

// Processor resolves shortcode parameters into document URLs.
type Processor struct {
	entries  repository.EntryStore
	resolver *resolver.Resolver
	builder  *pdfurl.Builder
}

// NewProcessor creates a shortcode Processor.
func NewProcessor(entries repository.EntryStore, res *resolver.Resolver, builder *pdfurl.Builder) *Processor {
	return &Processor{entries: entries, resolver: res, builder: builder}
}

// Process returns the document URL for the given parameters, or one of the
// tagged errors. Infrastructure failures surface as-is.
func (p *Processor) Process(ctx context.Context, params Params) (string, error) {
	if params.EntryID == "" {
		return "", ErrNoEntryID
	}

	entry, err := p.entries.Get(ctx, params.EntryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNoEntryID
		}
		return "", err
	}

	cfg, err := p.resolver.Resolve(ctx, entry.FormID, params.ConfigID)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return "", ErrInvalidConfig
		}
		return "", err
	}
	if !cfg.Active {
		return "", ErrNotActive
	}
	if cfg.ConditionalLogic != nil && !conditional.Matches(cfg.ConditionalLogic, entry) {
		return "", ErrConditionalLogicFail
	}

	return p.builder.Build(cfg.ID, entry.ID, pdfurl.Options{
		Download: params.Type == model.ActionDownload,
		Print:    params.Print,
		Signed:   params.Signed,
		Expiry:   params.Expires,
	})
}

// Package mergetag resolves {label:pdf:CONFIG_ID[:modifier...]} tags inside
// notification and confirmation templates into document URLs.
package mergetag

import (
	"context"
	"regexp"
	"strings"

	"pdfgate/internal/conditional"
	"pdfgate/internal/model"
	"pdfgate/internal/pdfurl"
	"pdfgate/internal/resolver"
)

// tagPattern matches {label:pdf:CONFIG_ID} with optional colon-separated
// modifiers. Modifier values may contain commas and spaces ("signed,1 week")
// but never colons or braces.
var tagPattern = regexp.MustCompile(`\{([^{}:]*):pdf:([^{}:]+)((?::[^{}:]+)*)\}`)

// Processor replaces document merge tags in arbitrary text.
type Processor struct {
	resolver *resolver.Resolver
	builder  *pdfurl.Builder
}

// NewProcessor creates a merge-tag Processor.
func NewProcessor(res *resolver.Resolver, builder *pdfurl.Builder) *Processor {
	return &Processor{resolver: res, builder: builder}
}

// Replace substitutes every document merge tag in text with the matching
// URL for the given entry. A tag that names an unknown or inactive
// configuration, or one whose conditional logic fails for the entry,
// collapses to the empty string; Replace never fails.
func (p *Processor) Replace(ctx context.Context, text string, entry *model.Entry) string {
	return tagPattern.ReplaceAllStringFunc(text, func(tag string) string {
		m := tagPattern.FindStringSubmatch(tag)
		if m == nil {
			return ""
		}
		return p.resolveTag(ctx, m[2], m[3], entry)
	})
}

func (p *Processor) resolveTag(ctx context.Context, configID, rawModifiers string, entry *model.Entry) string {
	cfg, err := p.resolver.Resolve(ctx, entry.FormID, configID)
	if err != nil {
		return ""
	}
	if !cfg.Active {
		return ""
	}
	if cfg.ConditionalLogic != nil && !conditional.Matches(cfg.ConditionalLogic, entry) {
		return ""
	}

	opts := parseModifiers(rawModifiers)
	u, err := p.builder.Build(cfg.ID, entry.ID, opts)
	if err != nil {
		return ""
	}
	return u
}

// parseModifiers folds the colon-separated modifier list into URL options.
// Modifiers may appear in any order; signing is applied last by the builder
// regardless of where "signed" sits in the tag.
func parseModifiers(raw string) pdfurl.Options {
	var opts pdfurl.Options
	for _, mod := range strings.Split(strings.TrimPrefix(raw, ":"), ":") {
		mod = strings.TrimSpace(mod)
		switch {
		case mod == "download":
			opts.Download = true
		case mod == "print":
			opts.Print = true
		case mod == "signed" || strings.HasPrefix(mod, "signed,"):
			opts.Signed = true
			if rest := strings.TrimPrefix(mod, "signed"); strings.HasPrefix(rest, ",") {
				opts.Expiry = strings.TrimSpace(rest[1:])
			}
		}
	}
	return opts
}

// Package pdfurl builds the canonical view/download URLs for documents,
// optionally signed for time-limited access.
package pdfurl

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pdfgate/internal/signing"
)

// ErrInvalidExpiry is returned for expiry strings that cannot be parsed.
var ErrInvalidExpiry = errors.New("invalid expiry duration")

// Options select the URL variant to build.
type Options struct {
	Download bool
	Print    bool
	// Signed appends a signature granting time-limited bypass of the
	// ownership checks. Signing always happens last; nothing may be added
	// to the URL afterwards.
	Signed bool
	// Expiry is a human-style duration ("1 week", "12 months"). Empty uses
	// the builder's default. Ignored unless Signed is set.
	Expiry string
}

// Builder produces document URLs in either the pretty-permalink path form
// or the query form, depending on how the host is configured.
type Builder struct {
	baseURL       string
	pretty        bool
	signer        *signing.Signer
	defaultExpiry time.Duration
}

// NewBuilder creates a Builder. baseURL is the externally visible origin,
// without a trailing slash.
func NewBuilder(baseURL string, pretty bool, signer *signing.Signer, defaultExpiry time.Duration) *Builder {
	return &Builder{
		baseURL:       strings.TrimRight(baseURL, "/"),
		pretty:        pretty,
		signer:        signer,
		defaultExpiry: defaultExpiry,
	}
}

// Build assembles the URL for one (config, entry) pair.
func (b *Builder) Build(configID, entryID string, opts Options) (string, error) {
	var u string
	if b.pretty {
		u = b.baseURL + "/pdf/" + url.PathEscape(configID) + "/" + url.PathEscape(entryID) + "/"
		if opts.Download {
			u += "download/"
		}
		if opts.Print {
			u += "?print=1"
		}
	} else {
		u = b.baseURL + "/?gpdf=1&pid=" + url.QueryEscape(configID) + "&lid=" + url.QueryEscape(entryID)
		if opts.Download {
			u += "&action=download"
		}
		if opts.Print {
			u += "&print=1"
		}
	}

	if !opts.Signed {
		return u, nil
	}

	ttl := b.defaultExpiry
	if opts.Expiry != "" {
		parsed, err := ParseExpiry(opts.Expiry)
		if err != nil {
			return "", err
		}
		ttl = parsed
	}
	return b.signer.Sign(u, ttl).URL, nil
}

// ParseExpiry parses human-style durations of the form "<n> <unit>", e.g.
// "20 seconds", "1 week", "12 months". Months count as 30 days and years
// as 365; signed links are coarse-grained enough that calendar drift does
// not matter.
func ParseExpiry(s string) (time.Duration, error) {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidExpiry, s)
	}

	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidExpiry, s)
	}

	var unit time.Duration
	switch strings.TrimSuffix(parts[1], "s") {
	case "second":
		unit = time.Second
	case "minute":
		unit = time.Minute
	case "hour":
		unit = time.Hour
	case "day":
		unit = 24 * time.Hour
	case "week":
		unit = 7 * 24 * time.Hour
	case "month":
		unit = 30 * 24 * time.Hour
	case "year":
		unit = 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidExpiry, s)
	}

	return time.Duration(n) * unit, nil
}

package pdfurl

import (
	"strings"
	"testing"
	"time"

	"pdfgate/internal/signing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder(t *testing.T, pretty bool) (*Builder, *signing.Signer) {
	t.Helper()
	signer, err := signing.New("builder-test-secret")
	require.NoError(t, err)
	return NewBuilder("https://example.com", pretty, signer, 24*time.Hour), signer
}

func TestBuild_PrettyPermalinks(t *testing.T) {
	b, _ := testBuilder(t, true)

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{name: "view", opts: Options{}, want: "https://example.com/pdf/cfg-1/entry-1/"},
		{name: "download", opts: Options{Download: true}, want: "https://example.com/pdf/cfg-1/entry-1/download/"},
		{name: "print", opts: Options{Print: true}, want: "https://example.com/pdf/cfg-1/entry-1/?print=1"},
		{name: "download and print", opts: Options{Download: true, Print: true}, want: "https://example.com/pdf/cfg-1/entry-1/download/?print=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Build("cfg-1", "entry-1", tt.opts)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_QueryForm(t *testing.T) {
	b, _ := testBuilder(t, false)

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{name: "view", opts: Options{}, want: "https://example.com/?gpdf=1&pid=cfg-1&lid=entry-1"},
		{name: "download", opts: Options{Download: true}, want: "https://example.com/?gpdf=1&pid=cfg-1&lid=entry-1&action=download"},
		{name: "print", opts: Options{Print: true}, want: "https://example.com/?gpdf=1&pid=cfg-1&lid=entry-1&print=1"},
		{name: "download and print", opts: Options{Download: true, Print: true}, want: "https://example.com/?gpdf=1&pid=cfg-1&lid=entry-1&action=download&print=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Build("cfg-1", "entry-1", tt.opts)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Signing must be the final step: every other parameter has to be in place
// before the signature is computed, or the signature would not cover it.
func TestBuild_SignedLast(t *testing.T) {
	for _, pretty := range []bool{true, false} {
		b, signer := testBuilder(t, pretty)

		got, err := b.Build("cfg-1", "entry-1", Options{Download: true, Print: true, Signed: true, Expiry: "1 week"})
		require.NoError(t, err)

		assert.True(t, signer.Verify(got))
		// The signature is the last parameter and print=1 sits before it,
		// covered by the signature.
		idx := strings.Index(got, "signature=")
		require.Greater(t, idx, 0)
		assert.NotContains(t, got[idx:], "print=1")
		assert.Contains(t, got[:idx], "print=1")
	}
}

func TestBuild_SignedDefaultExpiry(t *testing.T) {
	b, signer := testBuilder(t, true)

	got, err := b.Build("cfg-1", "entry-1", Options{Signed: true})

	assert.NoError(t, err)
	assert.True(t, signer.Verify(got))
}

func TestBuild_InvalidExpiry(t *testing.T) {
	b, _ := testBuilder(t, true)

	_, err := b.Build("cfg-1", "entry-1", Options{Signed: true, Expiry: "next tuesday"})

	assert.ErrorIs(t, err, ErrInvalidExpiry)
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "20 seconds", want: 20 * time.Second},
		{in: "1 second", want: time.Second},
		{in: "5 minutes", want: 5 * time.Minute},
		{in: "12 hours", want: 12 * time.Hour},
		{in: "3 days", want: 72 * time.Hour},
		{in: "1 week", want: 7 * 24 * time.Hour},
		{in: "12 months", want: 360 * 24 * time.Hour},
		{in: "1 year", want: 365 * 24 * time.Hour},
		{in: "1 Week", want: 7 * 24 * time.Hour},
		{in: "  2 days  ", want: 48 * time.Hour},
		{in: "week", wantErr: true},
		{in: "one week", wantErr: true},
		{in: "-1 week", wantErr: true},
		{in: "1 fortnight", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExpiry(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidExpiry)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

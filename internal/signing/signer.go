// Package signing implements the HMAC scheme behind time-limited signed
// document URLs. A signature is valid only for the exact URL text it was
// computed over; touching any other query parameter, or re-ordering them,
// invalidates it.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	expiresParam   = "expires"
	signatureParam = "signature"

	// NeverExpires is the sentinel expiry of a signature without a deadline.
	NeverExpires = "never"
)

// ErrSecretRequired is returned by New when the signing secret is missing.
// A missing secret is a fatal misconfiguration surfaced at startup, never
// per request.
var ErrSecretRequired = errors.New("signing secret is required")

var timeNow = time.Now

// SignedURL is a URL carrying expires and signature query parameters.
type SignedURL struct {
	URL       string `json:"url"`
	Expires   string `json:"expires"`
	Signature string `json:"signature"`
}

// Signer signs and verifies document URLs with a process-wide secret.
// It is stateless and safe for concurrent use.
type Signer struct {
	secret []byte
}

// New creates a Signer. The secret must be non-empty.
func New(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign appends an expiry and a signature to rawURL. A zero ttl produces a
// signature that never expires. The signature is always the last parameter;
// callers must not append anything after signing.
func (s *Signer) Sign(rawURL string, ttl time.Duration) SignedURL {
	expires := NeverExpires
	if ttl != 0 {
		expires = strconv.FormatInt(timeNow().Add(ttl).Unix(), 10)
	}

	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	canonical := rawURL + sep + expiresParam + "=" + expires
	sig := s.compute(canonical)

	return SignedURL{
		URL:       canonical + "&" + signatureParam + "=" + sig,
		Expires:   expires,
		Signature: sig,
	}
}

// Verify checks a full URL as received from the client. It strips the
// signature parameter from the raw URL text, recomputes the HMAC over the
// remainder, and accepts only when the signatures match and the embedded
// expiry has not passed. Malformed input of any kind returns false; Verify
// never returns an error.
func (s *Signer) Verify(fullURL string) bool {
	u, err := url.Parse(fullURL)
	if err != nil {
		return false
	}
	q := u.Query()
	sig := q.Get(signatureParam)
	expires := q.Get(expiresParam)
	if sig == "" || expires == "" {
		return false
	}

	unsigned, ok := stripSignature(fullURL, sig)
	if !ok {
		return false
	}

	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(s.compute(unsigned))
	if err != nil {
		return false
	}
	if !hmac.Equal(got, want) {
		return false
	}

	if expires == NeverExpires {
		return true
	}
	deadline, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return false
	}
	return deadline >= timeNow().Unix()
}

func (s *Signer) compute(canonical string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// stripSignature removes "signature=<sig>" and its separator from the raw
// URL text without re-encoding anything else, so the verified text is
// byte-for-byte what the signer produced.
func stripSignature(fullURL, sig string) (string, bool) {
	for _, sep := range []string{"&", "?"} {
		needle := sep + signatureParam + "=" + sig
		if idx := strings.Index(fullURL, needle); idx >= 0 {
			return fullURL[:idx] + fullURL[idx+len(needle):], true
		}
	}
	return "", false
}

package model

import "time"

// Action is the kind of document access being requested.
type Action string

const (
	ActionView     Action = "view"
	ActionDownload Action = "download"
)

// Requester identifies who is asking for the document.
// A zero UserID means the request is anonymous.
type Requester struct {
	UserID string
}

// Anonymous reports whether the requester is not logged in.
func (r Requester) Anonymous() bool {
	return r.UserID == ""
}

// AuthorizationContext captures everything the authorization pipeline needs
// about one request. It is built once at the request boundary from request
// state and is immutable afterwards; nothing inside the pipeline reads
// ambient globals.
type AuthorizationContext struct {
	Action      Action
	RequestedAt time.Time
	Requester   Requester
	RequesterIP string
	ServerIP    string

	// RequestURL is the full URL as received, used for signature verification.
	RequestURL string
	// Signature and Expires are the raw signed-URL query parameters, empty
	// when the request carries none.
	Signature string
	Expires   string
}

// HasSignature reports whether the request carries signed-URL parameters.
func (a *AuthorizationContext) HasSignature() bool {
	return a.Signature != "" && a.Expires != ""
}

package access

import "pdfgate/internal/model"

// OwnerMode selects which notion of entry ownership applies.
type OwnerMode int

const (
	// OwnerLoggedIn matches an authenticated requester whose user id is the
	// entry's creator.
	OwnerLoggedIn OwnerMode = iota
	// OwnerLoggedOut matches an anonymous requester coming from the same IP
	// the entry was submitted from.
	OwnerLoggedOut
	// OwnerAny matches either.
	OwnerAny
)

// IsOwner reports whether the requester owns the entry under the given
// mode. The logged-out comparison rejects an empty requester IP and one
// equal to the server's own address: a proxy that reports the server's
// address as the client would otherwise make everyone the owner of every
// entry submitted through it.
func IsOwner(entry *model.Entry, actx *model.AuthorizationContext, mode OwnerMode) bool {
	switch mode {
	case OwnerLoggedIn:
		return isLoggedInOwner(entry, actx)
	case OwnerLoggedOut:
		return isLoggedOutOwner(entry, actx)
	case OwnerAny:
		return isLoggedInOwner(entry, actx) || isLoggedOutOwner(entry, actx)
	default:
		return false
	}
}

func isLoggedInOwner(entry *model.Entry, actx *model.AuthorizationContext) bool {
	return !actx.Requester.Anonymous() && actx.Requester.UserID == entry.CreatedBy
}

func isLoggedOutOwner(entry *model.Entry, actx *model.AuthorizationContext) bool {
	return actx.Requester.Anonymous() &&
		actx.RequesterIP != "" &&
		actx.RequesterIP == entry.IP &&
		actx.RequesterIP != actx.ServerIP
}

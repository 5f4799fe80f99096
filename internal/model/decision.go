package model

// DecisionStatus is the outcome class of an authorization run.
type DecisionStatus int

const (
	// StatusAllowed lets the request proceed to the renderer.
	StatusAllowed DecisionStatus = iota
	// StatusDenied blocks the request; Reason says why. Not recoverable by
	// the requester.
	StatusDenied
	// StatusRequiresAuthentication blocks the request but invites the
	// requester to log in and retry. Callers translate this into a login
	// redirect; inside the pipeline it is a plain value, never a panic or
	// non-local exit.
	StatusRequiresAuthentication
)

// DenyReason is the fixed taxonomy of denial reasons. These are decisions,
// not errors: the pipeline returns them instead of failing.
type DenyReason string

const (
	ReasonInvalidEntry           DenyReason = "invalid_entry"
	ReasonInvalidConfig          DenyReason = "invalid_config"
	ReasonInactive               DenyReason = "inactive"
	ReasonConditionalLogicFailed DenyReason = "conditional_logic_failed"
	ReasonAccessDenied           DenyReason = "access_denied"
	ReasonTimeoutExpired         DenyReason = "timeout_expired"
)

// Decision is the single accumulator threaded through the policy chain.
type Decision struct {
	Status DecisionStatus
	Reason DenyReason // set only when Status == StatusDenied
}

// Allowed is the chain's initial state.
func Allowed() Decision {
	return Decision{Status: StatusAllowed}
}

// Denied produces a sticky denial with the given reason.
func Denied(reason DenyReason) Decision {
	return Decision{Status: StatusDenied, Reason: reason}
}

// RequiresAuthentication produces the login-challenge decision.
func RequiresAuthentication() Decision {
	return Decision{Status: StatusRequiresAuthentication}
}

// IsAllowed reports whether the chain is still passing.
func (d Decision) IsAllowed() bool {
	return d.Status == StatusAllowed
}

// String returns a log-friendly form of the decision.
func (d Decision) String() string {
	switch d.Status {
	case StatusAllowed:
		return "allowed"
	case StatusRequiresAuthentication:
		return "requires_authentication"
	default:
		return "denied:" + string(d.Reason)
	}
}

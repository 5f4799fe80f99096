package access

import (
	"context"
	"time"

	"pdfgate/internal/conditional"
	"pdfgate/internal/model"
	"pdfgate/internal/repository"
	"pdfgate/internal/signing"
)

// Canonical policy names, in chain order.
const (
	PolicyPublicAccess      = "public_access"
	PolicySignedURL         = "signed_url"
	PolicyActive            = "active"
	PolicyConditionalLogic  = "conditional_logic"
	PolicyOwnerRestriction  = "owner_restriction"
	PolicyLoggedOutTimeout  = "logged_out_timeout"
	PolicyAuthLoggedOutUser = "auth_logged_out_user"
	PolicyUserCapability    = "user_capability"
)

// ownershipPolicies are the policies a successful public-access or
// signed-URL bypass removes from the rest of the chain. Active and
// conditional-logic checks always stay.
var ownershipPolicies = []string{
	PolicyOwnerRestriction,
	PolicyLoggedOutTimeout,
	PolicyAuthLoggedOutUser,
	PolicyUserCapability,
}

// publicAccessPolicy removes the ownership checks when the configuration is
// marked publicly accessible. It never denies.
type publicAccessPolicy struct{}

func (publicAccessPolicy) Name() string { return PolicyPublicAccess }

func (publicAccessPolicy) Evaluate(_ context.Context, d model.Decision, _ *model.Entry, cfg *model.DocumentConfiguration, _ *model.AuthorizationContext, chain *Chain) (model.Decision, error) {
	if !d.IsAllowed() {
		return d, nil
	}
	if cfg.PublicAccess {
		chain.Remove(ownershipPolicies...)
	}
	return d, nil
}

// signedURLPolicy removes the ownership checks when the request carries a
// valid, unexpired signature over its own URL. A missing or invalid
// signature is not an error here; the request simply does not get the
// bypass and the ownership checks run as usual.
type signedURLPolicy struct {
	signer *signing.Signer
}

func (signedURLPolicy) Name() string { return PolicySignedURL }

func (p signedURLPolicy) Evaluate(_ context.Context, d model.Decision, _ *model.Entry, _ *model.DocumentConfiguration, actx *model.AuthorizationContext, chain *Chain) (model.Decision, error) {
	if !d.IsAllowed() {
		return d, nil
	}
	if actx.HasSignature() && p.signer.Verify(actx.RequestURL) {
		chain.Remove(ownershipPolicies...)
	}
	return d, nil
}

// activePolicy denies requests against a deactivated configuration.
type activePolicy struct{}

func (activePolicy) Name() string { return PolicyActive }

func (activePolicy) Evaluate(_ context.Context, d model.Decision, _ *model.Entry, cfg *model.DocumentConfiguration, _ *model.AuthorizationContext, _ *Chain) (model.Decision, error) {
	if !d.IsAllowed() {
		return d, nil
	}
	if !cfg.Active {
		return model.Denied(model.ReasonInactive), nil
	}
	return d, nil
}

// conditionalLogicPolicy denies when the configuration carries logic that
// does not hold for this entry.
type conditionalLogicPolicy struct{}

func (conditionalLogicPolicy) Name() string { return PolicyConditionalLogic }

func (conditionalLogicPolicy) Evaluate(_ context.Context, d model.Decision, entry *model.Entry, cfg *model.DocumentConfiguration, _ *model.AuthorizationContext, _ *Chain) (model.Decision, error) {
	if !d.IsAllowed() {
		return d, nil
	}
	if cfg.ConditionalLogic != nil && !conditional.Matches(cfg.ConditionalLogic, entry) {
		return model.Denied(model.ReasonConditionalLogicFailed), nil
	}
	return d, nil
}

// ownerRestrictionPolicy challenges anonymous requesters to log in when the
// configuration is restricted to the entry owner. This is a login
// challenge, not a denial: the requester may well be the owner once
// authenticated.
type ownerRestrictionPolicy struct{}

func (ownerRestrictionPolicy) Name() string { return PolicyOwnerRestriction }

func (ownerRestrictionPolicy) Evaluate(_ context.Context, d model.Decision, _ *model.Entry, cfg *model.DocumentConfiguration, actx *model.AuthorizationContext, _ *Chain) (model.Decision, error) {
	if !d.IsAllowed() {
		return d, nil
	}
	if cfg.RestrictOwner && actx.Requester.Anonymous() {
		return model.RequiresAuthentication(), nil
	}
	return d, nil
}

// loggedOutTimeoutPolicy limits how long the anonymous submitter of an
// entry can keep reaching its documents by IP match alone. Past the
// deadline the outcome depends on whether an account owns the entry: with
// an owner the requester is challenged to log in, without one the access
// has simply expired.
type loggedOutTimeoutPolicy struct {
	timeoutMinutes int // 0 disables the check
}

func (loggedOutTimeoutPolicy) Name() string { return PolicyLoggedOutTimeout }

func (p loggedOutTimeoutPolicy) Evaluate(_ context.Context, d model.Decision, entry *model.Entry, _ *model.DocumentConfiguration, actx *model.AuthorizationContext, _ *Chain) (model.Decision, error) {
	if !d.IsAllowed() {
		return d, nil
	}
	if !actx.Requester.Anonymous() || !IsOwner(entry, actx, OwnerLoggedOut) {
		return d, nil
	}
	if p.timeoutMinutes == 0 {
		return d, nil
	}

	deadline := entry.DateCreated.Add(time.Duration(p.timeoutMinutes) * time.Minute)
	if actx.RequestedAt.After(deadline) {
		if !entry.HasOwner() {
			return model.Denied(model.ReasonTimeoutExpired), nil
		}
		return model.RequiresAuthentication(), nil
	}
	return d, nil
}

// authLoggedOutUserPolicy handles anonymous requesters who are not the
// logged-out owner of the entry: if an account owns the entry they are
// challenged to log in, otherwise there is nothing they could do to gain
// access and the request is denied.
type authLoggedOutUserPolicy struct{}

func (authLoggedOutUserPolicy) Name() string { return PolicyAuthLoggedOutUser }

func (authLoggedOutUserPolicy) Evaluate(_ context.Context, d model.Decision, entry *model.Entry, _ *model.DocumentConfiguration, actx *model.AuthorizationContext, _ *Chain) (model.Decision, error) {
	if !d.IsAllowed() {
		return d, nil
	}
	if !actx.Requester.Anonymous() || IsOwner(entry, actx, OwnerLoggedOut) {
		return d, nil
	}
	if entry.HasOwner() {
		return model.RequiresAuthentication(), nil
	}
	return model.Denied(model.ReasonAccessDenied), nil
}

// userCapabilityPolicy gates authenticated requesters who are not the
// logged-in owner of the entry, or everyone when the global restrict-to-
// admins setting is on, behind the configured administrative capabilities.
type userCapabilityPolicy struct {
	capabilities    repository.CapabilityStore
	adminCaps       []string
	restrictToAdmin bool
}

func (userCapabilityPolicy) Name() string { return PolicyUserCapability }

func (p userCapabilityPolicy) Evaluate(ctx context.Context, d model.Decision, entry *model.Entry, _ *model.DocumentConfiguration, actx *model.AuthorizationContext, _ *Chain) (model.Decision, error) {
	if !d.IsAllowed() {
		return d, nil
	}
	if actx.Requester.Anonymous() {
		return d, nil
	}
	if !p.restrictToAdmin && IsOwner(entry, actx, OwnerLoggedIn) {
		return d, nil
	}

	for _, cap := range p.adminCaps {
		has, err := p.capabilities.HasCapability(ctx, actx.Requester.UserID, cap)
		if err != nil {
			return d, err
		}
		if has {
			return d, nil
		}
	}
	return model.Denied(model.ReasonAccessDenied), nil
}

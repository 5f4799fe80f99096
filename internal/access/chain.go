// Package access implements the ordered authorization policy chain that
// decides whether a requester may view or download a document.
package access

import (
	"context"

	"pdfgate/internal/model"
)

// Policy is one step of the authorization chain. Policies act only while
// the incoming decision is still Allowed; a denial is sticky. A policy may
// also shrink the remaining chain through Chain.Remove, which is how the
// public-access and signed-URL bypasses disable the ownership checks.
//
// An error return is reserved for infrastructure failures (a store that
// cannot be reached); expected conditions are expressed as decisions.
type Policy interface {
	Name() string
	Evaluate(ctx context.Context, d model.Decision, entry *model.Entry, cfg *model.DocumentConfiguration, actx *model.AuthorizationContext, chain *Chain) (model.Decision, error)
}

// Chain executes policies in their fixed order with a removable-policy set
// that earlier policies may shrink. A Chain is built fresh for every
// authorization run; the removal set is per-request state.
type Chain struct {
	policies []Policy
	removed  map[string]struct{}
}

func newChain(policies []Policy) *Chain {
	return &Chain{
		policies: policies,
		removed:  make(map[string]struct{}),
	}
}

// Remove drops the named policies from the remainder of this run. Removing
// a policy that already ran, or one that does not exist, has no effect.
func (c *Chain) Remove(names ...string) {
	for _, n := range names {
		c.removed[n] = struct{}{}
	}
}

// Run folds the chain over a single Allowed accumulator. Evaluation stops
// at the first decision that is no longer Allowed: denials are sticky and
// RequiresAuthentication is terminal, so no later policy ever observes
// either.
func (c *Chain) Run(ctx context.Context, entry *model.Entry, cfg *model.DocumentConfiguration, actx *model.AuthorizationContext) (model.Decision, error) {
	decision := model.Allowed()

	for _, p := range c.policies {
		if _, gone := c.removed[p.Name()]; gone {
			continue
		}
		var err error
		decision, err = p.Evaluate(ctx, decision, entry, cfg, actx, c)
		if err != nil {
			return decision, err
		}
		if !decision.IsAllowed() {
			return decision, nil
		}
	}
	return decision, nil
}

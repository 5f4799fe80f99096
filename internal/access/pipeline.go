package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"pdfgate/internal/model"
	"pdfgate/internal/repository"
	"pdfgate/internal/resolver"
	"pdfgate/internal/signing"
)

// Settings are the global security knobs consulted by the chain.
type Settings struct {
	// LogoutTimeoutMinutes bounds IP-matched anonymous access to an entry's
	// documents. Zero disables the timeout.
	LogoutTimeoutMinutes int
	// RestrictToAdmin subjects every authenticated requester to the
	// capability check, owner or not.
	RestrictToAdmin bool
	// AdminCapabilities is the set of capabilities any one of which passes
	// the capability check.
	AdminCapabilities []string
}

// Options collects the pipeline's collaborators.
type Options struct {
	Entries      repository.EntryStore
	Resolver     *resolver.Resolver
	Signer       *signing.Signer
	Capabilities repository.CapabilityStore
	Settings     Settings

	// Registerer receives the decision counter; nil disables metrics.
	Registerer prometheus.Registerer
}

// Pipeline runs the ordered policy chain for document requests. The policy
// list is fixed at construction (plus explicit registrations) and shared
// across requests; per-request state lives in the Chain built for each run.
type Pipeline struct {
	entries   repository.EntryStore
	resolver  *resolver.Resolver
	policies  []Policy
	decisions *prometheus.CounterVec
}

// NewPipeline builds the pipeline with the canonical policy order.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Entries == nil || opts.Resolver == nil || opts.Signer == nil || opts.Capabilities == nil {
		return nil, errors.New("access: entries, resolver, signer and capabilities are all required")
	}

	p := &Pipeline{
		entries:  opts.Entries,
		resolver: opts.Resolver,
		policies: []Policy{
			publicAccessPolicy{},
			signedURLPolicy{signer: opts.Signer},
			activePolicy{},
			conditionalLogicPolicy{},
			ownerRestrictionPolicy{},
			loggedOutTimeoutPolicy{timeoutMinutes: opts.Settings.LogoutTimeoutMinutes},
			authLoggedOutUserPolicy{},
			userCapabilityPolicy{
				capabilities:    opts.Capabilities,
				adminCaps:       opts.Settings.AdminCapabilities,
				restrictToAdmin: opts.Settings.RestrictToAdmin,
			},
		},
	}

	if opts.Registerer != nil {
		p.decisions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdf_authorization_decisions_total",
				Help: "Authorization pipeline outcomes by decision and denial reason.",
			},
			[]string{"decision", "reason"},
		)
		if err := opts.Registerer.Register(p.decisions); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// RegisterPolicy inserts an extension policy immediately after the named
// policy. It is meant to be called during startup, before the pipeline
// serves requests; policy names must stay unique.
func (p *Pipeline) RegisterPolicy(after string, policy Policy) error {
	for _, existing := range p.policies {
		if existing.Name() == policy.Name() {
			return fmt.Errorf("access: policy %q is already registered", policy.Name())
		}
	}
	for i, existing := range p.policies {
		if existing.Name() == after {
			p.policies = append(p.policies[:i+1], append([]Policy{policy}, p.policies[i+1:]...)...)
			return nil
		}
	}
	return fmt.Errorf("access: no policy named %q to insert after", after)
}

// Result is the full outcome of one authorization run. Entry and Config are
// populated as far as resolution got: both are nil on an InvalidEntry
// denial, and only Config is nil on InvalidConfig.
type Result struct {
	Decision model.Decision
	Entry    *model.Entry
	Config   *model.DocumentConfiguration
}

// Authorize loads the entry, resolves the governing configuration, and
// folds the policy chain. Expected conditions come back as decisions; only
// infrastructure failures return an error.
func (p *Pipeline) Authorize(ctx context.Context, configID, entryID string, actx *model.AuthorizationContext) (Result, error) {
	entry, err := p.entries.Get(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return p.observe(Result{Decision: model.Denied(model.ReasonInvalidEntry)}), nil
		}
		return Result{}, fmt.Errorf("load entry %s: %w", entryID, err)
	}

	cfg, err := p.resolver.Resolve(ctx, entry.FormID, configID)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return p.observe(Result{Decision: model.Denied(model.ReasonInvalidConfig), Entry: entry}), nil
		}
		return Result{}, fmt.Errorf("resolve config %s: %w", configID, err)
	}

	decision, err := newChain(p.policies).Run(ctx, entry, cfg, actx)
	if err != nil {
		return Result{}, fmt.Errorf("policy chain: %w", err)
	}

	return p.observe(Result{Decision: decision, Entry: entry, Config: cfg}), nil
}

func (p *Pipeline) observe(res Result) Result {
	if p.decisions == nil {
		return res
	}

	var decision, reason string
	switch res.Decision.Status {
	case model.StatusAllowed:
		decision = "allowed"
	case model.StatusRequiresAuthentication:
		decision = "requires_authentication"
	default:
		decision = "denied"
		reason = string(res.Decision.Reason)
	}
	p.decisions.WithLabelValues(decision, reason).Inc()
	return res
}

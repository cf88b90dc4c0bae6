// Package planner runs independent proposer strategies and selects one draft
// with a deterministic checker.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tbourn/go-certified-backend/internal/domain"
)

var (
	// ErrUnknownEngine is returned when a configured engine is not registered.
	ErrUnknownEngine = errors.New("unknown proposer engine")
	// ErrDuplicateEngine is returned when two proposers share a name.
	ErrDuplicateEngine = errors.New("duplicate proposer engine")
)

// Proposer produces one draft for an input. Errors are tolerated by Runner
// and replaced with a placeholder result.
type Proposer interface {
	Name() string
	Propose(ctx context.Context, in domain.PlannerInput) (domain.ProposerResult, error)
}

// Placeholder is the empty-items result substituted for a failed proposer.
// The checker's sanity filter always drops it.
func Placeholder(engine string, in domain.PlannerInput, reason string) domain.ProposerResult {
	return domain.ProposerResult{
		PlanDraft: domain.PlanDraft{Title: "Plan: " + in.Topic, Items: []domain.PlanItem{}},
		Citations: []domain.Citation{},
		Rationale: fmt.Sprintf("%s_failed: %s", engine, reason),
		Engine:    engine,
	}
}

// Registry is the static set of known proposers.
type Registry struct {
	byName map[string]Proposer
}

// NewRegistry indexes proposers by name.
func NewRegistry(ps ...Proposer) (*Registry, error) {
	r := &Registry{byName: make(map[string]Proposer, len(ps))}
	for _, p := range ps {
		if _, dup := r.byName[p.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEngine, p.Name())
		}
		r.byName[p.Name()] = p
	}
	return r, nil
}

// Names lists registered engines alphabetically.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the proposers for names in the given order.
func (r *Registry) Resolve(names []string) ([]Proposer, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: none configured", ErrUnknownEngine)
	}
	out := make([]Proposer, 0, len(names))
	for _, n := range names {
		p, ok := r.byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, n)
		}
		out = append(out, p)
	}
	return out, nil
}

// DefaultRegistry holds the built-in engines. The external engine is only
// registered when externalURL is set.
func DefaultRegistry(externalURL string) (*Registry, error) {
	ps := []Proposer{AdaptiveV1{}, TemplateV0{}}
	if externalURL != "" {
		ps = append(ps, NewExternal(EngineExternal, NewHTTPGenerator(externalURL, nil)))
	}
	return NewRegistry(ps...)
}

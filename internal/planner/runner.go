package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/observability"
)

// DefaultProposerTimeout bounds a single proposer when none is configured.
const DefaultProposerTimeout = 5 * time.Second

// Runner executes proposers concurrently and waits for all of them. Each
// proposer gets its own deadline; failures, panics and timeouts become
// placeholders so Run always returns one result per proposer, in the
// configured order.
type Runner struct {
	proposers []Proposer
	timeout   time.Duration
	log       zerolog.Logger
}

// NewRunner builds a Runner over proposers in tie-break order.
func NewRunner(proposers []Proposer, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultProposerTimeout
	}
	return &Runner{proposers: proposers, timeout: timeout, log: log.Logger}
}

// Engines returns the configured engine names in order.
func (r *Runner) Engines() []string {
	out := make([]string, len(r.proposers))
	for i, p := range r.proposers {
		out[i] = p.Name()
	}
	return out
}

// Run fans out to every proposer and blocks until all have finished or
// timed out.
func (r *Runner) Run(ctx context.Context, in domain.PlannerInput) []domain.ProposerResult {
	ctx, span := observability.StartStage(ctx, "propose", attribute.Int("proposers", len(r.proposers)))
	defer span.End()

	out := make([]domain.ProposerResult, len(r.proposers))
	var g errgroup.Group
	for i, p := range r.proposers {
		g.Go(func() error {
			out[i] = r.runOne(ctx, p, in)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

type proposal struct {
	res domain.ProposerResult
	err error
}

func (r *Runner) runOne(ctx context.Context, p Proposer, in domain.PlannerInput) domain.ProposerResult {
	name := p.Name()
	start := time.Now()
	defer func() {
		observability.ProposerLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ch := make(chan proposal, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- proposal{err: fmt.Errorf("panic: %v", rec)}
			}
		}()
		res, err := p.Propose(ctx, in)
		ch <- proposal{res: res, err: err}
	}()

	select {
	case got := <-ch:
		if got.err != nil {
			outcome := "failed"
			if errors.Is(got.err, context.DeadlineExceeded) {
				outcome = "timeout"
			}
			return r.fail(name, in, outcome, got.err.Error())
		}
		res := got.res
		res.Engine = name
		if res.PlanDraft.Items == nil {
			res.PlanDraft.Items = []domain.PlanItem{}
		}
		if res.Citations == nil {
			res.Citations = []domain.Citation{}
		}
		observability.ProposerRuns.WithLabelValues(name, "ok").Inc()
		return res
	case <-ctx.Done():
		return r.fail(name, in, "timeout", "timeout")
	}
}

func (r *Runner) fail(name string, in domain.PlannerInput, outcome, reason string) domain.ProposerResult {
	observability.ProposerRuns.WithLabelValues(name, outcome).Inc()
	r.log.Warn().Str("engine", name).Str("outcome", outcome).Str("reason", reason).Msg("proposer failed")
	return Placeholder(name, in, reason)
}

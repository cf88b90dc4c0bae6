package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tbourn/go-certified-backend/internal/domain"
)

// EngineExternal is the name under which the HTTP-backed proposer registers.
const EngineExternal = "external"

const maxGeneratorResponse = 1 << 20

// Generator returns raw proposer JSON for an input, typically from a model
// adapter.
type Generator interface {
	Generate(ctx context.Context, in domain.PlannerInput) ([]byte, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, in domain.PlannerInput) ([]byte, error)

func (f GeneratorFunc) Generate(ctx context.Context, in domain.PlannerInput) ([]byte, error) {
	return f(ctx, in)
}

// External turns generator output into a ProposerResult via ParseProposal.
type External struct {
	name string
	gen  Generator
}

// NewExternal builds an External proposer.
func NewExternal(name string, gen Generator) *External {
	return &External{name: name, gen: gen}
}

func (e *External) Name() string { return e.name }

func (e *External) Propose(ctx context.Context, in domain.PlannerInput) (domain.ProposerResult, error) {
	raw, err := e.gen.Generate(ctx, in)
	if err != nil {
		return domain.ProposerResult{}, fmt.Errorf("generate: %w", err)
	}
	return ParseProposal(raw, e.name)
}

// HTTPGenerator POSTs the input as JSON to a fixed endpoint and returns the
// response body.
type HTTPGenerator struct {
	URL    string
	Client *http.Client
}

// NewHTTPGenerator builds a generator; a nil client gets a traced default.
func NewHTTPGenerator(url string, client *http.Client) *HTTPGenerator {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &HTTPGenerator{URL: url, Client: client}
}

func (g *HTTPGenerator) Generate(ctx context.Context, in domain.PlannerInput) ([]byte, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("generator status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxGeneratorResponse))
}

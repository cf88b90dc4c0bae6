// Package citations probes the sources a proposer cites.
//
// A probe never fails the caller: timeouts, DNS errors, refused connections
// and malformed URLs are all recorded on the CitationCheck row as an error
// string with Reachable=false.
package citations

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/observability"
)

const (
	// MinTimeout is the floor applied to the per-attempt timeout.
	MinTimeout = 300 * time.Millisecond
	// DefaultTimeout is used when Options.Timeout is zero.
	DefaultTimeout = 1500 * time.Millisecond
	// MinMaxBytes is the floor applied to the partial-fetch window.
	MinMaxBytes = 128
	// DefaultMaxBytes is used when Options.MaxBytes is zero.
	DefaultMaxBytes = 1024

	hashPrefixLen = 16

	errInvalidURL = "invalid_url"
	errTimeout    = "timeout"
)

// Cache remembers successful probes across requests.
type Cache interface {
	Get(ctx context.Context, rawURL string) (domain.CitationCheck, bool)
	Set(ctx context.Context, rawURL string, chk domain.CitationCheck)
}

// Options configures a Validator. Zero values select defaults.
type Options struct {
	Timeout  time.Duration
	MaxBytes int
	Client   *http.Client
	Cache    Cache
	Logger   *zerolog.Logger
}

// Validator checks citation reachability with a HEAD probe and a bounded
// ranged GET fallback.
type Validator struct {
	timeout  time.Duration
	maxBytes int
	client   *http.Client
	cache    Cache
	log      zerolog.Logger
}

// NewValidator builds a Validator, applying defaults and floors.
func NewValidator(opts Options) *Validator {
	v := &Validator{
		timeout:  opts.Timeout,
		maxBytes: opts.MaxBytes,
		client:   opts.Client,
		cache:    opts.Cache,
		log:      log.Logger,
	}
	if v.timeout == 0 {
		v.timeout = DefaultTimeout
	}
	if v.timeout < MinTimeout {
		v.timeout = MinTimeout
	}
	if v.maxBytes == 0 {
		v.maxBytes = DefaultMaxBytes
	}
	if v.maxBytes < MinMaxBytes {
		v.maxBytes = MinMaxBytes
	}
	if v.client == nil {
		v.client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if opts.Logger != nil {
		v.log = *opts.Logger
	}
	return v
}

// Timeout returns the effective per-attempt timeout.
func (v *Validator) Timeout() time.Duration { return v.timeout }

// MaxBytes returns the effective partial-fetch window.
func (v *Validator) MaxBytes() int { return v.maxBytes }

// Validate probes each citation in order and returns the aggregate report.
// It never returns an error; per-citation failures live on the rows.
func (v *Validator) Validate(ctx context.Context, cits []domain.Citation) domain.CitationReport {
	ctx, span := observability.StartStage(ctx, "citations.validate", attribute.Int("citations", len(cits)))
	defer span.End()

	rep := domain.CitationReport{Total: len(cits), Checks: make([]domain.CitationCheck, 0, len(cits))}
	for _, c := range cits {
		row := v.check(ctx, c)
		if row.Reachable {
			rep.Reachable++
		}
		rep.Checks = append(rep.Checks, row)
	}
	span.SetAttributes(
		attribute.Int("citations.total", rep.Total),
		attribute.Int("citations.reachable", rep.Reachable),
	)
	return rep
}

func (v *Validator) check(ctx context.Context, c domain.Citation) domain.CitationCheck {
	row := domain.CitationCheck{ID: c.ID, URL: c.URL}

	if !validURL(c.URL) {
		row.Error = errInvalidURL
		observability.CitationProbes.WithLabelValues("invalid").Inc()
		return row
	}

	if v.cache != nil {
		if hit, ok := v.cache.Get(ctx, c.URL); ok {
			hit.ID, hit.URL = c.ID, c.URL
			observability.CitationProbes.WithLabelValues("cached").Inc()
			return hit
		}
	}

	res, err := v.attempt(ctx, http.MethodHead, c.URL)
	if err != nil || !is2xx(res.status) {
		// Some servers reject HEAD; retry with a small ranged GET.
		// A failed fallback keeps any HEAD status but reports the GET error.
		getRes, getErr := v.attempt(ctx, http.MethodGet, c.URL)
		if getErr == nil {
			res, err = getRes, nil
		} else {
			err = getErr
		}
	}

	row.Status = res.status
	row.ContentType = res.contentType
	row.HashPrefix = res.hashPrefix
	row.Reachable = is2xx(res.status)
	if err != nil {
		row.Error = describe(err)
	}

	outcome := "unreachable"
	if row.Reachable {
		outcome = "reachable"
		if v.cache != nil {
			v.cache.Set(ctx, c.URL, row)
		}
	}
	observability.CitationProbes.WithLabelValues(outcome).Inc()

	v.log.Debug().
		Str("citation_id", c.ID).
		Str("url", c.URL).
		Int("status", row.Status).
		Bool("reachable", row.Reachable).
		Str("error", row.Error).
		Msg("citation probed")
	return row
}

type attemptResult struct {
	status      int
	contentType string
	hashPrefix  string
}

// attempt performs one time-bounded request. For a successful GET the first
// maxBytes of the body are hashed.
func (v *Validator) attempt(ctx context.Context, method, rawURL string) (attemptResult, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return attemptResult{}, err
	}
	if method == http.MethodGet {
		req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", v.maxBytes-1))
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return attemptResult{}, err
	}
	defer resp.Body.Close()

	res := attemptResult{status: resp.StatusCode, contentType: resp.Header.Get("Content-Type")}
	if method == http.MethodGet && is2xx(resp.StatusCode) {
		buf, readErr := io.ReadAll(io.LimitReader(resp.Body, int64(v.maxBytes)))
		sum := sha256.Sum256(buf)
		res.hashPrefix = hex.EncodeToString(sum[:])[:hashPrefixLen]
		if readErr != nil {
			return res, readErr
		}
	}
	return res, nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func is2xx(code int) bool { return code >= 200 && code < 300 }

func describe(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return errTimeout
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if uerr.Timeout() {
			return errTimeout
		}
		return uerr.Err.Error()
	}
	return err.Error()
}

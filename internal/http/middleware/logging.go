// Package middleware contains the Gin middleware shared by the HTTP layer:
// correlation ids, access logging with redaction, panic recovery, metrics,
// admin authentication, idempotency, rate limiting, and security headers.
//
// Recommended order: RequestID, AccessLog, Recovery, then the rest, so that
// panics and rejections are logged with the correlation id.
package middleware

import (
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-certified-backend/internal/sysutil"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	maxQueryLogLength    = 2048
	defaultSlowThreshold = 5 * time.Second
	redactedValue        = "[REDACTED]"
	redactedEmail        = "[REDACTED:email]"
	redactedToken        = "[REDACTED:token]"
	minTokenLen          = 43 // base64 of 32 bytes
)

var (
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	tokenRE = regexp.MustCompile(`[A-Za-z0-9+/_\-]{43,}={0,2}`)
	hexRE   = regexp.MustCompile(`^[0-9a-fA-F]+$`)
)

// alwaysMasked are headers whose values never reach the logs.
var alwaysMasked = []string{"authorization", "cookie", "set-cookie", strings.ToLower(HeaderAdminToken)}

// RequestID propagates X-Request-ID, generating a UUID when the header is
// absent or blank. The id goes into the response header, the gin context,
// and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := sysutil.FirstNonEmpty(strings.TrimSpace(c.GetHeader(requestIDHeader)), uuid.NewString())
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Request = c.Request.WithContext(sysutil.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}

// AccessLogOptions configures AccessLog.
type AccessLogOptions struct {
	// MaskHeaders adds header names (case-insensitive) to the masked set.
	MaskHeaders []string
	// SlowThreshold logs successful requests slower than this at warn.
	// Zero uses 5s.
	SlowThreshold time.Duration
}

// AccessLog emits one structured line per request and makes a
// request-scoped logger available through LoggerFrom and zerolog.Ctx.
//
// Bodies are never logged. Credential headers are masked; e-mail addresses
// and long base64 tokens (keys, signatures) are scrubbed from the query and
// the remaining header values. Hex digests are left intact.
func AccessLog(opts AccessLogOptions) gin.HandlerFunc {
	masked := make(map[string]struct{}, len(alwaysMasked)+len(opts.MaskHeaders))
	for _, h := range append(append([]string{}, alwaysMasked...), opts.MaskHeaders...) {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}
	slow := opts.SlowThreshold
	if slow <= 0 {
		slow = defaultSlowThreshold
	}

	return func(c *gin.Context) {
		start := time.Now()
		rid, _ := c.Get(requestIDKey)

		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("route", routeLabel(c)).
			Logger()
		c.Set(loggerKey, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		headers := scrubHeaders(c.Request.Header, masked)
		query := truncate(scrub(c.Request.URL.RawQuery), maxQueryLogLength)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0 || status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest || latency >= slow:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		if id := c.Param("id"); id != "" {
			ev = ev.Str("resource_id", id)
		}
		if _, ok := GetIdempotencyKey(c); ok {
			ev = ev.Bool("idempotent", true).Bool("replay", IsReplay(c))
		}

		ev.
			Str("caller", CallerID(c)).
			Str("path", scrub(c.Request.URL.Path)).
			Str("query", query).
			Str("remote_ip", c.ClientIP()).
			Int64("bytes_in", c.Request.ContentLength).
			Int("bytes_out", c.Writer.Size()).
			Int("status", status).
			Dur("latency", latency).
			Interface("headers", headers).
			Msg("http_request")
	}
}

func scrubHeaders(h http.Header, masked map[string]struct{}) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := masked[strings.ToLower(k)]; ok {
			out[k] = redactedValue
			continue
		}
		out[k] = scrub(strings.Join(vv, ", "))
	}
	return out
}

// scrub replaces e-mail addresses and long base64 tokens in s.
func scrub(s string) string {
	if s == "" {
		return s
	}
	s = emailRE.ReplaceAllString(s, redactedEmail)
	return tokenRE.ReplaceAllStringFunc(s, scrubToken)
}

// scrubToken redacts a base64-looking run. Runs that start with a slash are
// treated as paths and scrubbed per segment so route ids survive.
func scrubToken(tok string) string {
	if strings.HasPrefix(tok, "/") {
		segs := strings.Split(tok, "/")
		for i, seg := range segs {
			if len(seg) >= minTokenLen && !hexRE.MatchString(seg) {
				segs[i] = redactedToken
			}
		}
		return strings.Join(segs, "/")
	}
	if hexRE.MatchString(strings.TrimRight(tok, "=")) {
		return tok
	}
	return redactedToken
}

// Recovery turns a panic into a logged stack trace and, when nothing has
// been written yet, a 500 internal_error envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger set by AccessLog, or the
// global logger when AccessLog did not run.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// truncate caps s at max bytes; max <= 0 disables truncation.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

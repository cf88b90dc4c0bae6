package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-certified-backend/internal/sysutil"
)

// Audit actions.
const (
	AuditPlan    = "plan"
	AuditLock    = "lock"
	AuditPublish = "publish"
	AuditVerify  = "verify"
)

const minAuditSize = 1

// AuditEntry is one pipeline event. Only a prefix of the lock hash is kept.
type AuditEntry struct {
	TS             time.Time `json:"ts"`
	RequestID      string    `json:"request_id,omitempty"`
	Action         string    `json:"action"`
	ItemID         string    `json:"item_id,omitempty"`
	Engines        []string  `json:"engines,omitempty"`
	LockAlgo       string    `json:"lock_algo,omitempty"`
	LockHashPrefix string    `json:"lock_hash_prefix,omitempty"`
	CitationsCount int       `json:"citations_count"`
	ArtifactID     string    `json:"artifact_id,omitempty"`
	OK             bool      `json:"ok"`
	Reason         string    `json:"reason,omitempty"`
}

// AuditLog is a fixed-size ring of recent entries. Every entry is also
// written to the structured log.
type AuditLog struct {
	mu   sync.Mutex
	buf  []AuditEntry
	next int
	full bool
	log  zerolog.Logger
	now  func() time.Time
}

// NewAuditLog allocates a ring holding size entries.
func NewAuditLog(size int) *AuditLog {
	if size < minAuditSize {
		size = minAuditSize
	}
	return &AuditLog{
		buf: make([]AuditEntry, size),
		log: log.With().Str("component", "audit").Logger(),
		now: time.Now,
	}
}

// Record appends e, stamping the time and request id when missing. A nil
// receiver is a no-op.
func (a *AuditLog) Record(ctx context.Context, e AuditEntry) {
	if a == nil {
		return
	}
	if e.TS.IsZero() {
		e.TS = a.now().UTC()
	}
	if e.RequestID == "" {
		e.RequestID = sysutil.RequestID(ctx)
	}
	if len(e.LockHashPrefix) > 12 {
		e.LockHashPrefix = e.LockHashPrefix[:12]
	}

	a.mu.Lock()
	a.buf[a.next] = e
	a.next = (a.next + 1) % len(a.buf)
	if a.next == 0 {
		a.full = true
	}
	a.mu.Unlock()

	a.log.Info().
		Str("request_id", e.RequestID).
		Str("action", e.Action).
		Str("item_id", e.ItemID).
		Strs("engines", e.Engines).
		Str("lock_hash_prefix", e.LockHashPrefix).
		Int("citations_count", e.CitationsCount).
		Str("artifact_id", e.ArtifactID).
		Bool("ok", e.OK).
		Str("reason", e.Reason).
		Msg("audit")
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (a *AuditLog) Recent(limit int) []AuditEntry {
	if a == nil {
		return []AuditEntry{}
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.next
	if a.full {
		n = len(a.buf)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]AuditEntry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (a.next - i + len(a.buf)) % len(a.buf)
		out = append(out, a.buf[idx])
	}
	return out
}

// Cap returns the ring capacity.
func (a *AuditLog) Cap() int { return len(a.buf) }

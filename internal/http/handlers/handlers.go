// Package handlers implements the HTTP endpoints of the certified content
// service.
//
// Handlers are transport-thin: they validate input, call application
// services through the narrow interfaces below, and translate results into
// HTTP responses with the shared ErrorResponse envelope.
package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/services"
	"github.com/tbourn/go-certified-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ItemService manages content items.
type ItemService interface {
	Create(ctx context.Context, title, topic string, sourceURL *string) (*domain.Item, error)
	Get(ctx context.Context, id string) (*domain.Item, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Item, int64, error)
	// Stats returns the item count and latest update time for list ETags.
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// PlanService runs the proposer/checker pipeline and locks items.
type PlanService interface {
	Plan(ctx context.Context, in domain.PlannerInput) (*services.PlanResult, error)
	PlanItem(ctx context.Context, itemID string, level domain.Level, goals []string) (*services.PlanResult, *domain.Item, error)
	LockPlan(ctx context.Context, itemID string, plan domain.PlanDraft) (domain.Lock, *domain.Item, error)
}

// PublishService certifies locked items and serves stored artifacts.
type PublishService interface {
	Publish(ctx context.Context, itemID string) (*services.PublishResult, error)
	History(ctx context.Context, itemID string) ([]services.ArtifactRef, error)
	Load(ctx context.Context, artifactID string) (*domain.PublishedArtifact, []byte, error)
}

// VerifyService checks artifacts and plan locks.
type VerifyService interface {
	ByID(ctx context.Context, artifactID string) (services.VerifyResult, error)
	Inline(ctx context.Context, raw json.RawMessage, sigB64 string) (services.VerifyResult, error)
	PlanLock(ctx context.Context, plan domain.PlanDraft, lock domain.Lock) (services.VerifyResult, error)
}

// PublicKeySource exposes the signing public key.
type PublicKeySource interface {
	PublicKeyBase64() (string, error)
}

// AuditReader returns recent audit entries, newest first.
type AuditReader interface {
	Recent(limit int) []services.AuditEntry
}

// IdempotencyStore records publish responses for replay.
type IdempotencyStore interface {
	// Lookup returns the recorded artifact id and status, or ok=false.
	Lookup(ctx context.Context, callerID, itemID, key string, now time.Time) (artifactID string, status int, ok bool)
	// Save records a completed publish.
	Save(ctx context.Context, callerID, itemID, key, artifactID string, status int) error
}

//
// Handler wiring
//

// Deps bundles the services the handlers depend on. Idempotency and Audit
// may be nil.
type Deps struct {
	Items       ItemService
	Plans       PlanService
	Publisher   PublishService
	Verifier    VerifyService
	Keys        PublicKeySource
	Audit       AuditReader
	Idempotency IdempotencyStore

	// AuditPreview exposes GET /certified/audit.
	AuditPreview bool
	// ArtifactBasePath prefixes Location headers (e.g. /api/v1/certified/artifacts).
	ArtifactBasePath string
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	d Deps
}

// New constructs Handlers bound to the given services.
func New(d Deps) *Handlers {
	if d.ArtifactBasePath == "" {
		d.ArtifactBasePath = "/certified/artifacts"
	}
	return &Handlers{d: d}
}

//
// DTOs shared across endpoints
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.IntInRange(c.Query("page"), defaultPage, 1, 0)
	pageSize = utils.IntInRange(c.Query("page_size"), defaultPageSize, 1, maxPageSize)
	return
}

// artifactLocation is the public URL of an artifact body.
func (h *Handlers) artifactLocation(id string) string {
	return h.d.ArtifactBasePath + "/" + id
}

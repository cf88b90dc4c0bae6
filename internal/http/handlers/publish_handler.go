// Publish HTTP handler.
//
// POST /admin/items/{id}/publish certifies the item's current lock.
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous response
// exists for (caller, item, key), the handler replays it with
// `Idempotency-Replayed: true` and does not publish again.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/http/middleware"
	"github.com/tbourn/go-certified-backend/internal/services"
)

// PublishResponse is returned when an artifact was published.
type PublishResponse struct {
	OK       bool                  `json:"ok" example:"true"`
	Status   string                `json:"status" example:"published"`
	Artifact *services.ArtifactRef `json:"artifact"`
	// Document is the signed cert.v1 body; omitted on replays.
	Document *domain.Artifact `json:"document,omitempty"`
}

// AlreadyPublishedResponse is the 409 envelope; it carries the artifact that
// already certifies the lock.
type AlreadyPublishedResponse struct {
	ErrorResponse
	Artifact *services.ArtifactRef `json:"artifact"`
}

// PublishItem godoc
// @ID          publishItem
// @Summary     Publish a certified artifact
// @Description Builds, signs, and stores a cert.v1 artifact for the item's current lock. Publishing the same lock again returns 409 with the existing artifact.
// @Description Supports idempotency via the Idempotency-Key header (same key → same response).
// @Tags        Items
// @Produce     json
// @Security    AdminToken
//
// @Param       id               path    string  true   "Item ID (UUID)"  format(uuid)
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
//
// @Success     200  {object}  handlers.PublishResponse
// @Header      200  {string}  Location  "Artifact URL"
// @Failure     400  {object}  handlers.ErrorResponse             "Item has no lock"
// @Failure     401  {object}  handlers.ErrorResponse             "Missing or invalid admin token"
// @Failure     404  {object}  handlers.ErrorResponse             "Item not found"
// @Failure     409  {object}  handlers.AlreadyPublishedResponse  "Lock already published"
// @Failure     500  {object}  handlers.ErrorResponse             "Internal error"
// @Router      /admin/items/{id}/publish [post]
func (h *Handlers) PublishItem(c *gin.Context) {
	ctx := c.Request.Context()
	itemID := c.Param("id")
	caller := middleware.CallerID(c)

	// Idempotency (replay path).
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && h.d.Idempotency != nil {
		if artifactID, status, found := h.d.Idempotency.Lookup(ctx, caller, itemID, idemKey, time.Now().UTC()); found {
			if rec, _, err := h.d.Publisher.Load(ctx, artifactID); rec != nil && (err == nil || errors.Is(err, services.ErrArtifactBodyMissing)) {
				c.Header(middleware.HeaderIdempotencyReplayed, "true")
				h.writePublish(c, status, services.RefFromRecord(rec), nil)
				return
			}
		}
	}

	res, err := h.d.Publisher.Publish(ctx, itemID)
	if err != nil {
		if errors.Is(err, services.ErrPublishContended) {
			fail(c, http.StatusConflict, ErrCodeConflict, "publish contended; retry")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	var status int
	switch res.Status {
	case services.PublishNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "item not found")
		return
	case services.PublishNoLockHash:
		fail(c, http.StatusBadRequest, ErrCodeNoLockHash, "item has no lock; plan or lock it first")
		return
	case services.PublishAlreadyPublished:
		status = http.StatusConflict
	default:
		status = http.StatusOK
	}

	// Idempotency (store path), best effort.
	if idemKey != "" && h.d.Idempotency != nil {
		if err := h.d.Idempotency.Save(ctx, caller, itemID, idemKey, res.Artifact.ID, status); err != nil {
			lg := middleware.LoggerFrom(c)
			lg.Warn().Err(err).Str("item_id", itemID).Msg("idempotency record not saved")
		}
	}

	h.writePublish(c, status, res.Artifact, res.Document)
}

func (h *Handlers) writePublish(c *gin.Context, status int, ref *services.ArtifactRef, doc *domain.Artifact) {
	c.Header("Location", h.artifactLocation(ref.ID))
	if status == http.StatusConflict {
		c.JSON(http.StatusConflict, AlreadyPublishedResponse{
			ErrorResponse: ErrorResponse{
				RequestID: c.Writer.Header().Get("X-Request-ID"),
				Code:      ErrCodeAlreadyPublished,
				Message:   "lock already published",
			},
			Artifact: ref,
		})
		return
	}
	ok(c, http.StatusOK, PublishResponse{
		OK:       true,
		Status:   string(services.PublishPublished),
		Artifact: ref,
		Document: doc,
	})
}

// Public artifact HTTP handlers.
//
//   - GET /certified/artifacts/{id}        (artifact JSON; {id}.json also accepted)
//   - GET /certified/artifacts/{id}.sig    (raw 64-byte signature)
//   - GET /certified/artifacts?itemId=...  (publish history, newest first)
//   - GET /certified/pubkey                (signing public key)
//   - GET /certified/audit                 (recent audit entries, preview only)
package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-certified-backend/internal/services"
	"github.com/tbourn/go-certified-backend/internal/utils"
)

const (
	suffixJSON = ".json"
	suffixSig  = ".sig"

	defaultAuditLimit = 50
)

// ArtifactHistoryResponse lists an item's artifacts.
type ArtifactHistoryResponse struct {
	ItemID    string                 `json:"itemId"`
	Artifacts []services.ArtifactRef `json:"artifacts"`
}

// PublicKeyResponse describes the signing key.
type PublicKeyResponse struct {
	Algorithm string `json:"algorithm" example:"ed25519"`
	Format    string `json:"format" example:"spki-der-base64"`
	PublicKey string `json:"publicKey" example:"MCowBQYDK2VwAyEA..."`
}

// AuditResponse wraps recent audit entries.
type AuditResponse struct {
	Entries []services.AuditEntry `json:"entries"`
}

// GetArtifact godoc
// @ID          getArtifact
// @Summary     Fetch a published artifact
// @Description Returns the stored cert.v1 body. A ".sig" suffix returns the raw signature bytes instead.
// @Tags        Certified
// @Produce     json
// @Produce     octet-stream
//
// @Param       id             path    string  true   "Artifact ID, optionally with .json or .sig"
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
//
// @Success     200  {object}  domain.Artifact
// @Header      200  {string}  ETag  "W/\"<sha256>\""
// @Success     304  {string}  string  "Not Modified"
// @Failure     404  {object}  handlers.ErrorResponse  "not_found or file_not_found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /certified/artifacts/{id} [get]
func (h *Handlers) GetArtifact(c *gin.Context) {
	raw := c.Param("id")
	if id, isSig := strings.CutSuffix(raw, suffixSig); isSig {
		h.getSignature(c, id)
		return
	}
	id := strings.TrimSuffix(raw, suffixJSON)

	rec, body, err := h.d.Publisher.Load(c.Request.Context(), id)
	if err != nil {
		h.artifactError(c, err)
		return
	}

	if notModified(c, `W/"`+rec.SHA256+`"`) {
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *Handlers) getSignature(c *gin.Context, id string) {
	rec, _, err := h.d.Publisher.Load(c.Request.Context(), id)
	if err != nil && !(rec != nil && errors.Is(err, services.ErrArtifactBodyMissing)) {
		h.artifactError(c, err)
		return
	}
	sig, err := base64.StdEncoding.DecodeString(rec.Signature)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "stored signature is not base64")
		return
	}
	c.Header("Content-Length", strconv.Itoa(len(sig)))
	c.Data(http.StatusOK, "application/octet-stream", sig)
}

// ListArtifacts godoc
// @ID          listArtifacts
// @Summary     Publish history of an item
// @Tags        Certified
// @Produce     json
//
// @Param       itemId  query  string  true  "Item ID"
//
// @Success     200  {object}  handlers.ArtifactHistoryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "itemId required"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /certified/artifacts [get]
func (h *Handlers) ListArtifacts(c *gin.Context) {
	itemID := strings.TrimSpace(c.Query("itemId"))
	if itemID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "itemId query parameter required")
		return
	}
	refs, err := h.d.Publisher.History(c.Request.Context(), itemID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ArtifactHistoryResponse{ItemID: itemID, Artifacts: refs})
}

// GetPublicKey godoc
// @ID          getPublicKey
// @Summary     Signing public key
// @Description Returns the Ed25519 public key (base64 DER SPKI) so artifacts can be verified offline.
// @Tags        Certified
// @Produce     json
//
// @Success     200  {object}  handlers.PublicKeyResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Keys unavailable"
// @Router      /certified/pubkey [get]
func (h *Handlers) GetPublicKey(c *gin.Context) {
	pub, err := h.d.Keys.PublicKeyBase64()
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "signing keys unavailable")
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	ok(c, http.StatusOK, PublicKeyResponse{Algorithm: "ed25519", Format: "spki-der-base64", PublicKey: pub})
}

// GetAudit godoc
// @ID          getAudit
// @Summary     Recent pipeline audit entries
// @Description Newest first. Disabled unless AUDIT_PREVIEW is set.
// @Tags        Certified
// @Produce     json
//
// @Param       limit  query  int  false  "Maximum entries"  minimum(1) default(50)
//
// @Success     200  {object}  handlers.AuditResponse
// @Failure     501  {object}  handlers.ErrorResponse  "feature_disabled"
// @Router      /certified/audit [get]
func (h *Handlers) GetAudit(c *gin.Context) {
	if !h.d.AuditPreview || h.d.Audit == nil {
		fail(c, http.StatusNotImplemented, ErrCodeFeatureDisabled, "audit preview is disabled")
		return
	}
	limit := utils.PositiveOr(c.Query("limit"), defaultAuditLimit)
	ok(c, http.StatusOK, AuditResponse{Entries: h.d.Audit.Recent(limit)})
}

// artifactError maps artifact lookup failures.
func (h *Handlers) artifactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrArtifactNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "artifact not found")
	case errors.Is(err, services.ErrArtifactBodyMissing):
		fail(c, http.StatusNotFound, ErrCodeFileNotFound, "artifact body missing")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

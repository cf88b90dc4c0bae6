package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/services"
)

// VerifyRequest selects exactly one verification mode:
//   - {artifactId}            re-check a stored artifact
//   - {artifact, signature}   check a submitted artifact body
//   - {plan, lock}            recompute a plan's lock
type VerifyRequest struct {
	ArtifactID string            `json:"artifactId,omitempty" example:"6f1c2a0e-1d5b-4b8e-9a51-3c7d2f0a9e11"`
	Artifact   json.RawMessage   `json:"artifact,omitempty" swaggertype:"object"`
	Signature  string            `json:"signature,omitempty" example:"base64-ed25519-signature"`
	Plan       *domain.PlanDraft `json:"plan,omitempty"`
	Lock       *domain.Lock      `json:"lock,omitempty"`
}

func (r VerifyRequest) hasArtifact() bool {
	raw := bytes.TrimSpace(r.Artifact)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// mode returns the requested mode, or "" when zero or several are present.
func (r VerifyRequest) mode() string {
	var modes []string
	if strings.TrimSpace(r.ArtifactID) != "" {
		modes = append(modes, services.VerifyModeReference)
	}
	if r.hasArtifact() || r.Signature != "" {
		modes = append(modes, services.VerifyModeInline)
	}
	if r.Plan != nil || r.Lock != nil {
		modes = append(modes, services.VerifyModePlan)
	}
	if len(modes) != 1 {
		return ""
	}
	return modes[0]
}

// Verify godoc
// @ID          verify
// @Summary     Verify an artifact or a plan lock
// @Description Accepts {artifactId}, {artifact, signature}, or {plan, lock}. Artifacts are re-canonicalized before hashing, so formatting does not matter.
// @Tags        Certified
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.VerifyRequest  true  "Exactly one verification mode"
//
// @Success     200  {object}  services.VerifyResult
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid request shape"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /certified/verify [post]
func (h *Handlers) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()
	var (
		res services.VerifyResult
		err error
	)
	switch req.mode() {
	case services.VerifyModeReference:
		res, err = h.d.Verifier.ByID(ctx, strings.TrimSpace(req.ArtifactID))
	case services.VerifyModeInline:
		if !req.hasArtifact() || req.Signature == "" {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "artifact and signature are both required")
			return
		}
		res, err = h.d.Verifier.Inline(ctx, req.Artifact, req.Signature)
	case services.VerifyModePlan:
		if req.Plan == nil || req.Lock == nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "plan and lock are both required")
			return
		}
		res, err = h.d.Verifier.PlanLock(ctx, *req.Plan, *req.Lock)
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "provide exactly one of artifactId, artifact+signature, plan+lock")
		return
	}

	if err != nil {
		if errors.Is(err, services.ErrInvalidArtifact) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidArtifact, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}

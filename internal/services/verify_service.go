// Package services – VerifyService
//
// VerifyService answers whether an artifact is authentic. Verification is
// content-based: bodies are re-canonicalized before hashing or checking a
// signature, so formatting and key order in the input do not matter.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-certified-backend/internal/artifacts"
	"github.com/tbourn/go-certified-backend/internal/canon"
	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/observability"
	"github.com/tbourn/go-certified-backend/internal/repo"
)

// Verification failure reasons.
const (
	ReasonNotFound         = "not_found"
	ReasonContentMismatch  = "content_mismatch"
	ReasonSignatureInvalid = "signature_invalid"
)

// Verification modes, used for metrics and audit.
const (
	VerifyModeReference = "reference"
	VerifyModeInline    = "inline"
	VerifyModePlan      = "plan"
)

// VerifyResult is the tagged outcome of a verification.
type VerifyResult struct {
	OK     bool   `json:"ok"`
	SHA256 string `json:"sha256,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// SignatureVerifier checks a base64 signature over msg.
type SignatureVerifier interface {
	Verify(msg []byte, sigB64 string) bool
}

// VerifyService verifies stored and submitted artifacts.
type VerifyService struct {
	DB       *gorm.DB
	Store    artifacts.BlobStore
	Verifier SignatureVerifier
	Audit    *AuditLog
}

// NewVerifyService wires a VerifyService.
func NewVerifyService(db *gorm.DB, store artifacts.BlobStore, v SignatureVerifier, audit *AuditLog) *VerifyService {
	return &VerifyService{DB: db, Store: store, Verifier: v, Audit: audit}
}

// ByID reloads a published artifact and checks that the body still matches
// the hash and signature recorded at publish time.
func (s *VerifyService) ByID(ctx context.Context, artifactID string) (VerifyResult, error) {
	ctx, span := observability.StartStage(ctx, "verify.reference", attribute.String("artifact.id", artifactID))
	res, err := s.byID(ctx, artifactID)
	observability.EndStage(span, err)
	if err != nil {
		return res, err
	}
	s.record(ctx, VerifyModeReference, artifactID, res)
	return res, nil
}

func (s *VerifyService) byID(ctx context.Context, artifactID string) (VerifyResult, error) {
	rec, err := repo.GetPublishedArtifact(ctx, s.DB, artifactID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return VerifyResult{Reason: ReasonNotFound}, nil
		}
		return VerifyResult{}, err
	}
	raw, err := s.Store.Get(ctx, artifacts.Name(rec.ID))
	if err != nil {
		if errors.Is(err, artifacts.ErrBlobNotFound) {
			return VerifyResult{Reason: ReasonNotFound}, nil
		}
		return VerifyResult{}, err
	}

	a, err := artifacts.Decode(raw)
	if err != nil {
		return VerifyResult{Reason: ReasonContentMismatch}, nil
	}
	sum, err := artifacts.ContentHash(a)
	if err != nil {
		return VerifyResult{Reason: ReasonContentMismatch}, nil
	}
	if sum != rec.SHA256 || a.SHA256 != rec.SHA256 || a.ArtifactID != rec.ID || a.LockHash != rec.LockHash {
		return VerifyResult{SHA256: sum, Reason: ReasonContentMismatch}, nil
	}

	body, err := canon.Canonicalize(a)
	if err != nil {
		return VerifyResult{}, err
	}
	if !s.Verifier.Verify([]byte(body), rec.Signature) {
		return VerifyResult{SHA256: sum, Reason: ReasonSignatureInvalid}, nil
	}
	return VerifyResult{OK: true, SHA256: sum}, nil
}

// Inline verifies a submitted artifact body against a base64 signature
// without any storage lookup. raw must be a JSON object.
func (s *VerifyService) Inline(ctx context.Context, raw json.RawMessage, sigB64 string) (VerifyResult, error) {
	ctx, span := observability.StartStage(ctx, "verify.inline")
	defer span.End()

	body, err := canon.CanonicalizeJSON(raw)
	if err != nil || !strings.HasPrefix(body, "{") {
		return VerifyResult{}, ErrInvalidArtifact
	}

	res := s.inline([]byte(body), sigB64)
	s.record(ctx, VerifyModeInline, "", res)
	return res, nil
}

func (s *VerifyService) inline(body []byte, sigB64 string) VerifyResult {
	if !s.Verifier.Verify(body, sigB64) {
		return VerifyResult{Reason: ReasonSignatureInvalid}
	}
	a, err := artifacts.Decode(body)
	if err != nil {
		return VerifyResult{Reason: ReasonContentMismatch}
	}
	sum, err := artifacts.ContentHash(a)
	if err != nil || sum != a.SHA256 {
		return VerifyResult{SHA256: sum, Reason: ReasonContentMismatch}
	}
	return VerifyResult{OK: true, SHA256: sum}
}

// PlanLock recomputes the lock of plan and compares it to lock.
func (s *VerifyService) PlanLock(ctx context.Context, plan domain.PlanDraft, lock domain.Lock) (VerifyResult, error) {
	got, err := canon.ComputeLock(plan)
	if err != nil {
		return VerifyResult{}, err
	}
	res := VerifyResult{OK: true, SHA256: got.Hash}
	if lock.Algo != got.Algo || lock.Hash != got.Hash {
		res = VerifyResult{SHA256: got.Hash, Reason: ReasonContentMismatch}
	}
	s.record(ctx, VerifyModePlan, "", res)
	return res, nil
}

func (s *VerifyService) record(ctx context.Context, mode, artifactID string, res VerifyResult) {
	outcome := "ok"
	if !res.OK {
		outcome = res.Reason
	}
	observability.VerifyOutcomes.WithLabelValues(mode, outcome).Inc()
	s.Audit.Record(ctx, AuditEntry{
		Action:     AuditVerify,
		ArtifactID: artifactID,
		OK:         res.OK,
		Reason:     mode + ":" + outcome,
	})
}

// Package services – PublishService
//
// PublishService turns a locked item into a signed cert.v1 artifact.
//
// Per item the lifecycle is unlocked -> locked -> published. Publishing the
// same lock twice never yields two artifacts: the most recent artifact is
// checked first, and the publish_claims table arbitrates concurrent
// publishers through its (item_id, lock_hash) primary key. A claim whose
// artifact body can no longer be read is taken over by the next publisher.
//
// The body write, the metadata row, and the claim commit together; if the
// transaction fails the written body is removed.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-certified-backend/internal/artifacts"
	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/observability"
	"github.com/tbourn/go-certified-backend/internal/repo"
)

// PublishStatus tags the outcome of a publish attempt.
type PublishStatus string

const (
	PublishPublished        PublishStatus = "published"
	PublishAlreadyPublished PublishStatus = "already_published"
	PublishNoLockHash       PublishStatus = "no_lock_hash"
	PublishNotFound         PublishStatus = "not_found"
)

// maxClaimAttempts bounds retries when a stale claim is taken over by
// someone else between our read and our swap.
const maxClaimAttempts = 3

// errClaimLost aborts a publish transaction so the attempt can be retried.
var errClaimLost = errors.New("claim lost")

// ArtifactRef is the metadata view of a published artifact.
type ArtifactRef struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"itemId"`
	SHA256    string    `json:"sha256"`
	Signature string    `json:"signature"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
}

// RefFromRecord converts a metadata row.
func RefFromRecord(rec *domain.PublishedArtifact) *ArtifactRef {
	return &ArtifactRef{
		ID:        rec.ID,
		ItemID:    rec.ItemID,
		SHA256:    rec.SHA256,
		Signature: rec.Signature,
		Path:      rec.Path,
		CreatedAt: rec.CreatedAt,
	}
}

// PublishResult is the tagged outcome of Publish. Artifact is set for
// published and already_published; Document only for a fresh publish.
type PublishResult struct {
	Status   PublishStatus    `json:"status"`
	Artifact *ArtifactRef     `json:"artifact,omitempty"`
	Document *domain.Artifact `json:"document,omitempty"`

	lockHash string // item lock the outcome was decided for
}

// PublishService certifies locked items.
type PublishService struct {
	DB     *gorm.DB
	Store  artifacts.BlobStore
	Signer artifacts.Signer
	Audit  *AuditLog
	Log    zerolog.Logger

	// Now and NewID are replaceable for tests.
	Now   func() time.Time
	NewID func() string
}

// NewPublishService wires a PublishService.
func NewPublishService(db *gorm.DB, store artifacts.BlobStore, signer artifacts.Signer, audit *AuditLog) *PublishService {
	return &PublishService{
		DB:     db,
		Store:  store,
		Signer: signer,
		Audit:  audit,
		Log:    log.With().Str("service", "PublishService").Logger(),
		Now:    time.Now,
		NewID:  uuid.NewString,
	}
}

// Publish certifies the item's current lock. Expected negative outcomes are
// reported through PublishResult.Status; the error is reserved for storage,
// signing, and database failures.
func (s *PublishService) Publish(ctx context.Context, itemID string) (*PublishResult, error) {
	ctx, span := observability.StartStage(ctx, "publish", attribute.String("item.id", itemID))

	res, err := s.publish(ctx, itemID)
	outcome := "error"
	entry := AuditEntry{Action: AuditPublish, ItemID: itemID}
	if err == nil {
		outcome = string(res.Status)
		entry.Reason = string(res.Status)
		entry.OK = res.Status == PublishPublished || res.Status == PublishAlreadyPublished
		if res.Artifact != nil {
			entry.ArtifactID = res.Artifact.ID
		}
		if lh := res.lockHash; lh != "" {
			entry.LockAlgo = domain.LockAlgoSHA256
			entry.LockHashPrefix = lh
		}
	} else {
		entry.Reason = err.Error()
	}
	observability.PublishOutcomes.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("publish.outcome", outcome))
	s.Audit.Record(ctx, entry)
	observability.EndStage(span, err)
	return res, err
}

func (s *PublishService) publish(ctx context.Context, itemID string) (*PublishResult, error) {
	item, err := repo.GetItem(ctx, s.DB, itemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return &PublishResult{Status: PublishNotFound}, nil
		}
		return nil, err
	}
	if item.LockHash == nil || *item.LockHash == "" {
		return &PublishResult{Status: PublishNoLockHash}, nil
	}
	res, err := s.publishLock(ctx, item, *item.LockHash)
	if res != nil {
		res.lockHash = *item.LockHash
	}
	return res, err
}

func (s *PublishService) publishLock(ctx context.Context, item *domain.Item, lockHash string) (*PublishResult, error) {
	// Fast path: the latest artifact already certifies this lock.
	latest, err := repo.LatestArtifactForItem(ctx, s.DB, item.ID)
	switch {
	case err == nil:
		if a, ok := s.readBody(ctx, latest.ID); ok && a.LockHash == lockHash {
			return s.conflict(ctx, s.DB, item.ID, latest)
		}
	case !errors.Is(err, repo.ErrNotFound):
		return nil, err
	}

	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		res, err := s.tryPublish(ctx, item, lockHash)
		if errors.Is(err, errClaimLost) {
			continue
		}
		return res, err
	}
	return nil, ErrPublishContended
}

// tryPublish builds, signs, and commits one candidate artifact, or reports
// the artifact that already holds the claim.
func (s *PublishService) tryPublish(ctx context.Context, item *domain.Item, lockHash string) (*PublishResult, error) {
	id := s.NewID()
	now := s.Now().UTC()

	doc, err := artifacts.Build(id, item.ID, item.SourceURL, lockHash, now)
	if err != nil {
		return nil, err
	}
	signed, err := artifacts.Sign(doc, s.Signer)
	if err != nil {
		return nil, err
	}

	name := artifacts.Name(id)
	var (
		res   *PublishResult
		wrote bool
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A savepoint keeps the outer transaction usable after a unique
		// violation on PostgreSQL.
		claimErr := tx.Transaction(func(sp *gorm.DB) error {
			return repo.InsertClaim(ctx, sp, item.ID, lockHash, id)
		})
		switch {
		case errors.Is(claimErr, repo.ErrDuplicate):
			holder, err := repo.GetClaim(ctx, tx, item.ID, lockHash)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return errClaimLost
				}
				return err
			}
			rec, err := repo.GetPublishedArtifact(ctx, tx, holder.ArtifactID)
			switch {
			case err == nil:
				if _, ok := s.readBody(ctx, rec.ID); ok {
					res, err = s.conflict(ctx, tx, item.ID, rec)
					return err
				}
			case !errors.Is(err, repo.ErrNotFound):
				return err
			}
			// The holder's body is gone; take the claim over.
			swapped, err := repo.SwapClaim(ctx, tx, item.ID, lockHash, holder.ArtifactID, id)
			if err != nil {
				return err
			}
			if !swapped {
				return errClaimLost
			}
			s.Log.Warn().Str("item_id", item.ID).Str("stale_artifact", holder.ArtifactID).Msg("replacing unreadable artifact")
		case claimErr != nil:
			return claimErr
		}

		path, err := s.Store.Put(ctx, name, signed.Body)
		if err != nil {
			return err
		}
		wrote = true

		rec := &domain.PublishedArtifact{
			ID:        id,
			ItemID:    item.ID,
			LockHash:  lockHash,
			SHA256:    doc.SHA256,
			Signature: signed.Signature,
			Path:      path,
			CreatedAt: now,
		}
		if err := repo.CreatePublishedArtifact(ctx, tx, rec); err != nil {
			return err
		}
		if err := repo.MarkItemPublished(ctx, tx, item.ID); err != nil {
			return err
		}
		res = &PublishResult{Status: PublishPublished, Artifact: RefFromRecord(rec), Document: &doc}
		return nil
	})
	if err != nil {
		if wrote {
			if derr := s.Store.Delete(context.WithoutCancel(ctx), name); derr != nil {
				s.Log.Error().Err(derr).Str("artifact_id", id).Msg("orphaned artifact body")
			}
		}
		return nil, err
	}
	if res.Status == PublishPublished {
		s.Log.Info().Str("item_id", item.ID).Str("artifact_id", id).Msg("artifact published")
	}
	return res, nil
}

func (s *PublishService) conflict(ctx context.Context, db *gorm.DB, itemID string, rec *domain.PublishedArtifact) (*PublishResult, error) {
	if err := repo.MarkItemPublished(ctx, db, itemID); err != nil {
		return nil, err
	}
	return &PublishResult{Status: PublishAlreadyPublished, Artifact: RefFromRecord(rec)}, nil
}

// readBody loads and decodes a stored body. Any failure reports ok=false so
// callers treat the artifact as absent.
func (s *PublishService) readBody(ctx context.Context, artifactID string) (domain.Artifact, bool) {
	raw, err := s.Store.Get(ctx, artifacts.Name(artifactID))
	if err != nil {
		return domain.Artifact{}, false
	}
	a, err := artifacts.Decode(raw)
	if err != nil {
		return domain.Artifact{}, false
	}
	return a, true
}

// History returns an item's artifacts, newest first.
func (s *PublishService) History(ctx context.Context, itemID string) ([]ArtifactRef, error) {
	recs, err := repo.ListArtifactsForItem(ctx, s.DB, itemID)
	if err != nil {
		return nil, err
	}
	out := make([]ArtifactRef, 0, len(recs))
	for i := range recs {
		out = append(out, *RefFromRecord(&recs[i]))
	}
	return out, nil
}

// Load returns an artifact's metadata and stored body.
func (s *PublishService) Load(ctx context.Context, artifactID string) (*domain.PublishedArtifact, []byte, error) {
	rec, err := repo.GetPublishedArtifact(ctx, s.DB, artifactID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrArtifactNotFound
		}
		return nil, nil, err
	}
	body, err := s.Store.Get(ctx, artifacts.Name(rec.ID))
	if err != nil {
		if errors.Is(err, artifacts.ErrBlobNotFound) {
			return rec, nil, ErrArtifactBodyMissing
		}
		return rec, nil, err
	}
	return rec, body, nil
}

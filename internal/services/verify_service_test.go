package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-certified-backend/internal/artifacts"
	"github.com/tbourn/go-certified-backend/internal/canon"
	"github.com/tbourn/go-certified-backend/internal/domain"
)

// published returns a freshly published artifact and its stored body.
func (p *pipeline) published(t *testing.T) (*ArtifactRef, []byte) {
	t.Helper()
	it := p.lockedItem(t, draft("Plan", "a", "b"))
	res, err := p.publish.Publish(context.Background(), it.ID)
	if err != nil || res.Status != PublishPublished {
		t.Fatalf("publish: %+v %v", res, err)
	}
	body, err := p.store.Get(context.Background(), artifacts.Name(res.Artifact.ID))
	if err != nil {
		t.Fatalf("get body: %v", err)
	}
	return res.Artifact, body
}

// rewrite decodes body, applies fn, and re-encodes with indentation.
func rewrite(t *testing.T, body []byte, fn func(m map[string]any)) []byte {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fn != nil {
		fn(m)
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return out
}

func TestVerifyByID_OK(t *testing.T) {
	p := newPipeline(t)
	ref, _ := p.published(t)

	res, err := p.verify.ByID(context.Background(), ref.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if !res.OK || res.SHA256 != ref.SHA256 || res.Reason != "" {
		t.Fatalf("result: %+v", res)
	}
	last := p.audit.Recent(1)[0]
	if last.Action != AuditVerify || !last.OK || last.ArtifactID != ref.ID || last.Reason != "reference:ok" {
		t.Fatalf("audit: %+v", last)
	}
}

func TestVerifyByID_ReformattedBodyStillVerifies(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	ref, body := p.published(t)

	if _, err := p.store.Put(ctx, artifacts.Name(ref.ID), rewrite(t, body, nil)); err != nil {
		t.Fatalf("put: %v", err)
	}
	res, err := p.verify.ByID(ctx, ref.ID)
	if err != nil || !res.OK {
		t.Fatalf("reformatted body should verify: %+v %v", res, err)
	}
}

func TestVerifyByID_NotFound(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	res, err := p.verify.ByID(ctx, "missing")
	if err != nil || res.OK || res.Reason != ReasonNotFound {
		t.Fatalf("unknown id: %+v %v", res, err)
	}

	ref, _ := p.published(t)
	if err := p.store.Delete(ctx, artifacts.Name(ref.ID)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	res, err = p.verify.ByID(ctx, ref.ID)
	if err != nil || res.Reason != ReasonNotFound {
		t.Fatalf("missing body: %+v %v", res, err)
	}
}

func TestVerifyByID_TamperedBody(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	ref, body := p.published(t)

	tampered := rewrite(t, body, func(m map[string]any) {
		m["lockHash"] = strings.Repeat("0", 64)
	})
	if _, err := p.store.Put(ctx, artifacts.Name(ref.ID), tampered); err != nil {
		t.Fatalf("put: %v", err)
	}
	res, err := p.verify.ByID(ctx, ref.ID)
	if err != nil || res.OK || res.Reason != ReasonContentMismatch {
		t.Fatalf("tampered: %+v %v", res, err)
	}

	if _, err := p.store.Put(ctx, artifacts.Name(ref.ID), []byte("not json")); err != nil {
		t.Fatalf("put: %v", err)
	}
	res, err = p.verify.ByID(ctx, ref.ID)
	if err != nil || res.Reason != ReasonContentMismatch {
		t.Fatalf("garbage body: %+v %v", res, err)
	}
}

func TestVerifyByID_BadRecordedSignature(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	ref, _ := p.published(t)

	other, err := p.keys.Sign([]byte("something else"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := p.db.Model(&domain.PublishedArtifact{}).Where("id = ?", ref.ID).Update("signature", other).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	res, err := p.verify.ByID(ctx, ref.ID)
	if err != nil || res.OK || res.Reason != ReasonSignatureInvalid {
		t.Fatalf("bad signature: %+v %v", res, err)
	}
}

func TestVerifyInline(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	ref, body := p.published(t)

	t.Run("ok with different formatting", func(t *testing.T) {
		res, err := p.verify.Inline(ctx, rewrite(t, body, nil), ref.Signature)
		if err != nil || !res.OK || res.SHA256 != ref.SHA256 {
			t.Fatalf("inline: %+v %v", res, err)
		}
	})

	t.Run("edited field breaks signature", func(t *testing.T) {
		edited := rewrite(t, body, func(m map[string]any) {
			m["lockHash"] = strings.Repeat("f", 64)
		})
		res, err := p.verify.Inline(ctx, edited, ref.Signature)
		if err != nil || res.OK || res.Reason != ReasonSignatureInvalid {
			t.Fatalf("inline edited: %+v %v", res, err)
		}
	})

	t.Run("garbage signature", func(t *testing.T) {
		res, err := p.verify.Inline(ctx, body, "!!not-base64!!")
		if err != nil || res.Reason != ReasonSignatureInvalid {
			t.Fatalf("inline bad sig: %+v %v", res, err)
		}
	})

	t.Run("signed but inconsistent hash", func(t *testing.T) {
		a, err := artifacts.Build("id-1", "item-1", nil, strings.Repeat("a", 64), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		a.SHA256 = strings.Repeat("0", 64)
		signed, err := artifacts.Sign(a, p.keys)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		res, err := p.verify.Inline(ctx, signed.Body, signed.Signature)
		if err != nil || res.OK || res.Reason != ReasonContentMismatch {
			t.Fatalf("inline mismatch: %+v %v", res, err)
		}
	})

	t.Run("not an object", func(t *testing.T) {
		for _, raw := range []string{`[1,2]`, `"x"`, `{"a":`} {
			if _, err := p.verify.Inline(ctx, json.RawMessage(raw), ref.Signature); !errors.Is(err, ErrInvalidArtifact) {
				t.Fatalf("%s: want ErrInvalidArtifact, got %v", raw, err)
			}
		}
	})
}

func TestVerifyPlanLock(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	plan := draft("Plan", "a")
	lock, _ := canon.ComputeLock(plan)

	res, err := p.verify.PlanLock(ctx, plan, lock)
	if err != nil || !res.OK || res.SHA256 != lock.Hash {
		t.Fatalf("matching lock: %+v %v", res, err)
	}

	res, err = p.verify.PlanLock(ctx, draft("Plan", "b"), lock)
	if err != nil || res.OK || res.Reason != ReasonContentMismatch {
		t.Fatalf("mismatched lock: %+v %v", res, err)
	}
	if p.audit.Recent(1)[0].Reason != "plan:content_mismatch" {
		t.Fatalf("audit reason=%q", p.audit.Recent(1)[0].Reason)
	}
}

package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/services"
)

func artifactDeps(body []byte, bodyErr error) Deps {
	return Deps{Publisher: stubPublisher{load: func(_ context.Context, id string) (*domain.PublishedArtifact, []byte, error) {
		if id != "a1" {
			return nil, nil, services.ErrArtifactNotFound
		}
		rec := sampleRecord(id)
		rec.Signature = base64.StdEncoding.EncodeToString(make([]byte, 64))
		if bodyErr != nil {
			return rec, nil, bodyErr
		}
		return rec, body, nil
	}}}
}

func TestGetArtifact(t *testing.T) {
	body := []byte(`{"artifactId":"a1","version":"cert.v1"}`)
	r := newTestEngine(New(artifactDeps(body, nil)))

	for _, path := range []string{"/certified/artifacts/a1", "/certified/artifacts/a1.json"} {
		w := doJSON(t, r, http.MethodGet, path, nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: code=%d", path, w.Code)
		}
		if w.Body.String() != string(body) {
			t.Fatalf("%s: body=%s", path, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Fatalf("%s: content-type=%q", path, ct)
		}
		if et := w.Header().Get("ETag"); et != `W/"deadbeef"` {
			t.Fatalf("%s: etag=%q", path, et)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/certified/artifacts/a1", nil, map[string]string{"If-None-Match": `W/"deadbeef"`})
	if w.Code != http.StatusNotModified || w.Body.Len() != 0 {
		t.Fatalf("304 expected, got %d len=%d", w.Code, w.Body.Len())
	}

	w = doJSON(t, r, http.MethodGet, "/certified/artifacts/nope", nil, nil)
	if w.Code != http.StatusNotFound || decodeErr(t, w).Code != ErrCodeNotFound {
		t.Fatalf("unknown: %d %s", w.Code, w.Body.String())
	}
}

func TestGetArtifact_BodyMissing(t *testing.T) {
	r := newTestEngine(New(artifactDeps(nil, services.ErrArtifactBodyMissing)))

	w := doJSON(t, r, http.MethodGet, "/certified/artifacts/a1", nil, nil)
	if w.Code != http.StatusNotFound || decodeErr(t, w).Code != ErrCodeFileNotFound {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}

	// The signature lives in the metadata row, so it is still served.
	w = doJSON(t, r, http.MethodGet, "/certified/artifacts/a1.sig", nil, nil)
	if w.Code != http.StatusOK || w.Body.Len() != 64 {
		t.Fatalf("sig: code=%d len=%d", w.Code, w.Body.Len())
	}
}

func TestGetArtifact_Signature(t *testing.T) {
	r := newTestEngine(New(artifactDeps([]byte(`{}`), nil)))

	w := doJSON(t, r, http.MethodGet, "/certified/artifacts/a1.sig", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Fatalf("content-type=%q", ct)
	}
	if w.Body.Len() != 64 {
		t.Fatalf("len=%d", w.Body.Len())
	}

	w = doJSON(t, r, http.MethodGet, "/certified/artifacts/nope.sig", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown sig: %d", w.Code)
	}
}

func TestListArtifacts(t *testing.T) {
	h := New(Deps{Publisher: stubPublisher{history: func(_ context.Context, itemID string) ([]services.ArtifactRef, error) {
		if itemID == "broken" {
			return nil, errBoom
		}
		return []services.ArtifactRef{{ID: "a2", ItemID: itemID}, {ID: "a1", ItemID: itemID}}, nil
	}}})
	r := newTestEngine(h)

	w := doJSON(t, r, http.MethodGet, "/certified/artifacts?itemId=it-1", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	var resp ArtifactHistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ItemID != "it-1" || len(resp.Artifacts) != 2 || resp.Artifacts[0].ID != "a2" {
		t.Fatalf("resp=%+v", resp)
	}

	if w := doJSON(t, r, http.MethodGet, "/certified/artifacts", nil, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing itemId: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/certified/artifacts?itemId=broken", nil, nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("broken: %d", w.Code)
	}
}

func TestGetPublicKey(t *testing.T) {
	r := newTestEngine(New(Deps{Keys: stubKeys{pub: "MCowBQ"}}))
	w := doJSON(t, r, http.MethodGet, "/certified/pubkey", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	var resp PublicKeyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Algorithm != "ed25519" || resp.PublicKey != "MCowBQ" {
		t.Fatalf("resp=%+v", resp)
	}

	r = newTestEngine(New(Deps{Keys: stubKeys{err: errBoom}}))
	if w := doJSON(t, r, http.MethodGet, "/certified/pubkey", nil, nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("keys error: %d", w.Code)
	}
}

func TestGetAudit(t *testing.T) {
	entries := []services.AuditEntry{
		{TS: time.Unix(3, 0), Action: "publish", OK: true},
		{TS: time.Unix(2, 0), Action: "plan", OK: true},
		{TS: time.Unix(1, 0), Action: "verify"},
	}

	t.Run("disabled", func(t *testing.T) {
		r := newTestEngine(New(Deps{Audit: stubAudit{entries: entries}}))
		w := doJSON(t, r, http.MethodGet, "/certified/audit", nil, nil)
		if w.Code != http.StatusNotImplemented || decodeErr(t, w).Code != ErrCodeFeatureDisabled {
			t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("enabled with limit", func(t *testing.T) {
		r := newTestEngine(New(Deps{Audit: stubAudit{entries: entries}, AuditPreview: true}))
		w := doJSON(t, r, http.MethodGet, "/certified/audit?limit=2", nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("code=%d", w.Code)
		}
		var resp AuditResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp.Entries) != 2 || resp.Entries[0].Action != "publish" {
			t.Fatalf("entries=%+v", resp.Entries)
		}
	})

	t.Run("bad limit falls back", func(t *testing.T) {
		r := newTestEngine(New(Deps{Audit: stubAudit{entries: entries}, AuditPreview: true}))
		w := doJSON(t, r, http.MethodGet, "/certified/audit?limit=0", nil, nil)
		var resp AuditResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if w.Code != http.StatusOK || len(resp.Entries) != 3 {
			t.Fatalf("code=%d entries=%d", w.Code, len(resp.Entries))
		}
	})
}

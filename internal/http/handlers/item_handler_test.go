package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/services"
)

func TestCreateItem(t *testing.T) {
	t.Run("created with location", func(t *testing.T) {
		var gotTopic string
		var gotSrc *string
		h := New(Deps{Items: stubItems{create: func(_ context.Context, title, topic string, src *string) (*domain.Item, error) {
			gotTopic, gotSrc = topic, src
			return &domain.Item{ID: "it-9", Title: title, Topic: topic, SourceURL: src, Status: domain.ItemUnlocked}, nil
		}}})
		r := newTestEngine(h)

		w := doJSON(t, r, http.MethodPost, "/admin/items", map[string]any{
			"topic":     "Photosynthesis",
			"sourceUrl": "https://example.org/p",
		}, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
		}
		if loc := w.Header().Get("Location"); loc != "/admin/items/it-9" {
			t.Fatalf("Location=%q", loc)
		}
		if gotTopic != "Photosynthesis" || gotSrc == nil || *gotSrc != "https://example.org/p" {
			t.Fatalf("service got topic=%q src=%v", gotTopic, gotSrc)
		}
		var it domain.Item
		if err := json.Unmarshal(w.Body.Bytes(), &it); err != nil || it.ID != "it-9" {
			t.Fatalf("decode: %v %+v", err, it)
		}
	})

	bad := []struct {
		name string
		body any
	}{
		{"missing topic", map[string]any{"title": "x"}},
		{"bad url", map[string]any{"topic": "x", "sourceUrl": "not a url"}},
		{"not json", "{"},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestEngine(New(Deps{Items: stubItems{}}))
			w := doJSON(t, r, http.MethodPost, "/admin/items", tc.body, nil)
			if w.Code != http.StatusBadRequest || decodeErr(t, w).Code != ErrCodeBadRequest {
				t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
			}
		})
	}

	t.Run("service rejects blank topic", func(t *testing.T) {
		h := New(Deps{Items: stubItems{create: func(context.Context, string, string, *string) (*domain.Item, error) {
			return nil, services.ErrEmptyTopic
		}}})
		w := doJSON(t, newTestEngine(h), http.MethodPost, "/admin/items", map[string]any{"topic": "   "}, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("code=%d", w.Code)
		}
	})

	t.Run("service failure", func(t *testing.T) {
		h := New(Deps{Items: stubItems{create: func(context.Context, string, string, *string) (*domain.Item, error) {
			return nil, errBoom
		}}})
		w := doJSON(t, newTestEngine(h), http.MethodPost, "/admin/items", map[string]any{"topic": "x"}, nil)
		if w.Code != http.StatusInternalServerError || decodeErr(t, w).Code != ErrCodeInternal {
			t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
		}
	})
}

func TestGetItem(t *testing.T) {
	h := New(Deps{Items: stubItems{get: func(_ context.Context, id string) (*domain.Item, error) {
		if id == "known" {
			return &domain.Item{ID: id, Topic: "t"}, nil
		}
		if id == "broken" {
			return nil, errBoom
		}
		return nil, services.ErrItemNotFound
	}}})
	r := newTestEngine(h)

	if w := doJSON(t, r, http.MethodGet, "/admin/items/known", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("known: %d", w.Code)
	}
	w := doJSON(t, r, http.MethodGet, "/admin/items/missing", nil, nil)
	if w.Code != http.StatusNotFound || decodeErr(t, w).Code != ErrCodeNotFound {
		t.Fatalf("missing: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodGet, "/admin/items/broken", nil, nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("broken: %d", w.Code)
	}
}

func TestListItems_PaginationAndETag(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var gotPage, gotSize int
	h := New(Deps{Items: stubItems{
		stats: func(context.Context) (int64, *time.Time, error) { return 3, &ts, nil },
		listPage: func(_ context.Context, page, size int) ([]domain.Item, int64, error) {
			gotPage, gotSize = page, size
			return []domain.Item{{ID: "a"}}, 3, nil
		},
	}})
	r := newTestEngine(h)

	w := doJSON(t, r, http.MethodGet, "/admin/items?page=2&page_size=1", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	if gotPage != 2 || gotSize != 1 {
		t.Fatalf("page=%d size=%d", gotPage, gotSize)
	}
	var resp ListItemsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Pagination.Total != 3 || resp.Pagination.TotalPages != 3 || !resp.Pagination.HasNext {
		t.Fatalf("pagination=%+v", resp.Pagination)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	w = doJSON(t, r, http.MethodGet, "/admin/items?page=2&page_size=1", nil, map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("If-None-Match: code=%d", w.Code)
	}

	// A different page has a different tag.
	w = doJSON(t, r, http.MethodGet, "/admin/items?page=1&page_size=1", nil, map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusOK {
		t.Fatalf("other page: code=%d", w.Code)
	}
}

func TestListItems_ClampsQuery(t *testing.T) {
	var gotPage, gotSize int
	h := New(Deps{Items: stubItems{listPage: func(_ context.Context, page, size int) ([]domain.Item, int64, error) {
		gotPage, gotSize = page, size
		return nil, 0, nil
	}}})
	r := newTestEngine(h)

	doJSON(t, r, http.MethodGet, "/admin/items?page=-3&page_size=1000", nil, nil)
	if gotPage != 1 || gotSize != 100 {
		t.Fatalf("clamped page=%d size=%d", gotPage, gotSize)
	}
	doJSON(t, r, http.MethodGet, "/admin/items?page=abc", nil, nil)
	if gotPage != 1 || gotSize != 20 {
		t.Fatalf("defaults page=%d size=%d", gotPage, gotSize)
	}
}

func TestListItems_ServiceError(t *testing.T) {
	h := New(Deps{Items: stubItems{listPage: func(context.Context, int, int) ([]domain.Item, int64, error) {
		return nil, 0, errBoom
	}}})
	w := doJSON(t, newTestEngine(h), http.MethodGet, "/admin/items", nil, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("code=%d", w.Code)
	}
}

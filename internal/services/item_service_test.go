package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestItemService_Create_NormalizesAndDefaults(t *testing.T) {
	db := newSvcDB(t)
	svc := NewItemService(db, itemRepo{})
	ctx := context.Background()

	blank := "   "
	it, err := svc.Create(ctx, "  ", "  Cell \t  biology  ", &blank)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if it.Topic != "Cell biology" {
		t.Fatalf("topic=%q", it.Topic)
	}
	if it.Title != "Cell biology" {
		t.Fatalf("title should fall back to topic, got %q", it.Title)
	}
	if it.SourceURL != nil {
		t.Fatalf("blank source url should be dropped, got %q", *it.SourceURL)
	}
	if it.Status != "unlocked" || it.LockHash != nil {
		t.Fatalf("new item should be unlocked: %+v", it)
	}

	src := " https://example.org/a "
	it2, err := svc.Create(ctx, "Title", "Topic", &src)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if it2.SourceURL == nil || *it2.SourceURL != "https://example.org/a" {
		t.Fatalf("source url not trimmed: %v", it2.SourceURL)
	}
}

func TestItemService_Create_EmptyTopic(t *testing.T) {
	svc := NewItemService(newSvcDB(t), itemRepo{})
	if _, err := svc.Create(context.Background(), "t", " \n ", nil); !errors.Is(err, ErrEmptyTopic) {
		t.Fatalf("want ErrEmptyTopic, got %v", err)
	}
}

func TestItemService_Create_ClipsLongValues(t *testing.T) {
	svc := NewItemService(newSvcDB(t), itemRepo{})
	svc.TitleMaxLen = 5
	it, err := svc.Create(context.Background(), "ééééééééé", "abcdefgh", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if utf8.RuneCountInString(it.Title) != 5 || it.Topic != "abcde" {
		t.Fatalf("clip failed: title=%q topic=%q", it.Title, it.Topic)
	}
}

func TestItemService_Get(t *testing.T) {
	svc := NewItemService(newSvcDB(t), itemRepo{})
	ctx := context.Background()

	it, err := svc.Create(ctx, "x", "y", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Get(ctx, it.ID)
	if err != nil || got.ID != it.ID {
		t.Fatalf("Get: %v %+v", err, got)
	}
	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("want ErrItemNotFound, got %v", err)
	}
}

func TestItemService_ListPage(t *testing.T) {
	svc := NewItemService(newSvcDB(t), itemRepo{})
	ctx := context.Background()

	items, total, err := svc.ListPage(ctx, 1, 10)
	if err != nil || total != 0 || len(items) != 0 || items == nil {
		t.Fatalf("empty list: items=%v total=%d err=%v", items, total, err)
	}

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, "", strings.Repeat("t", i+1), nil); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	items, total, err = svc.ListPage(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("total=%d len=%d", total, len(items))
	}

	// invalid page values fall back to defaults
	items, _, err = svc.ListPage(ctx, 0, 0)
	if err != nil || len(items) != 5 {
		t.Fatalf("defaults: len=%d err=%v", len(items), err)
	}
}

func TestItemService_Stats(t *testing.T) {
	svc := NewItemService(newSvcDB(t), itemRepo{})
	ctx := context.Background()

	n, ts, err := svc.Stats(ctx)
	if err != nil || n != 0 || ts != nil {
		t.Fatalf("empty stats: %d %v %v", n, ts, err)
	}
	if _, err := svc.Create(ctx, "", "topic", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	n, ts, err = svc.Stats(ctx)
	if err != nil || n != 1 || ts == nil {
		t.Fatalf("stats: %d %v %v", n, ts, err)
	}
}

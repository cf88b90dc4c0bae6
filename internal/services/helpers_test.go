package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-certified-backend/internal/artifacts"
	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/keys"
	"github.com/tbourn/go-certified-backend/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection keeps shared-cache sqlite from reporting table locks
	// when publishers run concurrently.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// itemRepo adapts the repo package functions to ItemRepo.
type itemRepo struct{}

func (itemRepo) CreateItem(ctx context.Context, db *gorm.DB, title, topic string, sourceURL *string) (*domain.Item, error) {
	return repo.CreateItem(ctx, db, title, topic, sourceURL)
}
func (itemRepo) GetItem(ctx context.Context, db *gorm.DB, id string) (*domain.Item, error) {
	return repo.GetItem(ctx, db, id)
}
func (itemRepo) CountItems(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountItems(ctx, db)
}
func (itemRepo) ListItemsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Item, error) {
	return repo.ListItemsPage(ctx, db, offset, limit)
}
func (itemRepo) SetItemLock(ctx context.Context, db *gorm.DB, id string, lock domain.Lock, planJSON, notes string) error {
	return repo.SetItemLock(ctx, db, id, lock, planJSON, notes)
}

func (itemRepo) ItemsStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error) {
	return repo.ItemsStats(ctx, db)
}

func newTestKeys(t *testing.T) *keys.KeyStore {
	t.Helper()
	ks := keys.NewKeyStore(keys.Config{Mode: keys.ModeTest})
	if _, err := ks.Load(); err != nil {
		t.Fatalf("load keys: %v", err)
	}
	return ks
}

func newTestStore(t *testing.T) *artifacts.FSStore {
	t.Helper()
	st, err := artifacts.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	return st
}

func draft(title string, ids ...string) domain.PlanDraft {
	p := domain.PlanDraft{Title: title, Items: []domain.PlanItem{}}
	for _, id := range ids {
		p.Items = append(p.Items, domain.PlanItem{ID: id, Type: domain.ItemTypeCard, Front: "front " + id, Back: "back " + id})
	}
	return p
}

// pipeline bundles the services of one test database.
type pipeline struct {
	db      *gorm.DB
	store   *artifacts.FSStore
	keys    *keys.KeyStore
	audit   *AuditLog
	items   *ItemService
	plans   *PlanService
	publish *PublishService
	verify  *VerifyService
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	db := newSvcDB(t)
	st := newTestStore(t)
	ks := newTestKeys(t)
	audit := NewAuditLog(50)
	return &pipeline{
		db:      db,
		store:   st,
		keys:    ks,
		audit:   audit,
		items:   NewItemService(db, itemRepo{}),
		plans:   NewPlanService(db, itemRepo{}, stubRunner{}, stubChecker{}, audit),
		publish: NewPublishService(db, st, ks, audit),
		verify:  NewVerifyService(db, st, ks, audit),
	}
}

// lockedItem creates an item and locks it to plan.
func (p *pipeline) lockedItem(t *testing.T, plan domain.PlanDraft) *domain.Item {
	t.Helper()
	src := "https://example.org/source"
	it, err := p.items.Create(context.Background(), "Item", "Topic", &src)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, it, err = p.plans.LockPlan(context.Background(), it.ID, plan); err != nil {
		t.Fatalf("lock plan: %v", err)
	}
	return it
}

type stubRunner struct {
	results []domain.ProposerResult
}

func (r stubRunner) Run(context.Context, domain.PlannerInput) []domain.ProposerResult {
	return r.results
}
func (r stubRunner) Engines() []string {
	out := make([]string, 0, len(r.results))
	for _, res := range r.results {
		out = append(out, res.Engine)
	}
	return out
}

type stubChecker struct{}

// Check picks the first valid proposal without scoring.
func (stubChecker) Check(_ context.Context, in domain.PlannerInput, ps []domain.ProposerResult) domain.CheckerDecision {
	for _, p := range ps {
		if domain.ValidDraft(p.PlanDraft) {
			return domain.CheckerDecision{
				FinalPlan:      p.PlanDraft,
				DecisionNotes:  "selected:" + p.Engine,
				UsedCitations:  p.Citations,
				SelectedEngine: p.Engine,
			}
		}
	}
	return domain.CheckerDecision{
		FinalPlan:     domain.PlanDraft{Title: "Plan: " + in.Topic, Items: []domain.PlanItem{}},
		DecisionNotes: "no_valid_proposals",
		UsedCitations: []domain.Citation{},
	}
}

// fixedClock returns successive instants one millisecond apart.
func fixedClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Millisecond)
	}
}

// Package services – PlanService
//
// PlanService drives the planning half of the pipeline: it fans out to the
// configured proposers, lets the checker pick a draft, and computes the lock
// of the selected plan. Locks can be attached to items either from a
// pipeline run or from an explicitly supplied plan.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-certified-backend/internal/canon"
	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/observability"
	"github.com/tbourn/go-certified-backend/internal/planner"
)

// manualLockNotes is recorded when a lock comes from an explicit plan.
const manualLockNotes = "manual_lock"

// ProposalRunner runs every configured proposer for one input.
type ProposalRunner interface {
	Run(ctx context.Context, in domain.PlannerInput) []domain.ProposerResult
	Engines() []string
}

// PlanChecker selects one draft among proposals.
type PlanChecker interface {
	Check(ctx context.Context, in domain.PlannerInput, proposals []domain.ProposerResult) domain.CheckerDecision
}

// PlanResult is the outcome of a pipeline run. Lock is zero when the
// checker found no valid proposals.
type PlanResult struct {
	Decision domain.CheckerDecision `json:"decision"`
	Lock     domain.Lock            `json:"lock"`
}

// PlanService plans and locks content.
type PlanService struct {
	DB      *gorm.DB
	Items   ItemRepo
	Runner  ProposalRunner
	Checker PlanChecker
	Audit   *AuditLog
	Log     zerolog.Logger
}

// NewPlanService wires a PlanService.
func NewPlanService(db *gorm.DB, items ItemRepo, runner ProposalRunner, checker PlanChecker, audit *AuditLog) *PlanService {
	return &PlanService{
		DB:      db,
		Items:   items,
		Runner:  runner,
		Checker: checker,
		Audit:   audit,
		Log:     log.With().Str("service", "PlanService").Logger(),
	}
}

// Plan runs proposers, the checker, and lock computation without touching
// storage. On ErrNoValidProposals the returned result still carries the
// decision so callers can surface its notes.
func (s *PlanService) Plan(ctx context.Context, in domain.PlannerInput) (*PlanResult, error) {
	ctx, span := observability.StartStage(ctx, "plan", attribute.String("plan.topic", in.Topic))
	defer span.End()

	if err := planner.ValidateInput(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	proposals := s.Runner.Run(ctx, in)
	dec := s.Checker.Check(ctx, in, proposals)
	entry := AuditEntry{
		Action:         AuditPlan,
		Engines:        s.Runner.Engines(),
		CitationsCount: len(dec.UsedCitations),
	}
	if dec.DecisionNotes == planner.NotesNoValidProposals {
		entry.Reason = planner.NotesNoValidProposals
		s.Audit.Record(ctx, entry)
		return &PlanResult{Decision: dec}, ErrNoValidProposals
	}

	lock, err := canon.ComputeLock(dec.FinalPlan)
	if err != nil {
		return nil, err
	}
	entry.OK = true
	entry.LockAlgo = lock.Algo
	entry.LockHashPrefix = lock.Hash
	s.Audit.Record(ctx, entry)

	span.SetAttributes(
		attribute.String("plan.engine", dec.SelectedEngine),
		attribute.String("plan.lock", lock.Hash),
	)
	s.Log.Debug().Str("engine", dec.SelectedEngine).Str("lock", lock.Hash).Msg("plan selected")
	return &PlanResult{Decision: dec, Lock: lock}, nil
}

// PlanItem runs the pipeline for an item's topic and locks the item to the
// selected plan. The item is left untouched when no proposal is valid.
func (s *PlanService) PlanItem(ctx context.Context, itemID string, level domain.Level, goals []string) (*PlanResult, *domain.Item, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}

	res, err := s.Plan(ctx, domain.PlannerInput{Topic: item.Topic, Level: level, Goals: goals})
	if err != nil {
		return res, nil, err
	}

	item, err = s.lock(ctx, item.ID, res.Lock, res.Decision.FinalPlan, res.Decision.DecisionNotes)
	if err != nil {
		return nil, nil, err
	}
	return res, item, nil
}

// LockPlan locks an item to an explicitly supplied plan.
func (s *PlanService) LockPlan(ctx context.Context, itemID string, plan domain.PlanDraft) (domain.Lock, *domain.Item, error) {
	ctx, span := observability.StartStage(ctx, "lock", attribute.String("item.id", itemID))
	defer span.End()

	if !domain.ValidDraft(plan) {
		return domain.Lock{}, nil, ErrInvalidPlan
	}
	if _, err := s.getItem(ctx, itemID); err != nil {
		return domain.Lock{}, nil, err
	}
	lock, err := canon.ComputeLock(plan)
	if errors.Is(err, canon.ErrInvalidUTF8) {
		return domain.Lock{}, nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if err != nil {
		return domain.Lock{}, nil, err
	}
	item, err := s.lock(ctx, itemID, lock, plan, manualLockNotes)
	if err != nil {
		return domain.Lock{}, nil, err
	}
	return lock, item, nil
}

func (s *PlanService) lock(ctx context.Context, itemID string, lock domain.Lock, plan domain.PlanDraft, notes string) (*domain.Item, error) {
	planJSON, err := canon.Canonicalize(plan)
	if err != nil {
		return nil, err
	}
	if err := s.Items.SetItemLock(ctx, s.DB, itemID, lock, planJSON, notes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	s.Audit.Record(ctx, AuditEntry{
		Action:         AuditLock,
		ItemID:         itemID,
		LockAlgo:       lock.Algo,
		LockHashPrefix: lock.Hash,
		OK:             true,
	})
	return s.getItem(ctx, itemID)
}

func (s *PlanService) getItem(ctx context.Context, id string) (*domain.Item, error) {
	it, err := s.Items.GetItem(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return it, nil
}

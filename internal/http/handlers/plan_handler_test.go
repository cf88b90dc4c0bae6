package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/services"
)

func samplePlan() domain.PlanDraft {
	return domain.PlanDraft{
		Title: "Photosynthesis",
		Items: []domain.PlanItem{{ID: "c1", Type: domain.ItemTypeCard, Front: "f", Back: "b"}},
	}
}

func sampleResult() *services.PlanResult {
	return &services.PlanResult{
		Decision: domain.CheckerDecision{
			FinalPlan:      samplePlan(),
			DecisionNotes:  "selected:template-v0",
			SelectedEngine: "template-v0",
			UsedCitations:  []domain.Citation{{ID: "s1", URL: "https://example.org"}},
		},
		Lock: domain.Lock{Algo: domain.LockAlgoSHA256, Hash: "ab"},
	}
}

func TestRunPlan(t *testing.T) {
	var got domain.PlannerInput
	h := New(Deps{Plans: stubPlans{plan: func(_ context.Context, in domain.PlannerInput) (*services.PlanResult, error) {
		got = in
		return sampleResult(), nil
	}}})
	r := newTestEngine(h)

	w := doJSON(t, r, http.MethodPost, "/certified/plan", map[string]any{"topic": "Photosynthesis", "level": "beginner"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
	if got.Topic != "Photosynthesis" || got.Level != domain.LevelBeginner {
		t.Fatalf("input=%+v", got)
	}
	var resp PlanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Lock.Hash != "ab" || resp.SelectedEngine != "template-v0" || len(resp.Citations) != 1 || resp.Item != nil {
		t.Fatalf("resp=%+v", resp)
	}

	if w := doJSON(t, r, http.MethodPost, "/certified/plan", "nope", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json: %d", w.Code)
	}
}

func TestRunPlan_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		res      *services.PlanResult
		err      error
		wantCode int
		wantErr  string
		wantMsg  string
	}{
		{"invalid input", nil, services.ErrInvalidInput, http.StatusBadRequest, ErrCodeBadRequest, ""},
		{"no valid proposals", &services.PlanResult{Decision: domain.CheckerDecision{DecisionNotes: "no_valid_proposals"}},
			services.ErrNoValidProposals, http.StatusUnprocessableEntity, ErrCodeNoValidProposals, "no_valid_proposals"},
		{"no valid proposals without notes", nil, services.ErrNoValidProposals, http.StatusUnprocessableEntity,
			ErrCodeNoValidProposals, "no proposer produced a valid plan"},
		{"internal", nil, errBoom, http.StatusInternalServerError, ErrCodeInternal, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New(Deps{Plans: stubPlans{plan: func(context.Context, domain.PlannerInput) (*services.PlanResult, error) {
				return tc.res, tc.err
			}}})
			w := doJSON(t, newTestEngine(h), http.MethodPost, "/certified/plan", map[string]any{"topic": "x"}, nil)
			if w.Code != tc.wantCode {
				t.Fatalf("code=%d want %d", w.Code, tc.wantCode)
			}
			e := decodeErr(t, w)
			if e.Code != tc.wantErr {
				t.Fatalf("err code=%q want %q", e.Code, tc.wantErr)
			}
			if tc.wantMsg != "" && e.Message != tc.wantMsg {
				t.Fatalf("message=%q want %q", e.Message, tc.wantMsg)
			}
		})
	}
}

func TestPlanItem(t *testing.T) {
	var gotLevel domain.Level
	var gotGoals []string
	h := New(Deps{Plans: stubPlans{planItem: func(_ context.Context, id string, level domain.Level, goals []string) (*services.PlanResult, *domain.Item, error) {
		if id == "missing" {
			return nil, nil, services.ErrItemNotFound
		}
		gotLevel, gotGoals = level, goals
		return sampleResult(), &domain.Item{ID: id, Status: domain.ItemLocked}, nil
	}}})
	r := newTestEngine(h)

	t.Run("empty body is allowed", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/admin/items/it-1/plan", nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
		}
		var resp PlanResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Item == nil || resp.Item.Status != domain.ItemLocked {
			t.Fatalf("item=%+v", resp.Item)
		}
	})

	t.Run("level and goals forwarded", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/admin/items/it-1/plan", map[string]any{"level": "advanced", "goals": []string{"g"}}, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("code=%d", w.Code)
		}
		if gotLevel != domain.LevelAdvanced || len(gotGoals) != 1 {
			t.Fatalf("level=%q goals=%v", gotLevel, gotGoals)
		}
	})

	t.Run("not found", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/admin/items/missing/plan", nil, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("code=%d", w.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/admin/items/it-1/plan", "{", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("code=%d", w.Code)
		}
	})
}

func TestLockPlan(t *testing.T) {
	h := New(Deps{Plans: stubPlans{lockPlan: func(_ context.Context, id string, p domain.PlanDraft) (domain.Lock, *domain.Item, error) {
		switch {
		case id == "missing":
			return domain.Lock{}, nil, services.ErrItemNotFound
		case len(p.Items) == 0:
			return domain.Lock{}, nil, services.ErrInvalidPlan
		}
		return domain.Lock{Algo: domain.LockAlgoSHA256, Hash: "cd"}, &domain.Item{ID: id, Status: domain.ItemLocked}, nil
	}}})
	r := newTestEngine(h)

	w := doJSON(t, r, http.MethodPut, "/admin/items/it-1/lock", LockPlanRequest{Plan: samplePlan()}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
	var resp LockPlanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Lock.Hash != "cd" || resp.Item.ID != "it-1" {
		t.Fatalf("resp=%+v err=%v", resp, err)
	}

	w = doJSON(t, r, http.MethodPut, "/admin/items/it-1/lock", LockPlanRequest{Plan: domain.PlanDraft{Title: "t"}}, nil)
	if w.Code != http.StatusBadRequest || decodeErr(t, w).Code != ErrCodeInvalidPlan {
		t.Fatalf("invalid plan: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, "/admin/items/missing/lock", LockPlanRequest{Plan: samplePlan()}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing: %d", w.Code)
	}
}

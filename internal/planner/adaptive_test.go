package planner

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/tbourn/go-certified-backend/internal/domain"
)

func fronts(p domain.PlanDraft) []string {
	out := make([]string, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.Front
	}
	return out
}

func TestFNV1a_KnownVectors(t *testing.T) {
	if got := fnv1a(""); got != 2166136261 {
		t.Fatalf("fnv1a(\"\") = %d", got)
	}
	if got := fnv1a("a"); got != 0xe40c292c {
		t.Fatalf("fnv1a(\"a\") = %#x", got)
	}
}

func TestAdaptiveV1_BeginnerOrdering(t *testing.T) {
	res, err := AdaptiveV1{}.Propose(context.Background(), domain.PlannerInput{Topic: "Photosynthesis"})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	want := []string{
		"Photosynthesis: Foundations",
		"Photosynthesis: Pitfalls",
		"Photosynthesis: Worked Example",
		"Photosynthesis: Review & Practice",
		"Photosynthesis: Core Concepts",
	}
	if got := fronts(res.PlanDraft); !reflect.DeepEqual(got, want) {
		t.Fatalf("fronts = %v", got)
	}
	if res.PlanDraft.Items[0].ID != "adv1-e15-1" || res.PlanDraft.Items[4].ID != "adv1-e15-5" {
		t.Fatalf("ids = %s..%s", res.PlanDraft.Items[0].ID, res.PlanDraft.Items[4].ID)
	}
	if res.PlanDraft.Title != "Adaptive Plan: Photosynthesis" || res.Engine != EngineAdaptiveV1 {
		t.Fatalf("result = %+v", res)
	}
	if res.PlanDraft.Items[0].Back != "Key points for foundations." {
		t.Fatalf("back = %q", res.PlanDraft.Items[0].Back)
	}
	if !domain.ValidDraft(res.PlanDraft) {
		t.Fatalf("draft not lockable")
	}
}

func TestAdaptiveV1_AdvancedKeepsShuffle(t *testing.T) {
	res, _ := AdaptiveV1{}.Propose(context.Background(), domain.PlannerInput{Topic: "Photosynthesis", Level: domain.LevelAdvanced})
	want := []string{
		"Photosynthesis: Worked Example",
		"Photosynthesis: Foundations",
		"Photosynthesis: Core Concepts",
		"Photosynthesis: Review & Practice",
		"Photosynthesis: Applications",
	}
	if got := fronts(res.PlanDraft); !reflect.DeepEqual(got, want) {
		t.Fatalf("fronts = %v", got)
	}
	if !strings.HasPrefix(res.PlanDraft.Items[0].ID, "adv1-b8-") {
		t.Fatalf("id = %s", res.PlanDraft.Items[0].ID)
	}
}

func TestAdaptiveV1_MemoryGoalPullsReviewForward(t *testing.T) {
	res, _ := AdaptiveV1{}.Propose(context.Background(), domain.PlannerInput{Topic: "Cells", Goals: []string{"Memory"}})
	got := fronts(res.PlanDraft)
	if got[0] != "Cells: Foundations" || got[1] != "Cells: Review & Practice" {
		t.Fatalf("fronts = %v", got)
	}
}

func TestAdaptiveV1_Deterministic(t *testing.T) {
	in := domain.PlannerInput{Topic: "Graphs", Level: domain.LevelIntermediate, Goals: []string{"proofs"}}
	a, _ := AdaptiveV1{}.Propose(context.Background(), in)
	b, _ := AdaptiveV1{}.Propose(context.Background(), in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("non-deterministic output")
	}
}

func TestAdaptiveV1_EmptyTopic(t *testing.T) {
	if _, err := (AdaptiveV1{}).Propose(context.Background(), domain.PlannerInput{Topic: "  "}); err == nil {
		t.Fatalf("expected error for blank topic")
	}
}

func TestTemplateV0_Shape(t *testing.T) {
	res, err := TemplateV0{}.Propose(context.Background(), domain.PlannerInput{Topic: "Tides", Goals: []string{"gravity"}})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if res.PlanDraft.Title != "Plan: Tides" || len(res.PlanDraft.Items) != 5 || !domain.ValidDraft(res.PlanDraft) {
		t.Fatalf("draft = %+v", res.PlanDraft)
	}
	if !strings.Contains(res.PlanDraft.Items[2].Back, "gravity") {
		t.Fatalf("goal not reflected: %q", res.PlanDraft.Items[2].Back)
	}
	if _, err := (TemplateV0{}).Propose(context.Background(), domain.PlannerInput{}); err == nil {
		t.Fatalf("expected error for blank topic")
	}
}

package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbourn/go-certified-backend/internal/domain"
)

// EngineTemplateV0 is the name of the fixed-outline proposer.
const EngineTemplateV0 = "template-v0"

// TemplateV0 emits the same five-card outline for every topic.
type TemplateV0 struct{}

func (TemplateV0) Name() string { return EngineTemplateV0 }

func (TemplateV0) Propose(_ context.Context, in domain.PlannerInput) (domain.ProposerResult, error) {
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		return domain.ProposerResult{}, fmt.Errorf("empty topic")
	}

	focus := "the central mechanism"
	if len(in.Goals) > 0 {
		focus = strings.Join(in.Goals, ", ")
	}
	cards := []struct{ front, back string }{
		{"Overview", "What " + topic + " is and where it shows up."},
		{"Key Terms", "The vocabulary needed to discuss " + topic + "."},
		{"Core Idea", "How " + topic + " works, with attention to " + focus + "."},
		{"Check Your Understanding", "Explain " + topic + " in your own words."},
		{"Review", "Summarize the main points of " + topic + "."},
	}
	items := make([]domain.PlanItem, 0, len(cards))
	for i, c := range cards {
		items = append(items, domain.PlanItem{
			ID:    fmt.Sprintf("tpl0-%d", i+1),
			Type:  domain.ItemTypeCard,
			Front: topic + ": " + c.front,
			Back:  c.back,
		})
	}
	return domain.ProposerResult{
		PlanDraft: domain.PlanDraft{Title: "Plan: " + topic, Items: items},
		Citations: []domain.Citation{},
		Rationale: "fixed outline: overview, key terms, core idea, self-check, review",
		Engine:    EngineTemplateV0,
	}, nil
}

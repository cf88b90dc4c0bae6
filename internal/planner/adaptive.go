package planner

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/tbourn/go-certified-backend/internal/domain"
)

// EngineAdaptiveV1 is the name of the rule-based adaptive proposer.
const EngineAdaptiveV1 = "adaptive-v1"

var adaptiveSections = []string{
	"Foundations", "Core Concepts", "Applications", "Worked Example", "Pitfalls", "Review & Practice",
}

// AdaptiveV1 shuffles a fixed set of sections with a seed derived from the
// input, so identical inputs always yield identical drafts.
type AdaptiveV1 struct{}

func (AdaptiveV1) Name() string { return EngineAdaptiveV1 }

func (AdaptiveV1) Propose(_ context.Context, in domain.PlannerInput) (domain.ProposerResult, error) {
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		return domain.ProposerResult{}, fmt.Errorf("empty topic")
	}
	level := in.Level
	if level == "" {
		level = domain.LevelBeginner
	}
	goals := make([]string, len(in.Goals))
	for i, g := range in.Goals {
		goals[i] = strings.ToLower(g)
	}

	seed := fnv1a(topic + "|" + string(level) + "|" + strings.Join(goals, ","))
	titles := shuffle(seed, adaptiveSections)
	if level == domain.LevelBeginner {
		titles = beginnerOrder(titles, contains(goals, "memory"))
	}

	items := make([]domain.PlanItem, 0, 5)
	for i, t := range titles[:5] {
		items = append(items, domain.PlanItem{
			ID:    fmt.Sprintf("adv1-%x-%d", seed%10007, i+1),
			Type:  domain.ItemTypeCard,
			Front: topic + ": " + t,
			Back:  "Key points for " + strings.ToLower(t) + ".",
		})
	}
	return domain.ProposerResult{
		PlanDraft: domain.PlanDraft{Title: "Adaptive Plan: " + topic, Items: items},
		Citations: []domain.Citation{},
		Rationale: "proposed by " + EngineAdaptiveV1,
		Engine:    EngineAdaptiveV1,
	}, nil
}

// fnv1a hashes the UTF-16 code units of s with 32-bit FNV-1a.
func fnv1a(s string) uint32 {
	h := uint32(2166136261)
	for _, u := range utf16.Encode([]rune(s)) {
		h ^= uint32(u)
		h *= 16777619
	}
	return h
}

// shuffle is a seeded Fisher-Yates over a copy of in.
func shuffle(seed uint32, in []string) []string {
	a := append([]string(nil), in...)
	for i := len(a) - 1; i > 0; i-- {
		seed = (seed ^ 0x9e3779b9) * 0x85ebca6b
		j := int(seed % uint32(i+1))
		a[i], a[j] = a[j], a[i]
	}
	return a
}

// beginnerOrder moves Foundations to the front, followed by Review & Practice
// when the learner asked for memory work. The rest keep their shuffled order.
func beginnerOrder(titles []string, memory bool) []string {
	out := make([]string, 0, len(titles))
	out = append(out, "Foundations")
	if memory {
		out = append(out, "Review & Practice")
	}
	for _, t := range titles {
		if t == "Foundations" || (memory && t == "Review & Practice") {
			continue
		}
		out = append(out, t)
	}
	return out
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}

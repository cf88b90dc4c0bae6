package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"

	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/observability"
)

// NotesNoValidProposals is the decision note when nothing survives the
// sanity filter.
const NotesNoValidProposals = "no_valid_proposals"

// CitationValidator probes a proposal's citations.
type CitationValidator interface {
	Validate(ctx context.Context, cits []domain.Citation) domain.CitationReport
}

// Checker scores proposals and deterministically selects one.
type Checker struct {
	validator CitationValidator
}

// NewChecker builds a Checker. A nil validator scores every citation as
// unreachable.
func NewChecker(v CitationValidator) *Checker {
	return &Checker{validator: v}
}

// Check scores every proposal with a usable draft as
//
//	2*reachable citations + title overlap + item overlap + min(5, len(rationale)/80)
//
// and selects the highest total. Ties go to the earlier proposal.
func (c *Checker) Check(ctx context.Context, in domain.PlannerInput, proposals []domain.ProposerResult) domain.CheckerDecision {
	ctx, span := observability.StartStage(ctx, "check", attribute.Int("proposals", len(proposals)))
	defer span.End()

	safe := make([]domain.ProposerResult, 0, len(proposals))
	for _, p := range proposals {
		if domain.ValidDraft(p.PlanDraft) {
			safe = append(safe, p)
		}
	}
	if len(safe) == 0 {
		observability.CheckerDecisions.WithLabelValues(NotesNoValidProposals).Inc()
		return domain.CheckerDecision{
			FinalPlan:      domain.PlanDraft{Title: "Plan: " + in.Topic, Items: []domain.PlanItem{}},
			DecisionNotes:  NotesNoValidProposals,
			UsedCitations:  []domain.Citation{},
			Scores:         []domain.ProposalScore{},
			CitationReport: domain.CitationReport{Checks: []domain.CitationCheck{}},
		}
	}

	type scored struct {
		p      domain.ProposerResult
		score  domain.ProposalScore
		report domain.CitationReport
	}
	rows := make([]scored, 0, len(safe))
	// A Caser carries state and must not be shared across goroutines.
	fold := cases.Fold()
	titleTerms := terms(fold, "Plan: "+in.Topic)
	topicTerms := terms(fold, in.Topic)
	for _, p := range safe {
		rep := domain.CitationReport{Total: len(p.Citations), Checks: []domain.CitationCheck{}}
		if c.validator != nil && len(p.Citations) > 0 {
			rep = c.validator.Validate(ctx, p.Citations)
		}
		fronts := make([]string, len(p.PlanDraft.Items))
		for i, it := range p.PlanDraft.Items {
			fronts[i] = it.Front
		}
		s := domain.ProposalScore{
			Engine:         p.Engine,
			Reachable:      rep.Reachable,
			TitleOverlap:   overlap(fold, titleTerms, p.PlanDraft.Title),
			ItemOverlap:    overlap(fold, topicTerms, strings.Join(fronts, " \n ")),
			RationaleScore: min(5, utf16Len(p.Rationale)/80),
		}
		s.Total = 2*s.Reachable + s.TitleOverlap + s.ItemOverlap + s.RationaleScore
		rows = append(rows, scored{p: p, score: s, report: rep})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].score.Total > rows[j].score.Total })

	best := rows[0]
	scores := make([]domain.ProposalScore, len(rows))
	table := make([]string, len(rows))
	for i, r := range rows {
		scores[i] = r.score
		table[i] = fmt.Sprintf("%s:%d", r.score.Engine, r.score.Total)
	}
	used := best.p.Citations
	if used == nil {
		used = []domain.Citation{}
	}

	observability.CheckerDecisions.WithLabelValues("selected").Inc()
	span.SetAttributes(attribute.String("selected_engine", best.p.Engine))
	return domain.CheckerDecision{
		FinalPlan:      best.p.PlanDraft,
		DecisionNotes:  fmt.Sprintf("selected:%s;scores:%s", best.p.Engine, strings.Join(table, ",")),
		UsedCitations:  used,
		SelectedEngine: best.p.Engine,
		Scores:         scores,
		CitationReport: best.report,
	}
}

// terms case-folds s, splits on anything that is not a letter or digit, and
// keeps the distinct tokens longer than three runes.
func terms(fold cases.Caser, s string) []string {
	fields := strings.FieldsFunc(fold.String(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) <= 3 {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// overlap counts terms contained in the case-folded text.
func overlap(fold cases.Caser, terms []string, text string) int {
	if len(terms) == 0 || text == "" {
		return 0
	}
	folded := fold.String(text)
	n := 0
	for _, t := range terms {
		if strings.Contains(folded, t) {
			n++
		}
	}
	return n
}

// utf16Len counts UTF-16 code units, so characters outside the BMP weigh
// two toward the rationale score.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

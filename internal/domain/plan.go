package domain

// Level is the learner level a plan is generated for.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// ItemTypeCard is the only plan item type currently produced.
const ItemTypeCard = "card"

// LockAlgoSHA256 is the algorithm tag recorded on every lock.
const LockAlgoSHA256 = "sha256"

// PlannerInput is the request every proposer receives.
type PlannerInput struct {
	Topic string   `json:"topic" validate:"required,max=200" example:"Photosynthesis"`
	Level Level    `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced" example:"beginner"`
	Goals []string `json:"goals,omitempty" validate:"max=10,dive,max=120"`
}

// PlanItem is a single card in a plan.
type PlanItem struct {
	ID    string `json:"id" validate:"required,max=128"`
	Type  string `json:"type" validate:"required,eq=card"`
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

// PlanDraft is a candidate (or final) learning plan.
type PlanDraft struct {
	Title string     `json:"title" validate:"required"`
	Items []PlanItem `json:"items" validate:"dive"`
}

// Citation is a source a proposer claims for its draft.
type Citation struct {
	ID    string `json:"id" validate:"required"`
	URL   string `json:"url" validate:"required"`
	Title string `json:"title,omitempty"`
}

// ProposerResult is one proposer's complete output for one request.
type ProposerResult struct {
	PlanDraft PlanDraft  `json:"planDraft"`
	Citations []Citation `json:"citations" validate:"dive"`
	Rationale string     `json:"rationale"`
	Engine    string     `json:"engine"`
}

// CitationCheck is the probe outcome for a single citation.
type CitationCheck struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Reachable   bool   `json:"reachable"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	HashPrefix  string `json:"hashPrefix,omitempty"`
	Error       string `json:"error,omitempty"`
}

// CitationReport aggregates the checks for one citation list.
type CitationReport struct {
	Total     int             `json:"total"`
	Reachable int             `json:"reachable"`
	Checks    []CitationCheck `json:"checks"`
}

// ProposalScore is one row of the checker's score table.
type ProposalScore struct {
	Engine         string `json:"engine"`
	Total          int    `json:"total"`
	Reachable      int    `json:"reachable"`
	TitleOverlap   int    `json:"titleOverlap"`
	ItemOverlap    int    `json:"itemOverlap"`
	RationaleScore int    `json:"rationaleScore"`
}

// CheckerDecision is the outcome of scoring and selecting among proposals.
type CheckerDecision struct {
	FinalPlan      PlanDraft       `json:"finalPlan"`
	DecisionNotes  string          `json:"decisionNotes"`
	UsedCitations  []Citation      `json:"usedCitations"`
	SelectedEngine string          `json:"selectedEngine,omitempty"`
	Scores         []ProposalScore `json:"scores,omitempty"`
	CitationReport CitationReport  `json:"citationReport"`
}

// Lock is the content-addressable identity of a finalized plan.
type Lock struct {
	Algo string `json:"algo" validate:"required,eq=sha256"`
	Hash string `json:"hash" validate:"required,len=64,hexadecimal"`
}

// ValidDraft reports whether a plan can be locked: at least one item, every
// item a card, and ids unique within the draft.
func ValidDraft(p PlanDraft) bool {
	if len(p.Items) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(p.Items))
	for _, it := range p.Items {
		if it.ID == "" || it.Type != ItemTypeCard {
			return false
		}
		if _, dup := seen[it.ID]; dup {
			return false
		}
		seen[it.ID] = struct{}{}
	}
	return true
}

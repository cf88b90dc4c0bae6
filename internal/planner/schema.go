package planner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-certified-backend/internal/domain"
)

// ErrInvalidProposal wraps every failure to decode proposer output.
var ErrInvalidProposal = errors.New("invalid proposal")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateInput checks a planner request against its schema.
func ValidateInput(in domain.PlannerInput) error {
	return validate.Struct(in)
}

// ParseProposal strictly decodes raw proposer output. Unknown fields,
// trailing data, and schema violations are rejected; the engine name is
// always taken from the caller.
func ParseProposal(raw []byte, engine string) (domain.ProposerResult, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var res domain.ProposerResult
	if err := dec.Decode(&res); err != nil {
		return domain.ProposerResult{}, fmt.Errorf("%w: %v", ErrInvalidProposal, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.ProposerResult{}, fmt.Errorf("%w: trailing data", ErrInvalidProposal)
	}
	if err := validate.Struct(res); err != nil {
		return domain.ProposerResult{}, fmt.Errorf("%w: %v", ErrInvalidProposal, err)
	}

	res.Engine = engine
	if res.PlanDraft.Items == nil {
		res.PlanDraft.Items = []domain.PlanItem{}
	}
	if res.Citations == nil {
		res.Citations = []domain.Citation{}
	}
	return res, nil
}

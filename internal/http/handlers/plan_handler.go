// Plan HTTP handlers.
//
// This file exposes the planning half of the pipeline:
//   - POST /certified/plan             (stateless run: proposers, checker, lock)
//   - POST /admin/items/{id}/plan      (run for an item and lock it)
//   - PUT  /admin/items/{id}/lock      (lock an explicitly supplied plan)
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/services"
)

// PlanItemRequest optionally tunes an item pipeline run.
type PlanItemRequest struct {
	Level domain.Level `json:"level" example:"beginner"`
	Goals []string     `json:"goals" example:"memory"`
}

// LockPlanRequest carries the plan to lock.
type LockPlanRequest struct {
	Plan domain.PlanDraft `json:"plan"`
}

// PlanResponse is the outcome of a pipeline run.
type PlanResponse struct {
	Plan           domain.PlanDraft       `json:"plan"`
	Lock           domain.Lock            `json:"lock"`
	DecisionNotes  string                 `json:"decisionNotes" example:"selected:template-v0;scores:template-v0:9,adaptive-v1:7"`
	SelectedEngine string                 `json:"selectedEngine,omitempty" example:"template-v0"`
	Citations      []domain.Citation      `json:"citations"`
	Report         domain.CitationReport  `json:"report"`
	Scores         []domain.ProposalScore `json:"scores"`
	Item           *domain.Item           `json:"item,omitempty"`
}

// LockPlanResponse is returned after an explicit lock.
type LockPlanResponse struct {
	Lock domain.Lock  `json:"lock"`
	Item *domain.Item `json:"item"`
}

func planResponse(res *services.PlanResult, item *domain.Item) PlanResponse {
	d := res.Decision
	return PlanResponse{
		Plan:           d.FinalPlan,
		Lock:           res.Lock,
		DecisionNotes:  d.DecisionNotes,
		SelectedEngine: d.SelectedEngine,
		Citations:      d.UsedCitations,
		Report:         d.CitationReport,
		Scores:         d.Scores,
		Item:           item,
	}
}

// RunPlan godoc
// @ID          runPlan
// @Summary     Run the certified planning pipeline
// @Description Runs every configured proposer, validates citations, selects one draft with the checker, and returns its lock. Nothing is stored.
// @Tags        Certified
// @Accept      json
// @Produce     json
//
// @Param       body  body  domain.PlannerInput  true  "Planner input"
//
// @Success     200  {object}  handlers.PlanResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid input"
// @Failure     422  {object}  handlers.ErrorResponse  "No proposer produced a valid plan"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /certified/plan [post]
func (h *Handlers) RunPlan(c *gin.Context) {
	var in domain.PlannerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	res, err := h.d.Plans.Plan(c.Request.Context(), in)
	if err != nil {
		h.planError(c, res, err)
		return
	}
	ok(c, http.StatusOK, planResponse(res, nil))
}

// PlanItem godoc
// @ID          planItem
// @Summary     Plan and lock an item
// @Description Runs the pipeline for the item's topic and locks the item to the selected plan. The item is unchanged when no proposal is valid.
// @Tags        Items
// @Accept      json
// @Produce     json
// @Security    AdminToken
//
// @Param       id    path  string                      true   "Item ID (UUID)"  format(uuid)
// @Param       body  body  handlers.PlanItemRequest    false  "Optional level and goals"
//
// @Success     200  {object}  handlers.PlanResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid input"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid admin token"
// @Failure     404  {object}  handlers.ErrorResponse  "Item not found"
// @Failure     422  {object}  handlers.ErrorResponse  "No proposer produced a valid plan"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/items/{id}/plan [post]
func (h *Handlers) PlanItem(c *gin.Context) {
	var req PlanItemRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	res, item, err := h.d.Plans.PlanItem(c.Request.Context(), c.Param("id"), req.Level, req.Goals)
	if err != nil {
		h.planError(c, res, err)
		return
	}
	ok(c, http.StatusOK, planResponse(res, item))
}

// LockPlan godoc
// @ID          lockPlan
// @Summary     Lock an item to a supplied plan
// @Description Validates the plan (at least one item, unique ids, type card), computes its lock, and stores it on the item.
// @Tags        Items
// @Accept      json
// @Produce     json
// @Security    AdminToken
//
// @Param       id    path  string                    true  "Item ID (UUID)"  format(uuid)
// @Param       body  body  handlers.LockPlanRequest  true  "Plan to lock"
//
// @Success     200  {object}  handlers.LockPlanResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid plan"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid admin token"
// @Failure     404  {object}  handlers.ErrorResponse  "Item not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/items/{id}/lock [put]
func (h *Handlers) LockPlan(c *gin.Context) {
	var req LockPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	lock, item, err := h.d.Plans.LockPlan(c.Request.Context(), c.Param("id"), req.Plan)
	if err != nil {
		h.planError(c, nil, err)
		return
	}
	ok(c, http.StatusOK, LockPlanResponse{Lock: lock, Item: item})
}

// planError maps PlanService failures.
func (h *Handlers) planError(c *gin.Context, res *services.PlanResult, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidPlan):
		fail(c, http.StatusBadRequest, ErrCodeInvalidPlan, "plan needs at least one card and unique item ids")
	case errors.Is(err, services.ErrItemNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "item not found")
	case errors.Is(err, services.ErrNoValidProposals):
		msg := "no proposer produced a valid plan"
		if res != nil && res.Decision.DecisionNotes != "" {
			msg = res.Decision.DecisionNotes
		}
		fail(c, http.StatusUnprocessableEntity, ErrCodeNoValidProposals, msg)
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

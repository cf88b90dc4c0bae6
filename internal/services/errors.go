// Package services holds the business logic of the certified content
// pipeline: item management, planning and locking, publishing, verification,
// and the audit trail.
//
// Expected negative outcomes of publish and verify are returned as tagged
// results; the errors below cover the remaining request-level failures and
// are translated into HTTP responses by the handler layer.
package services

import "errors"

var (
	// ErrItemNotFound indicates that the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrEmptyTopic is returned when an item is created without a topic.
	ErrEmptyTopic = errors.New("topic is empty")

	// ErrInvalidInput wraps planner input schema violations.
	ErrInvalidInput = errors.New("invalid planner input")

	// ErrNoValidProposals is returned when no proposer produced a usable
	// draft. It is terminal for the given input.
	ErrNoValidProposals = errors.New("no valid proposals")

	// ErrInvalidPlan is returned when an explicit plan cannot be locked.
	ErrInvalidPlan = errors.New("plan must have at least one card and unique item ids")

	// ErrArtifactNotFound indicates that no artifact record exists for an id.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrArtifactBodyMissing indicates that the record exists but its stored
	// body does not.
	ErrArtifactBodyMissing = errors.New("artifact body missing")

	// ErrInvalidArtifact is returned when an inline artifact is not a JSON
	// object.
	ErrInvalidArtifact = errors.New("artifact must be a JSON object")

	// ErrPublishContended is returned when the publish claim kept changing
	// hands across every retry.
	ErrPublishContended = errors.New("publish claim contended")
)

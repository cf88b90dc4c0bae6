package handlers

// Error codes carried in ErrorResponse.Code. Clients branch on these, not on
// the message.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Certify and publish outcomes a status code alone cannot distinguish.
	ErrCodeNoLockHash       = "no_lock_hash"
	ErrCodeNoValidProposals = "no_valid_proposals"
	ErrCodeAlreadyPublished = "already_published"
	ErrCodeFileNotFound     = "file_not_found"
	ErrCodeFeatureDisabled  = "feature_disabled"
	ErrCodeInvalidPlan      = "invalid_plan"
	ErrCodeInvalidArtifact  = "invalid_artifact"
)

package domain

// ArtifactVersion is the schema tag written into every certified artifact.
const ArtifactVersion = "cert.v1"

// Artifact is the signed cert.v1 document. SHA256 is omitted from the
// canonical form used to compute it, so the zero value drops out of JSON.
type Artifact struct {
	Version      string  `json:"version"`
	ArtifactID   string  `json:"artifactId"`
	ItemID       string  `json:"itemId"`
	SourceURL    *string `json:"sourceUrl"`
	LockHash     string  `json:"lockHash"`
	SHA256       string  `json:"sha256,omitempty"`
	CreatedAtISO string  `json:"createdAtISO"`
}

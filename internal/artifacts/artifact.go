// Package artifacts builds, signs, and stores cert.v1 artifacts.
package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tbourn/go-certified-backend/internal/canon"
	"github.com/tbourn/go-certified-backend/internal/domain"
)

// ISOLayout is the createdAtISO format: UTC with millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// ErrMalformedArtifact is returned when a stored or submitted body does not
// decode as a cert.v1 artifact.
var ErrMalformedArtifact = errors.New("malformed artifact")

// Signer produces a base64 signature over msg.
type Signer interface {
	Sign(msg []byte) (string, error)
}

// Signed is an artifact together with the exact bytes that were signed.
type Signed struct {
	Artifact  domain.Artifact
	Body      []byte // canonical JSON, as stored
	Signature string // base64 Ed25519 signature over Body
}

// Build assembles a cert.v1 artifact and fills in its content hash.
func Build(artifactID, itemID string, sourceURL *string, lockHash string, createdAt time.Time) (domain.Artifact, error) {
	a := domain.Artifact{
		Version:      domain.ArtifactVersion,
		ArtifactID:   artifactID,
		ItemID:       itemID,
		SourceURL:    sourceURL,
		LockHash:     lockHash,
		CreatedAtISO: createdAt.UTC().Format(ISOLayout),
	}
	sum, err := ContentHash(a)
	if err != nil {
		return domain.Artifact{}, err
	}
	a.SHA256 = sum
	return a, nil
}

// ContentHash is the sha256 of the artifact's canonical form with the
// sha256 field removed.
func ContentHash(a domain.Artifact) (string, error) {
	a.SHA256 = ""
	s, err := canon.Canonicalize(a)
	if err != nil {
		return "", err
	}
	return canon.SHA256Hex(s), nil
}

// Sign canonicalizes the full artifact and signs the result.
func Sign(a domain.Artifact, s Signer) (Signed, error) {
	body, err := canon.Canonicalize(a)
	if err != nil {
		return Signed{}, err
	}
	sig, err := s.Sign([]byte(body))
	if err != nil {
		return Signed{}, fmt.Errorf("sign artifact: %w", err)
	}
	return Signed{Artifact: a, Body: []byte(body), Signature: sig}, nil
}

// Decode parses a stored artifact body. Unknown fields are rejected so a
// body that gained fields after publish is not silently accepted.
func Decode(body []byte) (domain.Artifact, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	var a domain.Artifact
	if err := dec.Decode(&a); err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.Artifact{}, fmt.Errorf("%w: trailing data", ErrMalformedArtifact)
	}
	if a.Version != domain.ArtifactVersion {
		return domain.Artifact{}, fmt.Errorf("%w: version %q", ErrMalformedArtifact, a.Version)
	}
	return a, nil
}

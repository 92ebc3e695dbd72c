package models

import "time"

// ArtifactRecord is the stored form of a design.Artifact. Body holds the
// artifact JSON; the other columns exist for lookups and ownership checks.
type ArtifactRecord struct {
	ID          string
	UserID      string
	ParentID    *string
	Version     int
	Tier        string
	Fingerprint string
	Body        []byte
	CreatedAt   time.Time
}

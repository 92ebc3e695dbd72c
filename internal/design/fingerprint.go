package design

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes the visual content of a (colours, typography,
// components) with BLAKE2b-256. Identity fields and metadata are excluded, so
// two versions with the same look share a fingerprint.
func Fingerprint(a *Artifact) string {
	payload := struct {
		Colors     Colors      `json:"colors"`
		Typography Typography  `json:"typography"`
		Components []Component `json:"components"`
	}{a.Colors, a.Typography, a.Components}

	// maps marshal with sorted keys, so the encoding is canonical
	b, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// keyVersion is bumped whenever the cached report layout changes.
const keyVersion = "v1"

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Keyer derives cache keys.
type Keyer interface {
	// ReportKey returns the key of the report for an input with the given hash.
	ReportKey(inputHash string) string
}

// DefaultKeyer produces keys of the form "report:v1:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReportKey implements Keyer.
func (DefaultKeyer) ReportKey(inputHash string) string {
	return "report:" + keyVersion + ":" + inputHash
}

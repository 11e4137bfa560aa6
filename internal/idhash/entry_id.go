package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeEntryID computes a deterministic journal entry ID using SHA256.
// Formula: SHA256(date|plan_id|spot_usd with 2dp)
// Returns hex-encoded hash (64 characters).
func ComputeEntryID(date, planID string, spotUSD float64) string {
	data := fmt.Sprintf("%s|%s|%.2f", date, planID, spotUSD)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

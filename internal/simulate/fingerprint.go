package simulate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/avoca/mortgage-engine/internal/engine"
)

// Fingerprint derives a deterministic cache key from a simulation request.
// Two requests with identical inputs always hash identically, so repeated
// slider-style recalculations of the same scenario hit the result cache.
func Fingerprint(req engine.Request) string {
	data, err := json.Marshal(req)
	if err != nil {
		// Marshal of the request types cannot fail; an empty key just
		// bypasses the cache.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

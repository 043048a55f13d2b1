// Package hasher provides the digest function used to link and solve blocks.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Hash returns the SHA-256 digest of the specified inputs as 64 lowercase
// hex characters. Each input is reduced to its canonical JSON form and the
// forms are sorted before they are joined, so the same set of inputs always
// produces the same digest no matter the order they are passed in.
func Hash(inputs ...any) string {
	forms := make([]string, len(inputs))
	for i, input := range inputs {
		forms[i] = canonical(input)
	}
	sort.Strings(forms)

	hash := sha256.Sum256([]byte(strings.Join(forms, " ")))
	return hex.EncodeToString(hash[:])
}

// LeadingZeros returns the number of leading '0' characters in the hash.
func LeadingZeros(hash string) int {
	return len(hash) - len(strings.TrimLeft(hash, "0"))
}

// =============================================================================

// canonical returns the stable string form of a value. Values the json
// package can't represent fall back to their default format.
func canonical(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}

	return string(data)
}

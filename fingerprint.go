package tembang

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Params holds the normalized parameters of a logical operation.
type Params map[string]string

// Fingerprint derives the cache and deduplication key for an operation.
// Parameters are serialized in sorted key order, so two logically
// identical requests fingerprint the same regardless of map iteration or
// construction order.
func Fingerprint(operation string, params Params) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("op:")
	b.WriteString(operation)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Checksum hashes the canonical candidate payload. json.Marshal emits map
// keys in sorted order, so two payloads with the same fields produce the
// same digest regardless of extraction order.
func Checksum(payload map[string]any) (string, string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("encode payload: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), string(encoded), nil
}

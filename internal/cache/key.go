package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashKey hashes a key to a fixed length hex string.
func HashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// JoinKey joins key segments with ":".
func JoinKey(parts ...string) string {
	return strings.Join(parts, ":")
}

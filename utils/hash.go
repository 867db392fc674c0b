package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent returns the hex SHA256 digest of data
func HashContent(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ETag returns a strong entity tag for data
func ETag(data []byte) string {
	return `"` + HashContent(data)[:32] + `"`
}

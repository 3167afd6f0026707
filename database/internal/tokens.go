package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken returns the digest refresh tokens are stored under, so a
// leaked table does not leak usable tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

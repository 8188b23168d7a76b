package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken returns the hex-encoded SHA-256 digest of a token. Blacklist
// entries are keyed by the digest, so raw JWTs never land in the store and
// every key has the same small size.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

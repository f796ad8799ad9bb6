package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key builds a cache key for a request of the given kind whose arguments
// are too long or too many to use verbatim, such as a batch of RPC info
// names. Argument order matters: Key("info", "a", "b") and
// Key("info", "b", "a") differ.
func Key(kind string, args ...string) string {
	return kind + ":" + digest(strings.Join(args, "\x00"))
}

// digest returns the hex SHA-256 of s.
func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

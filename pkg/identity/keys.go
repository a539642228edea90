package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"strings"
)

// KeyPrefix is the shared prefix of every settings storage key.
const KeyPrefix = "settings:"

// ChecksumBytes is how many bytes of a SHA-256 digest make up a content checksum.
const ChecksumBytes = 8

// LegacyKey returns the storage key under the retired CRC32 scheme.
// Kept only so existing records can be found and migrated.
func LegacyKey(userID string) string {
	return fmt.Sprintf("%s%08x", KeyPrefix, crc32.ChecksumIEEE([]byte(userID)))
}

// CurrentKey returns the storage key under the SHA-256 scheme.
func CurrentKey(userID string) string {
	return KeyPrefix + UserHash(userID)
}

// UserHash returns the 16-hex-char digest that namespaces all of a user's
// stored data. The user id itself is never persisted.
func UserHash(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:8])
}

// Secret derives the per-user authentication secret. It is deterministic,
// so the server never stores it: every request recomputes and compares.
func Secret(userID string) string {
	h := sha256.New()
	h.Write([]byte("secret:"))
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// LegacySecret is the retired CRC32-based secret. Still accepted on verify so
// clients that authenticated before the scheme change keep working until they
// re-authenticate.
func LegacySecret(userID string) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(userID)))
}

// IsLegacyKey reports whether a storage key was produced by the CRC32 scheme.
// Legacy suffixes are at most 10 chars; current keys always carry 16 hex chars.
func IsLegacyKey(key string) bool {
	suffix, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok {
		return false
	}
	return suffix != "" && len(suffix) <= 10
}

// Checksum returns the entity tag for a datastore value: the first
// ChecksumBytes bytes of its SHA-256 digest, hex encoded.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:ChecksumBytes])
}

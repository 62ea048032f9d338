// Package fingerprint computes content hashes used as duplicate keys in the archive.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// chunkSize is the read buffer size when streaming file content.
const chunkSize = 64 * 1024

// Hash returns the SHA-256 digest of the file at path as a lowercase hex string.
// The file is streamed in fixed-size chunks so large documents do not load into memory.
// On any I/O error it returns the empty string; callers treat that as "hash unknown",
// which disables duplicate detection for that one file instead of aborting ingestion.
func Hash(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashBytes returns the SHA-256 digest of data as a lowercase hex string.
// Used for password hashing and in tests.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

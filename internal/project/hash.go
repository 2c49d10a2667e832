package project

import (
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/sha3"
)

// Digest - фиксированный 256 битный хеш входных файлов (SHA3-256).
type Digest [32]byte

// HashBytes hashes raw content.
func HashBytes(b []byte) Digest {
	return sha3.Sum256(b)
}

// HashFile hashes the content of a file on disk.
func HashFile(path string) (Digest, error) {
	// #nosec G304 -- path comes from the manifest or the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return HashBytes(data), nil
}

// Combine строит общий хеш: H( part1 || part2 ... ).
// Порядок parts должен быть детерминированным.
func Combine(parts ...Digest) Digest {
	h := sha3.New256()
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// String renders the digest as lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short is the first 12 hex digits, enough for file names and log lines.
func (d Digest) Short() string {
	return d.String()[:12]
}

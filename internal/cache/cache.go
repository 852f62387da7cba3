// Package cache memoizes well-formedness verdicts by grammar source
// hash, using CBOR for a compact canonical encoding and blake2b for
// content hashing. The cache is a pure optimization: correctness
// never depends on it, and a miss just means re-running analysis.
package cache

import (
	"encoding/hex"
	"os"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/aledsdavies/oakc/internal/diag"
)

// Entry is the cached outcome of one well-formedness pass: the
// three-valued verdict and the diagnostics that accompanied it, kept
// in their original, replayable shape (kind, span, message, notes)
// rather than pre-rendered prose, keyed externally by source hash.
type Entry struct {
	Hash        string            `cbor:"hash"`
	State       int               `cbor:"state"` // mirrors ast.PartialState
	Diagnostics []diag.Diagnostic `cbor:"diagnostics"`
}

// HashSource returns a hex-encoded blake2b-256 digest of src, used as
// the cache key.
func HashSource(src string) string {
	sum := blake2b.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Load reads and CBOR-decodes a cache entry from path. A missing file
// or a decode error is reported as a clean miss, never a fatal error:
// the cache is advisory.
func Load(path string) (Entry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, false
	}
	var e Entry
	if err := cbor.Unmarshal(data, &e); err != nil {
		return Entry{}, false
	}
	return e, true
}

// Store CBOR-encodes e and writes it to path, creating or truncating
// the file.
func Store(path string, e Entry) error {
	data, err := cbor.Marshal(e)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

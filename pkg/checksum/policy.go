// Package checksum implements component D, ChecksumPolicy: per-transfer
// decisions about how missing or mismatched checksums are treated, plus
// the hashing used to compute them.
//
// Grounded on storj-storj's go.mod dependency on the minio sha256-simd
// family (the teacher's own checksum-hashing library) and on the
// zeebo/errs error-class idiom used throughout the teacher.
package checksum

import (
	"crypto/md5"  //nolint:gosec // MD5 is a supported legacy checksum algorithm, not used for security.
	"crypto/sha1" //nolint:gosec // SHA-1 is a supported legacy checksum algorithm, not used for security.
	"encoding/hex"
	"hash"
	"io"

	sha256simd "github.com/minio/sha256-simd"
	"github.com/zeebo/errs"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("checksum")

// MismatchError reports a computed checksum that does not match the
// expected one.
type MismatchError struct {
	Algorithm string
	Expected  string
	Actual    string
}

func (e *MismatchError) Error() string {
	return Error.New("%s checksum mismatch: expected %s, got %s", e.Algorithm, e.Expected, e.Actual).Error()
}

// NewHasher returns a hash.Hash for the named algorithm, or nil if the
// algorithm is unknown.
func NewHasher(algorithm string) hash.Hash {
	switch algorithm {
	case "SHA-1", "sha1":
		return sha1.New() //nolint:gosec
	case "SHA-256", "sha256":
		return sha256simd.New()
	case "MD5", "md5":
		return md5.New() //nolint:gosec
	default:
		return nil
	}
}

// Compute hashes r with the named algorithm and returns the lowercase
// hex digest.
func Compute(algorithm string, r io.Reader) (string, error) {
	h := NewHasher(algorithm)
	if h == nil {
		return "", Error.New("unsupported algorithm %q", algorithm)
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", Error.Wrap(err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Kind distinguishes how an expected checksum was obtained, which FAIL
// treats differently ("unofficial" sources are tolerated on mismatch).
type Kind int

// Known checksum source kinds, in the order they are consulted
// (spec.md §4.H step 3).
const (
	// Provided checksums come from a TrustedChecksumsSource and are
	// authoritative when present.
	Provided Kind = iota
	// RemoteIncluded checksums are parsed from transfer response
	// headers (ETag, x-checksum-*).
	RemoteIncluded
	// RemoteExternal checksums are fetched via a separate GET per
	// algorithm.
	RemoteExternal
)

// Official reports whether a mismatch in this kind of checksum should
// be treated as authoritative under FAIL (spec.md §4.D: "unless
// 'unofficial' kind, then accept").
func (k Kind) Official() bool {
	return k == Provided || k == RemoteExternal
}

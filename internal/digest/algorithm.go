// Package digest computes cryptographic digests of files. A single read
// pass feeds every requested algorithm, so hashing four algorithms costs
// one disk traversal.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm identifies a supported digest algorithm.
type Algorithm int

const (
	Unspecified Algorithm = iota
	MD5
	SHA1
	SHA256
	SHA3_256
	SHA384
	SHA3_384
	SHA512
	BLAKE2b
)

// All lists every algorithm the engine can compute, in display order.
var All = []Algorithm{MD5, SHA1, SHA256, SHA3_256, SHA384, SHA3_384, SHA512, BLAKE2b}

func (a Algorithm) String() string {
	switch a {
	case MD5:
		return "MD5"
	case SHA1:
		return "SHA1"
	case SHA256:
		return "SHA256"
	case SHA3_256:
		return "SHA3-256"
	case SHA384:
		return "SHA384"
	case SHA3_384:
		return "SHA3-384"
	case SHA512:
		return "SHA512"
	case BLAKE2b:
		return "BLAKE2b"
	default:
		return "unspecified"
	}
}

// HexLen returns the length of the algorithm's hex-encoded output.
func (a Algorithm) HexLen() int {
	switch a {
	case MD5:
		return 32
	case SHA1:
		return 40
	case SHA256, SHA3_256:
		return 64
	case SHA384, SHA3_384:
		return 96
	case SHA512, BLAKE2b:
		return 128
	default:
		return 0
	}
}

// Token returns the lowercase filename token for the algorithm, as used in
// manifest extensions (report.sha256) and batch manifest names (SHA256SUMS).
func (a Algorithm) Token() string {
	return strings.ToLower(a.String())
}

// New returns a fresh hash state for the algorithm.
func (a Algorithm) New() (hash.Hash, error) {
	switch a {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA3_256:
		return sha3.New256(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA3_384:
		return sha3.New384(), nil
	case SHA512:
		return sha512.New(), nil
	case BLAKE2b:
		return blake2b.New512(nil)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, a)
	}
}

// ParseAlgorithm maps a name from a BSD manifest line, a filename token or a
// configuration entry to an Algorithm. Matching is case-insensitive and
// tolerates the dashed spellings (SHA-1, SHA-256) used by some tools.
func ParseAlgorithm(name string) (Algorithm, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "MD5":
		return MD5, true
	case "SHA1", "SHA-1":
		return SHA1, true
	case "SHA256", "SHA-256":
		return SHA256, true
	case "SHA3-256", "SHA3_256":
		return SHA3_256, true
	case "SHA384", "SHA-384":
		return SHA384, true
	case "SHA3-384", "SHA3_384":
		return SHA3_384, true
	case "SHA512", "SHA-512":
		return SHA512, true
	case "BLAKE2B", "BLAKE2B-512":
		return BLAKE2b, true
	default:
		return Unspecified, false
	}
}

// FromHexLen infers the algorithm from a digest's hex length, considering
// only the enabled set. SHA256/SHA3-256, SHA384/SHA3-384 and SHA512/BLAKE2b
// share output sizes, so the inference succeeds only when exactly one
// enabled algorithm has that length.
func FromHexLen(length int, enabled []Algorithm) (Algorithm, bool) {
	found := Unspecified
	for _, a := range enabled {
		if a.HexLen() != length {
			continue
		}
		if found != Unspecified {
			return Unspecified, false
		}
		found = a
	}
	return found, found != Unspecified
}

// IsHex reports whether s is a plausible hex digest.
func IsHex(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

package manifest

import (
	"path/filepath"
	"strings"

	"github.com/nvannier/gosum/internal/digest"
)

// batchNames are manifest filenames recognized without an algorithm
// extension. SUMS files encode their algorithm in the name; CHECKSUM(S)
// files do not.
var batchNames = map[string]digest.Algorithm{
	"CHECKSUM":  digest.Unspecified,
	"CHECKSUMS": digest.Unspecified,
}

func init() {
	for _, a := range digest.All {
		batchNames[strings.ToUpper(a.String())+"SUMS"] = a
	}
}

// IsManifestName reports whether a filename follows a recognized
// manifest-naming convention: an algorithm-named extension (report.sha256)
// or a batch manifest name (SHA256SUMS, CHECKSUMS).
func IsManifestName(name string) bool {
	if _, ok := batchNames[strings.ToUpper(name)]; ok {
		return true
	}
	_, ok := AlgorithmFromName(name)
	return ok
}

// AlgorithmFromName decodes the algorithm a manifest filename announces,
// either via its extension (report.sha256 -> SHA256) or via a batch name
// (MD5SUMS -> MD5). Returns false for generic names like CHECKSUMS.
func AlgorithmFromName(name string) (digest.Algorithm, bool) {
	upper := strings.ToUpper(name)
	if a, ok := batchNames[upper]; ok {
		return a, a != digest.Unspecified
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return digest.Unspecified, false
	}
	return digest.ParseAlgorithm(ext)
}

// TargetFromName derives the candidate target filename from a manifest's
// own name by stripping its algorithm extension: "report.sha256" names a
// target "report". Returns false when the name encodes no algorithm suffix
// or stripping it leaves nothing.
func TargetFromName(name string) (string, bool) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "", false
	}
	if _, ok := digest.ParseAlgorithm(ext); !ok {
		return "", false
	}
	base := strings.TrimSuffix(name, "."+ext)
	if base == "" {
		return "", false
	}
	return base, true
}

// BatchName returns the conventional batch manifest filename for an
// algorithm (MD5 -> MD5SUMS).
func BatchName(a digest.Algorithm) string {
	return strings.ToUpper(a.String()) + "SUMS"
}

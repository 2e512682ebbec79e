package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvannier/gosum/internal/digest"
	"github.com/nvannier/gosum/internal/manifest"
	"github.com/nvannier/gosum/internal/verify"
)

func init() {
	color.NoColor = true
}

func newPrinter(buf *bytes.Buffer, format string) *Printer {
	return &Printer{
		Out:             buf,
		Format:          format,
		Algorithms:      []digest.Algorithm{digest.MD5, digest.SHA256},
		MatchMessage:    "All files are identical",
		MismatchMessage: "Files differ",
	}
}

func sampleDigests() map[digest.Algorithm]string {
	return map[digest.Algorithm]string{
		digest.MD5:    "65a8e27d8879283831b664bd8b7f0ad4",
		digest.SHA256: "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f",
	}
}

func TestDigestsDefault(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "default")
	require.NoError(t, p.Digests("/tmp/hello.txt", sampleDigests(), 0))

	out := buf.String()
	assert.Contains(t, out, "File: hello.txt")
	assert.Contains(t, out, "MD5:")
	assert.Contains(t, out, "65a8e27d8879283831b664bd8b7f0ad4")
	assert.Contains(t, out, "SHA256:")
	// MD5 listed before SHA256, following the configured order.
	assert.Less(t, strings.Index(out, "MD5:"), strings.Index(out, "SHA256:"))
}

func TestDigestsJSON(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "json")
	require.NoError(t, p.Digests("/tmp/hello.txt", sampleDigests(), 0))

	var decoded struct {
		File    string            `json:"file"`
		Digests map[string]string `json:"digests"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "/tmp/hello.txt", decoded.File)
	assert.Equal(t, "65a8e27d8879283831b664bd8b7f0ad4", decoded.Digests["MD5"])
}

func TestDigestsCSV(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "csv")
	require.NoError(t, p.Digests("a.bin", sampleDigests(), 0))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a.bin,MD5,65a8e27d8879283831b664bd8b7f0ad4", lines[0])
}

func TestComparisonMatch(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "default")
	cmp := &verify.Comparison{
		Files: []verify.FileDigests{
			{Path: "a.bin", Digests: sampleDigests()},
			{Path: "b.bin", Digests: sampleDigests()},
		},
	}
	require.NoError(t, p.Comparison(cmp))
	assert.Contains(t, buf.String(), "All files are identical")
	assert.NotContains(t, buf.String(), "Files differ")
}

func TestComparisonMismatchNamesDiffering(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "default")
	cmp := &verify.Comparison{
		Files: []verify.FileDigests{
			{Path: "ref.bin", Digests: sampleDigests()},
			{Path: "/data/other.bin", Digests: map[digest.Algorithm]string{digest.MD5: "00"}},
		},
		Different: []string{"/data/other.bin"},
	}
	require.NoError(t, p.Comparison(cmp))
	out := buf.String()
	assert.Contains(t, out, "Files differ")
	assert.Contains(t, out, `differing from "ref.bin"`)
	assert.Contains(t, out, "other.bin")
}

func TestComparisonJSON(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "json")
	cmp := &verify.Comparison{
		Files: []verify.FileDigests{
			{Path: "a", Digests: sampleDigests()},
			{Path: "b", Digests: sampleDigests()},
		},
	}
	require.NoError(t, p.Comparison(cmp))

	var decoded struct {
		AllMatch  bool     `json:"all_match"`
		Different []string `json:"different"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.True(t, decoded.AllMatch)
	assert.Empty(t, decoded.Different)
}

func sampleReport() *verify.Report {
	return &verify.Report{
		Directory: "/data",
		Manifests: []verify.ManifestResult{{
			Path:    "/data/SHA256SUMS",
			Dialect: manifest.DialectGNU,
			Entries: []verify.EntryResult{
				{
					Manifest: "/data/SHA256SUMS",
					Entry:    manifest.Entry{Algorithm: digest.SHA256, Filename: "ok.bin"},
					Status:   verify.StatusMatch,
					Target:   "/data/ok.bin",
					Rule:     1,
				},
				{
					Manifest: "/data/SHA256SUMS",
					Entry:    manifest.Entry{Algorithm: digest.SHA256, Filename: "bad.bin"},
					Status:   verify.StatusMismatch,
					Target:   "/data/bad.bin",
					Rule:     1,
					Expected: "aa",
					Actual:   "bb",
				},
			},
			Warnings: []manifest.Warning{{Line: 7, Message: "malformed line"}},
		}},
	}
}

func TestReportDefault(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "default")
	require.NoError(t, p.Report(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Manifest: /data/SHA256SUMS (gnu)")
	assert.Contains(t, out, "OK    ok.bin")
	assert.Contains(t, out, "FAIL  bad.bin")
	assert.Contains(t, out, "expected aa")
	assert.Contains(t, out, "line 7 skipped: malformed line")
	assert.Contains(t, out, "1 ok, 1 mismatched")
}

func TestReportAllOk(t *testing.T) {
	report := sampleReport()
	report.Manifests[0].Entries = report.Manifests[0].Entries[:1]
	report.Manifests[0].Warnings = nil

	var buf bytes.Buffer
	p := newPrinter(&buf, "default")
	require.NoError(t, p.Report(report))
	assert.Contains(t, buf.String(), "all 1 entries verified")
}

func TestReportJSON(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "json")
	require.NoError(t, p.Report(sampleReport()))

	var decoded struct {
		Ok        bool `json:"ok"`
		Manifests []struct {
			Dialect string `json:"dialect"`
			Entries []struct {
				Status string `json:"status"`
			} `json:"entries"`
		} `json:"manifests"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.False(t, decoded.Ok)
	require.Len(t, decoded.Manifests, 1)
	require.Len(t, decoded.Manifests[0].Entries, 2)
	assert.Equal(t, "match", decoded.Manifests[0].Entries[0].Status)
	assert.Equal(t, "mismatch", decoded.Manifests[0].Entries[1].Status)
}

func TestReportCSV(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "csv")
	require.NoError(t, p.Report(sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "/data/ok.bin")
	assert.Contains(t, lines[0], "match")
}

func TestReportPartial(t *testing.T) {
	report := sampleReport()
	report.Partial = true

	var buf bytes.Buffer
	p := newPrinter(&buf, "default")
	require.NoError(t, p.Report(report))
	assert.Contains(t, buf.String(), "cancelled")
}

func TestAmbiguousVerdictListsCandidates(t *testing.T) {
	report := &verify.Report{Manifests: []verify.ManifestResult{{
		Path:    "/data/report.sha256",
		Dialect: manifest.DialectBare,
		Entries: []verify.EntryResult{{
			Manifest:   "/data/report.sha256",
			Entry:      manifest.Entry{Algorithm: digest.SHA256},
			Status:     verify.StatusAmbiguous,
			Candidates: []string{"/data/a.bin", "/data/b.bin"},
		}},
	}}}

	var buf bytes.Buffer
	p := newPrinter(&buf, "default")
	require.NoError(t, p.Report(report))
	out := buf.String()
	assert.Contains(t, out, "matches 2 files")
	assert.Contains(t, out, "a.bin")
	assert.Contains(t, out, "b.bin")
}

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiscrub/aiscrub/internal/gitx"
	"github.com/aiscrub/aiscrub/internal/message"
	"github.com/aiscrub/aiscrub/internal/scan"
)

func sampleFilesReport(dryRun bool) *FilesReport {
	when := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return &FilesReport{
		Repo:   "/work/demo",
		Branch: "main",
		DryRun: dryRun,
		Candidates: []Candidate{
			{
				Path:   ".claude",
				Kind:   "directory",
				Reason: ".claude",
				EarliestChange: &EarliestChange{
					ID:        "a1b2c3d4e5f60718293a4b5c6d7e8f9012345678",
					Timestamp: when,
					Summary:   "add assistant settings",
				},
			},
			{Path: "docs/CLAUDE.md", Kind: "file", Reason: "CLAUDE.md"},
		},
		Commands: []string{
			"bfg --delete-folders .claude --no-blob-protection /work/demo",
			"bfg --delete-files CLAUDE.md --no-blob-protection /work/demo",
		},
	}
}

func TestHumanFilesDryRun(t *testing.T) {
	var buf bytes.Buffer
	f := &HumanFormatter{Glyphs: false}

	err := f.Files(&buf, sampleFilesReport(true))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Repository: /work/demo")
	assert.Contains(t, out, "Mode:       dry run (no changes made)")
	assert.Contains(t, out, "Found 2 artifact paths in history:")
	assert.Contains(t, out, "- .claude (directory)")
	assert.Contains(t, out, "first seen: a1b2c3d4e5f6 (2025-03-14T09:26:53Z) \"add assistant settings\"")
	assert.Contains(t, out, "- docs/CLAUDE.md (file)")
	assert.Equal(t, 1, strings.Count(out, "first seen:"))
	assert.Contains(t, out, "Planned removal commands:")
	assert.Contains(t, out, "-> bfg --delete-folders .claude")
	assert.Contains(t, out, "Re-run with --execute")
}

func TestHumanFilesExecute(t *testing.T) {
	var buf bytes.Buffer
	f := &HumanFormatter{Glyphs: false}

	report := sampleFilesReport(false)
	report.BackupRef = "backup/pre-clean-20250314T092653Z"
	err := f.Files(&buf, report)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Mode:       execute")
	assert.Contains(t, out, "Backup:     backup/pre-clean-20250314T092653Z")
	assert.Contains(t, out, "Removal commands run:")
	assert.NotContains(t, out, "Re-run with --execute")
}

func TestHumanFilesEmpty(t *testing.T) {
	var buf bytes.Buffer
	f := &HumanFormatter{Glyphs: false}

	err := f.Files(&buf, &FilesReport{Repo: "/work/demo", Branch: "main", DryRun: true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "No artifact files found in history")
	assert.NotContains(t, out, "Re-run with --execute")
}

func TestHumanFilesGlyphs(t *testing.T) {
	var plain, fancy bytes.Buffer

	require.NoError(t, (&HumanFormatter{Glyphs: false}).Files(&plain, sampleFilesReport(true)))
	require.NoError(t, (&HumanFormatter{Glyphs: true}).Files(&fancy, sampleFilesReport(true)))

	assert.Contains(t, plain.String(), "- .claude")
	assert.NotContains(t, plain.String(), "•")
	assert.Contains(t, fancy.String(), "• .claude")
	assert.Contains(t, fancy.String(), "→ bfg")
}

func sampleCommitsReport() *CommitsReport {
	return &CommitsReport{
		Repo:            "/work/demo",
		Branch:          "main",
		DryRun:          true,
		TotalCommits:    120,
		AffectedCommits: 7,
		TrailersRemoved: 9,
		EarliestAffected: &CommitRef{
			ID:      "0123456789abcdef0123456789abcdef01234567",
			Subject: "wire the parser",
		},
		RewriteRange: "0123456789abcdef0123456789abcdef01234567^..main",
		Preview: []PreviewEntry{
			{
				ID:              "fedcba9876543210fedcba9876543210fedcba98",
				Subject:         "fix multiline handling",
				RemovedTrailers: []string{"Co-Authored-By: Claude <noreply@anthropic.com>"},
				CleanedMessage:  "fix multiline handling",
			},
		},
	}
}

func TestHumanCommits(t *testing.T) {
	var buf bytes.Buffer
	f := &HumanFormatter{Glyphs: false}

	err := f.Commits(&buf, sampleCommitsReport())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Scanned 120 commits, 7 affected, 9 trailers to remove")
	assert.Contains(t, out, "Earliest affected: 0123456789ab \"wire the parser\"")
	assert.Contains(t, out, "Rewrite range:     0123456789abcdef0123456789abcdef01234567^..main")
	assert.Contains(t, out, "- fedcba987654 fix multiline handling")
	assert.Contains(t, out, "removes: Co-Authored-By: Claude <noreply@anthropic.com>")
	assert.Contains(t, out, "... and 6 more")
	assert.Contains(t, out, "Re-run with --execute")
}

func TestHumanCommitsClean(t *testing.T) {
	var buf bytes.Buffer
	f := &HumanFormatter{Glyphs: false}

	report := &CommitsReport{Repo: "/work/demo", Branch: "main", DryRun: true, TotalCommits: 42}
	err := f.Commits(&buf, report)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "No attribution trailers found in 42 commits")
	assert.NotContains(t, out, "Preview:")
}

func TestHumanBackups(t *testing.T) {
	var buf bytes.Buffer
	f := &HumanFormatter{Glyphs: false}

	report := &BackupsReport{
		Repo: "/work/demo",
		Backups: []Backup{
			{Name: "backup/pre-clean-20250314T092653Z", Target: "a1b2c3d4e5f60718293a4b5c6d7e8f9012345678"},
		},
	}
	err := f.Backups(&buf, report)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "1 backup ref:")
	assert.Contains(t, out, "backup/pre-clean-20250314T092653Z -> a1b2c3d4e5f6")
	assert.Contains(t, out, "aiscrub backups restore")
}

func TestHumanBackupsEmpty(t *testing.T) {
	var buf bytes.Buffer
	f := &HumanFormatter{Glyphs: false}

	err := f.Backups(&buf, &BackupsReport{Repo: "/work/demo"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No backup refs found.")
}

func TestJSONFilesFieldNames(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}

	report := sampleFilesReport(true)
	require.NoError(t, f.Files(&buf, report))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "/work/demo", decoded["repo"])
	assert.Equal(t, true, decoded["dry_run"])
	assert.NotContains(t, decoded, "backup_ref")

	candidates, ok := decoded["candidates"].([]any)
	require.True(t, ok)
	require.Len(t, candidates, 2)
	first := candidates[0].(map[string]any)
	assert.Equal(t, ".claude", first["path"])
	assert.Equal(t, "directory", first["kind"])
	assert.Contains(t, first, "earliest_change")
	second := candidates[1].(map[string]any)
	assert.NotContains(t, second, "earliest_change")
}

func TestJSONCommitsFieldNames(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}

	require.NoError(t, f.Commits(&buf, sampleCommitsReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(120), decoded["total_commits"])
	assert.Equal(t, float64(7), decoded["affected_commits"])
	assert.Equal(t, float64(9), decoded["trailers_removed"])
	assert.Contains(t, decoded, "earliest_affected")
	assert.Contains(t, decoded, "rewrite_range")

	preview := decoded["preview"].([]any)
	require.Len(t, preview, 1)
	entry := preview[0].(map[string]any)
	assert.Contains(t, entry, "removed_trailers")
	assert.Contains(t, entry, "cleaned_message")
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON))
	assert.IsType(t, &HumanFormatter{}, NewFormatter(FormatHuman))
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat(true))
	assert.Equal(t, FormatHuman, DetectFormat(false))
}

func TestNewFilesReport(t *testing.T) {
	when := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	candidates := []scan.Candidate{
		{
			Path:   ".aider.chat.history.md",
			Kind:   scan.KindFile,
			Reason: ".aider*",
			Earliest: &gitx.Change{
				ID:      "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
				Time:    when,
				Subject: "chatty commit",
			},
		},
		{Path: ".cursor", Kind: scan.KindDirectory, Reason: ".cursor"},
	}

	report := NewFilesReport("/work/demo", "main", true, "", candidates, []string{"bfg ..."})

	require.Len(t, report.Candidates, 2)
	assert.Equal(t, "file", report.Candidates[0].Kind)
	require.NotNil(t, report.Candidates[0].EarliestChange)
	assert.Equal(t, when, report.Candidates[0].EarliestChange.Timestamp)
	assert.Equal(t, "chatty commit", report.Candidates[0].EarliestChange.Summary)
	assert.Equal(t, "directory", report.Candidates[1].Kind)
	assert.Nil(t, report.Candidates[1].EarliestChange)
	assert.True(t, report.DryRun)
}

func TestNewCommitsReport(t *testing.T) {
	analysis := &message.Analysis{
		Branch:          "main",
		TotalCommits:    10,
		AffectedCommits: 2,
		TrailersRemoved: 3,
		Earliest:        &message.CommitRecord{ID: "abc", Subject: "early"},
		Preview: []message.PreviewEntry{
			{
				Commit:  message.CommitRecord{ID: "def", Subject: "late"},
				Cleaned: "late",
				Removed: []string{"Co-Authored-By: Claude <noreply@anthropic.com>"},
			},
		},
	}

	report := NewCommitsReport("/work/demo", false, "backup/pre-clean-20250102T030405Z", analysis, "abc^..main")

	assert.Equal(t, "main", report.Branch)
	assert.False(t, report.DryRun)
	assert.Equal(t, "backup/pre-clean-20250102T030405Z", report.BackupRef)
	require.NotNil(t, report.EarliestAffected)
	assert.Equal(t, "abc", report.EarliestAffected.ID)
	require.Len(t, report.Preview, 1)
	assert.Equal(t, "late", report.Preview[0].CleanedMessage)
}

func TestNewBackupsReport(t *testing.T) {
	refs := []gitx.BackupRef{{Name: "backup/pre-clean-20250102T030405Z", Target: "abc"}}
	report := NewBackupsReport("/work/demo", refs)
	require.Len(t, report.Backups, 1)
	assert.Equal(t, "abc", report.Backups[0].Target)
}

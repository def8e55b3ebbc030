package output

import (
	"time"

	"github.com/aiscrub/aiscrub/internal/gitx"
	"github.com/aiscrub/aiscrub/internal/message"
	"github.com/aiscrub/aiscrub/internal/scan"
)

// EarliestChange identifies the commit that introduced a candidate path.
type EarliestChange struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Summary   string    `json:"summary"`
}

// Candidate is one path slated for removal, in output form.
type Candidate struct {
	Path           string          `json:"path"`
	Kind           string          `json:"kind"`
	Reason         string          `json:"reason"`
	EarliestChange *EarliestChange `json:"earliest_change,omitempty"`
}

// FilesReport is the complete result of one files run, preview or execute.
type FilesReport struct {
	Repo       string      `json:"repo"`
	Branch     string      `json:"branch,omitempty"`
	DryRun     bool        `json:"dry_run"`
	BackupRef  string      `json:"backup_ref,omitempty"`
	Candidates []Candidate `json:"candidates"`
	// Commands lists the exact command lines a dry run would execute, or an
	// execute run did execute. Identical in both modes by construction.
	Commands []string `json:"commands"`
}

// CommitRef identifies one commit in analysis output.
type CommitRef struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
}

// PreviewEntry shows what cleaning would do to one affected commit.
type PreviewEntry struct {
	ID              string   `json:"id"`
	Subject         string   `json:"subject"`
	RemovedTrailers []string `json:"removed_trailers"`
	CleanedMessage  string   `json:"cleaned_message"`
}

// CommitsReport is the complete result of one commits run.
type CommitsReport struct {
	Repo             string         `json:"repo"`
	Branch           string         `json:"branch,omitempty"`
	DryRun           bool           `json:"dry_run"`
	BackupRef        string         `json:"backup_ref,omitempty"`
	TotalCommits     int            `json:"total_commits"`
	AffectedCommits  int            `json:"affected_commits"`
	TrailersRemoved  int            `json:"trailers_removed"`
	EarliestAffected *CommitRef     `json:"earliest_affected,omitempty"`
	RewriteRange     string         `json:"rewrite_range,omitempty"`
	Preview          []PreviewEntry `json:"preview"`
}

// Backup is one recovery-point branch.
type Backup struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// BackupsReport lists every backup branch in a repository.
type BackupsReport struct {
	Repo    string   `json:"repo"`
	Backups []Backup `json:"backups"`
}

// NewFilesReport converts scanner candidates into the output schema.
func NewFilesReport(repo, branch string, dryRun bool, backupRef string, candidates []scan.Candidate, commands []string) *FilesReport {
	report := &FilesReport{
		Repo:       repo,
		Branch:     branch,
		DryRun:     dryRun,
		BackupRef:  backupRef,
		Candidates: make([]Candidate, 0, len(candidates)),
		Commands:   commands,
	}
	for _, c := range candidates {
		report.Candidates = append(report.Candidates, Candidate{
			Path:           c.Path,
			Kind:           c.Kind.String(),
			Reason:         c.Reason,
			EarliestChange: earliestChange(c.Earliest),
		})
	}
	return report
}

func earliestChange(change *gitx.Change) *EarliestChange {
	if change == nil {
		return nil
	}
	return &EarliestChange{ID: change.ID, Timestamp: change.Time, Summary: change.Subject}
}

// NewCommitsReport converts an analysis into the output schema. rewriteRange
// is empty when nothing would be rewritten.
func NewCommitsReport(repo string, dryRun bool, backupRef string, analysis *message.Analysis, rewriteRange string) *CommitsReport {
	report := &CommitsReport{
		Repo:            repo,
		Branch:          analysis.Branch,
		DryRun:          dryRun,
		BackupRef:       backupRef,
		TotalCommits:    analysis.TotalCommits,
		AffectedCommits: analysis.AffectedCommits,
		TrailersRemoved: analysis.TrailersRemoved,
		RewriteRange:    rewriteRange,
		Preview:         make([]PreviewEntry, 0, len(analysis.Preview)),
	}
	if analysis.Earliest != nil {
		report.EarliestAffected = &CommitRef{ID: analysis.Earliest.ID, Subject: analysis.Earliest.Subject}
	}
	for _, p := range analysis.Preview {
		report.Preview = append(report.Preview, PreviewEntry{
			ID:              p.Commit.ID,
			Subject:         p.Commit.Subject,
			RemovedTrailers: p.Removed,
			CleanedMessage:  p.Cleaned,
		})
	}
	return report
}

// NewBackupsReport converts backup refs into the output schema.
func NewBackupsReport(repo string, refs []gitx.BackupRef) *BackupsReport {
	report := &BackupsReport{Repo: repo, Backups: make([]Backup, 0, len(refs))}
	for _, ref := range refs {
		report.Backups = append(report.Backups, Backup{Name: ref.Name, Target: ref.Target})
	}
	return report
}

package message

import (
	"context"
	"time"

	"github.com/aiscrub/aiscrub/internal/gitx"
	"github.com/aiscrub/aiscrub/internal/logging"
)

// previewCap bounds how many affected commits the preview lists. Counts stay
// exact regardless.
const previewCap = 5

// CommitRecord identifies one commit in analysis output.
type CommitRecord struct {
	ID      string
	Subject string
}

// PreviewEntry shows what cleaning would do to one affected commit.
type PreviewEntry struct {
	Commit  CommitRecord
	Cleaned string   // cleaned full message
	Removed []string // trailer lines that were stripped
}

// Analysis aggregates a whole-branch message scan.
type Analysis struct {
	Branch          string
	TotalCommits    int
	AffectedCommits int
	TrailersRemoved int
	// Earliest is the chronologically earliest affected commit, resolved by
	// committer time rather than list position. Nil when nothing is affected.
	Earliest *CommitRecord
	Preview  []PreviewEntry
}

// VersionControl is the slice of gitx the analyzer needs.
type VersionControl interface {
	ForEachCommit(ctx context.Context, branch string, fn func(gitx.CommitInfo) error) error
}

// Analyzer walks a branch and reports which commit messages cleaning would
// change.
type Analyzer struct {
	vc      VersionControl
	cleaner *Cleaner
}

func NewAnalyzer(vc VersionControl, cleaner *Cleaner) *Analyzer {
	return &Analyzer{vc: vc, cleaner: cleaner}
}

// Analyze enumerates branch commits newest-first and applies the cleaner to
// every full message. The walk order never changes the counts; the earliest
// affected commit is picked by minimum committer time, with ties going to the
// commit seen later in the walk (the one further from the tip).
func (a *Analyzer) Analyze(ctx context.Context, branch string) (*Analysis, error) {
	start := time.Now()
	analysis := &Analysis{Branch: branch}

	var earliestWhen time.Time
	err := a.vc.ForEachCommit(ctx, branch, func(c gitx.CommitInfo) error {
		analysis.TotalCommits++

		res := a.cleaner.Clean(c.Message)
		if !res.Changed(c.Message) {
			return nil
		}

		analysis.AffectedCommits++
		analysis.TrailersRemoved += len(res.Matched)

		if analysis.Earliest == nil || !c.When.After(earliestWhen) {
			analysis.Earliest = &CommitRecord{ID: c.ID, Subject: c.Subject}
			earliestWhen = c.When
		}
		if len(analysis.Preview) < previewCap {
			analysis.Preview = append(analysis.Preview, PreviewEntry{
				Commit:  CommitRecord{ID: c.ID, Subject: c.Subject},
				Cleaned: res.Cleaned,
				Removed: res.Matched,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Info("message analysis complete",
		"branch", branch,
		"total", analysis.TotalCommits,
		"affected", analysis.AffectedCommits,
		"trailers", analysis.TrailersRemoved,
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	return analysis, nil
}

// Package rewrite drives the history rewrite that strips attribution
// trailers. The message transform is not generated code: it is this same
// binary re-invoked as a msg-filter pipe, so the rewrite applies the exact
// cleaning the analyzer previewed.
package rewrite

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"github.com/aiscrub/aiscrub/internal/errors"
	"github.com/aiscrub/aiscrub/internal/logging"
	"github.com/aiscrub/aiscrub/internal/message"
)

// FilterSubcommand is the hidden CLI verb that pipes stdin through the
// message cleaner. The rewrite plan embeds it into the filter command line.
const FilterSubcommand = "msg-filter"

// Plan is one computed rewrite: the revision range to cover and the message
// transform to run over it. Ephemeral, never persisted.
type Plan struct {
	// RangeStart is the commit excluded from the rewrite, empty when the
	// whole branch is covered (earliest affected commit is the root).
	RangeStart string
	// RangeEnd is the branch being rewritten.
	RangeEnd string
	// Filter is the shell command filter-branch runs per commit message.
	Filter string
}

// Range renders the revision range argument.
func (p *Plan) Range() string {
	if p.RangeStart == "" {
		return p.RangeEnd
	}
	return p.RangeStart + ".." + p.RangeEnd
}

// VersionControl is the slice of gitx the rewriter needs.
type VersionControl interface {
	Path() string
	IsClean(ctx context.Context) (bool, error)
	HasBackupRef(name string) bool
	ParentOf(id string) (string, error)
	GitDir(ctx context.Context) (string, error)
	DeleteRefsWithPrefix(prefix string) error
}

// Rewriter rewrites commit messages on one repository.
type Rewriter struct {
	vc VersionControl
}

func NewRewriter(vc VersionControl) *Rewriter {
	return &Rewriter{vc: vc}
}

// ComputePlan minimizes the rewrite range: when the earliest affected commit
// has a parent, everything at or before that parent keeps its identity and
// the range is parent..branch; when it is the root, the whole branch is
// rewritten.
func (r *Rewriter) ComputePlan(ctx context.Context, branch string, analysis *message.Analysis) (*Plan, error) {
	if analysis == nil || analysis.Earliest == nil {
		return nil, errors.ConfigError("no affected commits to rewrite")
	}

	parent, err := r.vc.ParentOf(analysis.Earliest.ID)
	if err != nil {
		return nil, err
	}

	filter, err := selfFilter()
	if err != nil {
		return nil, err
	}

	plan := &Plan{RangeStart: parent, RangeEnd: branch, Filter: filter}
	logging.Debug("computed rewrite plan",
		"range", plan.Range(),
		"earliest", analysis.Earliest.ID,
	)
	return plan, nil
}

// Rewrite computes the minimal plan for branch and applies it.
func (r *Rewriter) Rewrite(ctx context.Context, branch string, analysis *message.Analysis, backupRef string) error {
	plan, err := r.ComputePlan(ctx, branch, analysis)
	if err != nil {
		return err
	}
	return r.Apply(ctx, plan, backupRef)
}

// Apply runs one filter-branch pass over the plan's range. Preconditions: a
// clean working tree and a resolvable backup ref pointing at the pre-rewrite
// head. filter-branch's droppings (refs/original/* and the .git-rewrite work
// area) are removed on success and on failure alike.
func (r *Rewriter) Apply(ctx context.Context, plan *Plan, backupRef string) error {
	clean, err := r.vc.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return errors.DirtyWorktree()
	}
	if backupRef == "" || !r.vc.HasBackupRef(backupRef) {
		return errors.BackupFailed(fmt.Errorf("ref not resolvable"), backupRef)
	}

	runErr := r.runFilterBranch(ctx, plan)
	cleanupErr := r.cleanup(ctx)

	if runErr != nil {
		return runErr
	}
	return cleanupErr
}

func (r *Rewriter) runFilterBranch(ctx context.Context, plan *Plan) error {
	args := []string{"filter-branch", "-f", "--msg-filter", plan.Filter, "--", plan.Range()}
	logging.Info("rewriting history", "range", plan.Range())

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.vc.Path()
	cmd.Env = append(os.Environ(), "FILTER_BRANCH_SQUELCH_WARNING=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e := errors.RewriteFailed(err, "filter-branch over "+plan.Range())
		if s := strings.TrimSpace(stderr.String()); s != "" {
			e = e.WithContext("stderr", s)
		}
		return e
	}
	return nil
}

// cleanup removes filter-branch's backup refs and temporary work area. The
// recovery point is the tool's own backup branch, not refs/original.
func (r *Rewriter) cleanup(ctx context.Context) error {
	if err := r.vc.DeleteRefsWithPrefix("refs/original/"); err != nil {
		return err
	}
	gitDir, err := r.vc.GitDir(ctx)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(gitDir, ".git-rewrite")); err != nil {
		return errors.Wrap(err, errors.KindRewriteFailed, "cannot remove rewrite work area")
	}
	return nil
}

// selfFilter builds the msg-filter command line: this executable re-invoked
// with the hidden subcommand, path quoted for the shell filter-branch uses.
func selfFilter() (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(err, errors.KindRewriteFailed, "cannot resolve own executable path")
	}
	return shellescape.Quote(self) + " " + FilterSubcommand, nil
}

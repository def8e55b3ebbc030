// Package pipeline sequences the two cleaning paths end to end: validate,
// back up, detect, then preview or mutate-and-verify. Dry runs and execute
// runs share every detection step, so a preview is exactly what execute
// would do. No history is ever mutated before a backup ref exists.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/aiscrub/aiscrub/internal/errors"
	"github.com/aiscrub/aiscrub/internal/logging"
	"github.com/aiscrub/aiscrub/internal/message"
	"github.com/aiscrub/aiscrub/internal/removal"
	"github.com/aiscrub/aiscrub/internal/rewrite"
	"github.com/aiscrub/aiscrub/internal/scan"
)

// VersionControl is the slice of gitx the pipeline drives directly.
type VersionControl interface {
	Path() string
	CurrentBranch() (string, error)
	EnsureHistory() error
	IsClean(ctx context.Context) (bool, error)
	CreateBackupRef(branch string, now time.Time) (string, error)
	HasBackupRef(name string) bool
	BranchHead(branch string) (string, error)
}

// Scanner finds artifact paths across all history.
type Scanner interface {
	Scan(ctx context.Context) ([]scan.Candidate, error)
}

// Remover renders and runs removal plans.
type Remover interface {
	Describe(plan removal.Plan) []string
	Execute(ctx context.Context, plan removal.Plan, backupRef string) error
}

// Analyzer reports which commit messages cleaning would change.
type Analyzer interface {
	Analyze(ctx context.Context, branch string) (*message.Analysis, error)
}

// Rewriter computes and applies commit-message rewrites.
type Rewriter interface {
	ComputePlan(ctx context.Context, branch string, analysis *message.Analysis) (*rewrite.Plan, error)
	Apply(ctx context.Context, plan *rewrite.Plan, backupRef string) error
}

// Options select what one run covers and whether it mutates.
type Options struct {
	// Branch to back up and, on the commits path, rewrite. Empty means the
	// checked-out branch.
	Branch string
	// Execute enables mutation. Off, the run stops after the preview.
	Execute bool
}

// FilesResult is everything one files run learned and did.
type FilesResult struct {
	RunID      string
	State      State
	Branch     string
	BackupRef  string
	Candidates []scan.Candidate
	Plan       removal.Plan
	Commands   []string
}

// CommitsResult is everything one commits run learned and did.
type CommitsResult struct {
	RunID        string
	State        State
	Branch       string
	BackupRef    string
	Analysis     *message.Analysis
	RewriteRange string
}

// Pipeline runs one cleaning pass at a time against a repository.
type Pipeline struct {
	vc       VersionControl
	scanner  Scanner
	remover  Remover
	analyzer Analyzer
	rewriter Rewriter

	// guard serializes runs: history rewriting tolerates exactly one writer,
	// and overlapping dry runs would interleave their progress logs anyway.
	guard *semaphore.Weighted
	now   func() time.Time
}

func New(vc VersionControl, scanner Scanner, remover Remover, analyzer Analyzer, rewriter Rewriter) *Pipeline {
	return &Pipeline{
		vc:       vc,
		scanner:  scanner,
		remover:  remover,
		analyzer: analyzer,
		rewriter: rewriter,
		guard:    semaphore.NewWeighted(1),
		now:      time.Now,
	}
}

// run tracks one pipeline execution's identity and phase for logging.
type run struct {
	id    string
	state State
}

func (p *Pipeline) newRun(mode string, opts Options) *run {
	r := &run{id: uuid.NewString(), state: StateIdle}
	logging.Info("run started",
		"run_id", r.id,
		"mode", mode,
		"repo", p.vc.Path(),
		"branch", opts.Branch,
		"execute", opts.Execute,
	)
	return r
}

func (r *run) to(next State) {
	logging.Debug("state transition", "run_id", r.id, "from", r.state.String(), "to", next.String())
	r.state = next
}

// fail marks the run failed and hands err back unchanged.
func (r *run) fail(err error) error {
	r.to(StateFailed)
	logging.Error("run failed", "run_id", r.id, "error", err.Error())
	return err
}

func (r *run) complete() {
	logging.Info("run complete", "run_id", r.id, "state", r.state.String())
}

// acquire takes the single-writer slot without blocking.
func (p *Pipeline) acquire() error {
	if !p.guard.TryAcquire(1) {
		return errors.ConfigError("another cleaning run is already in progress for this repository")
	}
	return nil
}

// targetBranch resolves an empty branch option to the checked-out branch.
func (p *Pipeline) targetBranch(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	return p.vc.CurrentBranch()
}

// backup snapshots the branch tip under a timestamped backup ref.
func (p *Pipeline) backup(r *run, branch string) (string, error) {
	r.to(StateBackingUp)
	ref, err := p.vc.CreateBackupRef(branch, p.now())
	if err != nil {
		return "", err
	}
	logging.Info("backup ref created", "run_id", r.id, "ref", ref, "branch", branch)
	return ref, nil
}

// RunFiles scans all of history for artifact paths and either previews the
// removal plan or executes it. In execute mode the backup ref is created
// before the scan, so by the time anything could mutate, the recovery point
// already exists.
func (p *Pipeline) RunFiles(ctx context.Context, opts Options) (*FilesResult, error) {
	if err := p.acquire(); err != nil {
		return nil, err
	}
	defer p.guard.Release(1)

	r := p.newRun("files", opts)
	result := &FilesResult{RunID: r.id}
	fail := func(err error) (*FilesResult, error) {
		result.State = StateFailed
		return result, r.fail(err)
	}

	r.to(StateValidating)
	branch, err := p.targetBranch(opts.Branch)
	if err != nil {
		return fail(err)
	}
	result.Branch = branch
	if err := p.vc.EnsureHistory(); err != nil {
		return fail(err)
	}

	if opts.Execute {
		ref, err := p.backup(r, branch)
		if err != nil {
			return fail(err)
		}
		result.BackupRef = ref
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	r.to(StateScanning)
	candidates, err := p.scanner.Scan(ctx)
	if err != nil {
		return fail(err)
	}
	result.Candidates = candidates
	result.Plan = removal.BuildPlan(candidates)
	result.Commands = p.remover.Describe(result.Plan)

	if !opts.Execute {
		r.to(StatePreviewing)
		result.State = r.state
		r.complete()
		return result, nil
	}

	if result.Plan.Empty() {
		logging.Info("nothing to remove", "run_id", r.id)
		r.to(StateDone)
		result.State = r.state
		r.complete()
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	r.to(StateMutating)
	if err := p.remover.Execute(ctx, result.Plan, result.BackupRef); err != nil {
		return fail(err)
	}

	r.to(StateVerifying)
	if err := p.verifyFiles(ctx, r, branch, result.BackupRef); err != nil {
		return fail(err)
	}

	r.to(StateDone)
	result.State = r.state
	r.complete()
	return result, nil
}

// RunCommits analyzes a branch's commit messages and either previews the
// cleaning or rewrites the affected range. Execute mode requires a clean
// working tree and creates the backup ref before analysis begins.
func (p *Pipeline) RunCommits(ctx context.Context, opts Options) (*CommitsResult, error) {
	if err := p.acquire(); err != nil {
		return nil, err
	}
	defer p.guard.Release(1)

	r := p.newRun("commits", opts)
	result := &CommitsResult{RunID: r.id}
	fail := func(err error) (*CommitsResult, error) {
		result.State = StateFailed
		return result, r.fail(err)
	}

	r.to(StateValidating)
	branch, err := p.targetBranch(opts.Branch)
	if err != nil {
		return fail(err)
	}
	result.Branch = branch
	if err := p.vc.EnsureHistory(); err != nil {
		return fail(err)
	}
	if opts.Execute {
		clean, err := p.vc.IsClean(ctx)
		if err != nil {
			return fail(err)
		}
		if !clean {
			return fail(errors.DirtyWorktree())
		}
	}

	if opts.Execute {
		ref, err := p.backup(r, branch)
		if err != nil {
			return fail(err)
		}
		result.BackupRef = ref
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	r.to(StateAnalyzing)
	analysis, err := p.analyzer.Analyze(ctx, branch)
	if err != nil {
		return fail(err)
	}
	result.Analysis = analysis

	var plan *rewrite.Plan
	if analysis.AffectedCommits > 0 {
		plan, err = p.rewriter.ComputePlan(ctx, branch, analysis)
		if err != nil {
			return fail(err)
		}
		result.RewriteRange = plan.Range()
	}

	if !opts.Execute {
		r.to(StatePreviewing)
		result.State = r.state
		r.complete()
		return result, nil
	}

	if analysis.AffectedCommits == 0 {
		logging.Info("no messages to rewrite", "run_id", r.id)
		r.to(StateDone)
		result.State = r.state
		r.complete()
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	r.to(StateMutating)
	if err := p.rewriter.Apply(ctx, plan, result.BackupRef); err != nil {
		return fail(err)
	}

	r.to(StateVerifying)
	if err := p.verifyCommits(ctx, r, branch, result.BackupRef); err != nil {
		return fail(err)
	}

	r.to(StateDone)
	result.State = r.state
	r.complete()
	return result, nil
}

// verifyFiles confirms the recovery point and the branch survived the
// removal. Candidates still visible afterwards are logged rather than
// fatal: backup refs keep pre-clean history reachable, and the removal tool
// decides which refs it rewrites.
func (p *Pipeline) verifyFiles(ctx context.Context, r *run, branch, backupRef string) error {
	if !p.vc.HasBackupRef(backupRef) {
		return errors.VerifyFailed(fmt.Sprintf("backup ref %s no longer resolves", backupRef))
	}
	head, err := p.vc.BranchHead(branch)
	if err != nil {
		return errors.VerifyFailed(fmt.Sprintf("branch %s does not resolve after removal", branch))
	}
	remaining, err := p.scanner.Scan(ctx)
	if err != nil {
		return err
	}
	logging.Info("post-removal state",
		"run_id", r.id,
		"branch", branch,
		"head", head,
		"remaining_candidates", len(remaining),
	)
	return nil
}

// verifyCommits re-analyzes the branch and requires zero affected commits.
// Cleaning is a fixed point, so a correct rewrite always passes.
func (p *Pipeline) verifyCommits(ctx context.Context, r *run, branch, backupRef string) error {
	if !p.vc.HasBackupRef(backupRef) {
		return errors.VerifyFailed(fmt.Sprintf("backup ref %s no longer resolves", backupRef))
	}
	head, err := p.vc.BranchHead(branch)
	if err != nil {
		return errors.VerifyFailed(fmt.Sprintf("branch %s does not resolve after rewrite", branch))
	}
	recheck, err := p.analyzer.Analyze(ctx, branch)
	if err != nil {
		return err
	}
	if recheck.AffectedCommits != 0 {
		return errors.VerifyFailed(fmt.Sprintf("%d commits still carry trailers after rewrite", recheck.AffectedCommits))
	}
	logging.Info("rewrite verified",
		"run_id", r.id,
		"branch", branch,
		"head", head,
		"total_commits", recheck.TotalCommits,
	)
	return nil
}

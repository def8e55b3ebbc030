package removal

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aiscrub/aiscrub/internal/errors"
	"github.com/aiscrub/aiscrub/internal/logging"
)

// Config selects how the external removal tool is invoked.
type Config struct {
	// Command is the removal tool executable, "bfg" by default.
	Command string
	// JarPath, when set, runs the tool as "java -jar JarPath" instead.
	JarPath string
}

// VersionControl is the slice of gitx the runner needs.
type VersionControl interface {
	Path() string
	HasBackupRef(name string) bool
	ExpireReflog(ctx context.Context) error
	GC(ctx context.Context) error
}

// Runner executes removal plans against one repository.
type Runner struct {
	vc  VersionControl
	cfg Config
}

func NewRunner(vc VersionControl, cfg Config) *Runner {
	if cfg.Command == "" {
		cfg.Command = "bfg"
	}
	return &Runner{vc: vc, cfg: cfg}
}

// Commands returns the exact argv of every step the plan implies, removal
// invocations first, then reflog expiry, then compaction. Execute runs this
// same list, so a dry run shows precisely what execute mode would do.
func (r *Runner) Commands(plan Plan) [][]string {
	cmds := make([][]string, 0, plan.Invocations()+2)
	for _, name := range plan.Files {
		cmds = append(cmds, r.toolArgv("--delete-files", name))
	}
	for _, name := range plan.Directories {
		cmds = append(cmds, r.toolArgv("--delete-folders", name))
	}
	cmds = append(cmds,
		[]string{"git", "reflog", "expire", "--expire=now", "--all"},
		[]string{"git", "gc", "--prune=now", "--aggressive"},
	)
	return cmds
}

// Describe renders the plan's command lines for display. It never resolves
// or touches the removal tool, so a dry run cannot fail on a missing binary.
func (r *Runner) Describe(plan Plan) []string {
	cmds := r.Commands(plan)
	lines := make([]string, len(cmds))
	for i, argv := range cmds {
		lines[i] = strings.Join(argv, " ")
	}
	return lines
}

// Execute runs the plan: one removal-tool invocation per unique basename,
// then reflog expiry, then compaction. Compaction is not optional; the tool
// only rewrites refs, and the space comes back in the gc. The first failing
// step aborts the rest.
//
// backupRef must resolve before anything runs; history is never mutated
// without a recovery point.
func (r *Runner) Execute(ctx context.Context, plan Plan, backupRef string) error {
	if plan.Empty() {
		return nil
	}
	if backupRef == "" || !r.vc.HasBackupRef(backupRef) {
		return errors.BackupFailed(fmt.Errorf("ref not resolvable"), backupRef)
	}

	// Everything but the two trailing git steps is a removal invocation.
	cmds := r.Commands(plan)
	for _, argv := range cmds[:len(cmds)-2] {
		if err := r.runTool(ctx, argv); err != nil {
			return err
		}
	}

	logging.Info("expiring reflog", "repo", r.vc.Path())
	if err := r.vc.ExpireReflog(ctx); err != nil {
		return err
	}
	logging.Info("compacting object store", "repo", r.vc.Path())
	if err := r.vc.GC(ctx); err != nil {
		return err
	}
	return nil
}

func (r *Runner) toolArgv(flag, name string) []string {
	argv := []string{r.cfg.Command}
	if r.cfg.JarPath != "" {
		argv = []string{"java", "-jar", r.cfg.JarPath}
	}
	return append(argv, flag, name, r.vc.Path())
}

func (r *Runner) runTool(ctx context.Context, argv []string) error {
	command := strings.Join(argv, " ")
	logging.Info("running removal tool", "command", command)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.vc.Path()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e := errors.RemovalFailed(err, command)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			e = e.WithContext("stderr", s)
		}
		return e
	}
	logging.Debug("removal tool finished", "command", command)
	return nil
}

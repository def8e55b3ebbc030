package gitx

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aiscrub/aiscrub/internal/errors"
)

// runGit runs a git subcommand in the repository directory and returns its
// stdout. Non-zero exits come back as KindGitCommand with stderr attached.
func (r *Repository) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.path

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", errors.GitCommand(err, args, stderr.String())
	}
	return stdout.String(), nil
}

// IsClean reports whether the working tree has no uncommitted changes,
// untracked files included. Rewrites refuse to start otherwise.
func (r *Repository) IsClean(ctx context.Context) (bool, error) {
	out, err := r.runGit(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

// GitDir returns the absolute path of the repository's git directory.
func (r *Repository) GitDir(ctx context.Context) (string, error) {
	out, err := r.runGit(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return "", err
	}
	dir := strings.TrimSpace(out)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.path, dir)
	}
	return dir, nil
}

// ExpireReflog drops every reflog entry immediately so rewritten objects
// lose their last anchors.
func (r *Repository) ExpireReflog(ctx context.Context) error {
	_, err := r.runGit(ctx, "reflog", "expire", "--expire=now", "--all")
	return err
}

// GC repacks the object database and prunes everything unreachable.
func (r *Repository) GC(ctx context.Context) error {
	_, err := r.runGit(ctx, "gc", "--prune=now", "--aggressive")
	return err
}

// ResetHard moves the checked-out branch and working tree to target, which
// is how a backup ref is restored.
func (r *Repository) ResetHard(ctx context.Context, target string) error {
	_, err := r.runGit(ctx, "reset", "--hard", target)
	return err
}

package gitx

import (
	"context"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/aiscrub/aiscrub/internal/errors"
)

// CommitInfo is one commit as seen by the message analyzer.
type CommitInfo struct {
	ID      string
	Subject string
	Message string
	When    time.Time // committer time, UTC
	Parents int
}

// ForEachCommit walks the history of branch newest-first by committer time
// and invokes fn for every commit. An empty branch means the checked-out one.
func (r *Repository) ForEachCommit(ctx context.Context, branch string, fn func(CommitInfo) error) error {
	head, err := r.ResolveBranch(branch)
	if err != nil {
		return err
	}
	iter, err := r.repo.Log(&git.LogOptions{From: head, Order: git.LogOrderCommitterTime})
	if err != nil {
		return errors.Wrap(err, errors.KindGitCommand, "cannot walk branch history")
	}
	defer iter.Close()

	return iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(CommitInfo{
			ID:      c.Hash.String(),
			Subject: firstLine(c.Message),
			Message: c.Message,
			When:    c.Committer.When.UTC(),
			Parents: c.NumParents(),
		})
	})
}

func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		message = message[:i]
	}
	return strings.TrimRight(message, "\r")
}

package gitx

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/aiscrub/aiscrub/internal/errors"
)

// Change identifies one commit in the history stream.
type Change struct {
	ID      string
	Time    time.Time
	Subject string
}

// PathEvent is one path-level change reported by the history stream. For
// renames and copies Path is the destination and OldPath the source; for
// every other status OldPath is empty.
type PathEvent struct {
	Commit  Change
	Status  byte // A, M, D, T, or the leading letter of R<score>/C<score>
	Path    string
	OldPath string
}

// Header and field separators for the log format. Control characters cannot
// appear in commit subjects, so parsing never needs quoting rules.
const (
	commitMark = '\x01'
	fieldMark  = "\x1f"
)

// StreamHistory walks every commit reachable from any ref, oldest first, and
// invokes fn once per path-level change. core.quotePath is disabled so
// non-ASCII paths arrive verbatim instead of octal-escaped. progress, when
// non-nil, receives the running commit count; throttling is the caller's
// concern.
//
// This is the tool's only full-history pass: candidate discovery derives
// everything from these events rather than spawning one git process per path.
func (r *Repository) StreamHistory(ctx context.Context, fn func(PathEvent) error, progress func(commits int)) error {
	args := []string{
		"-c", "core.quotePath=false",
		"log", "--all", "--reverse", "--date-order", "--name-status",
		"--format=%x01%H%x1f%ct%x1f%s",
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.path

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.GitCommand(err, args, "")
	}
	if err := cmd.Start(); err != nil {
		return errors.GitCommand(err, args, stderr.String())
	}

	parseErr := parseHistoryStream(ctx, stdout, fn, progress)
	if parseErr != nil {
		// Stop feeding a consumer that already gave up.
		_ = cmd.Process.Kill()
	}
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if parseErr != nil {
		return parseErr
	}
	if waitErr != nil {
		return errors.GitCommand(waitErr, args, stderr.String())
	}
	return nil
}

// parseHistoryStream decodes the --name-status log format. Lines starting
// with the commit mark open a new commit record; lines containing a tab are
// status entries for the current commit; everything else is filler.
func parseHistoryStream(ctx context.Context, r io.Reader, fn func(PathEvent) error, progress func(commits int)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		current    Change
		haveCommit bool
		commits    int
	)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if line[0] == commitMark {
			if err := ctx.Err(); err != nil {
				return err
			}
			parts := strings.SplitN(line[1:], fieldMark, 3)
			if len(parts) != 3 {
				return errors.New(errors.KindGitCommand, "malformed commit record in history stream")
			}
			secs, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return errors.Wrap(err, errors.KindGitCommand, "malformed commit timestamp in history stream")
			}
			current = Change{ID: parts[0], Time: time.Unix(secs, 0).UTC(), Subject: parts[2]}
			haveCommit = true
			commits++
			if progress != nil {
				progress(commits)
			}
			continue
		}

		if !haveCommit || !strings.ContainsRune(line, '\t') {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[0] == "" {
			continue
		}
		ev := PathEvent{Commit: current, Status: fields[0][0]}
		if (ev.Status == 'R' || ev.Status == 'C') && len(fields) >= 3 {
			ev.OldPath = fields[1]
			ev.Path = fields[2]
		} else {
			ev.Path = fields[1]
		}
		if ev.Path == "" {
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.Wrap(err, errors.KindGitCommand, "reading history stream")
	}
	return nil
}

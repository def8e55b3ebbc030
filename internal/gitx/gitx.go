// Package gitx provides repository access for aiscrub. Reference reads and
// commit walks go through go-git; history streaming and anything that mutates
// the object database shell out to the git binary, which stays the single
// source of truth for rewrite semantics.
package gitx

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/aiscrub/aiscrub/internal/errors"
)

// BackupPrefix is the short-name prefix of every backup branch this tool
// creates before mutating history.
const BackupPrefix = "backup/pre-clean-"

// backupTimeLayout is ISO-8601 basic format in UTC. Colons are illegal in
// refnames, so the extended format is not an option here.
const backupTimeLayout = "20060102T150405Z"

// Repository wraps an opened git repository rooted at a local path.
type Repository struct {
	repo *git.Repository
	path string
}

// Open opens the repository at path. The path itself must contain the
// repository metadata; parent directories are not searched, so pointing the
// tool at a subdirectory of a repo is reported as not versioned.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, errors.NotVersioned(path)
	}
	return &Repository{repo: repo, path: path}, nil
}

// Path returns the worktree root this repository was opened at.
func (r *Repository) Path() string {
	return r.path
}

// CurrentBranch returns the short name of the checked-out branch.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", errors.EmptyHistory("")
	}
	if !head.Name().IsBranch() {
		return "", errors.ConfigError("HEAD is detached; pass an explicit branch")
	}
	return head.Name().Short(), nil
}

// BranchHead returns the hex hash of the branch tip. An empty name resolves
// the checked-out branch.
func (r *Repository) BranchHead(branch string) (string, error) {
	hash, err := r.ResolveBranch(branch)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

// ResolveBranch resolves a branch short name to its tip hash. An empty name
// resolves the checked-out branch.
func (r *Repository) ResolveBranch(branch string) (plumbing.Hash, error) {
	if branch == "" {
		name, err := r.CurrentBranch()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		branch = name
	}
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		// Distinguish a repo with no commits at all from a missing branch.
		if herr := r.EnsureHistory(); herr != nil {
			return plumbing.ZeroHash, errors.EmptyHistory(branch)
		}
		return plumbing.ZeroHash, errors.ConfigErrorf("branch %s not found", branch)
	}
	return ref.Hash(), nil
}

// EnsureHistory reports EmptyHistory when the repository has no commits on
// any branch, which is the state right after git init.
func (r *Repository) EnsureHistory() error {
	if _, err := r.repo.Head(); err == nil {
		return nil
	}
	iter, err := r.repo.Branches()
	if err != nil {
		return errors.EmptyHistory("")
	}
	defer iter.Close()
	if _, err := iter.Next(); err != nil {
		return errors.EmptyHistory("")
	}
	return nil
}

// CreateBackupRef snapshots the tip of branch under a timestamped backup
// branch and returns the new branch's short name. An existing ref with the
// same name is never overwritten.
func (r *Repository) CreateBackupRef(branch string, now time.Time) (string, error) {
	head, err := r.ResolveBranch(branch)
	if err != nil {
		return "", err
	}
	name := BackupPrefix + now.UTC().Format(backupTimeLayout)
	refName := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(refName, false); err == nil {
		return "", errors.BackupFailed(fmt.Errorf("ref already exists"), name)
	}
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(refName, head)); err != nil {
		return "", errors.BackupFailed(err, name)
	}
	return name, nil
}

// BackupRef is one pre-clean snapshot branch.
type BackupRef struct {
	Name   string // short branch name, backup/pre-clean-...
	Target string // commit hash the backup points at
}

// ListBackupRefs returns every backup branch, newest first. The timestamp
// suffix sorts lexicographically, so name order is creation order.
func (r *Repository) ListBackupRefs() ([]BackupRef, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, errors.Wrap(err, errors.KindGitCommand, "cannot list branches")
	}
	defer iter.Close()

	var refs []BackupRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		short := ref.Name().Short()
		if strings.HasPrefix(short, BackupPrefix) {
			refs = append(refs, BackupRef{Name: short, Target: ref.Hash().String()})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.KindGitCommand, "cannot list backup refs")
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name > refs[j].Name })
	return refs, nil
}

// HasBackupRef reports whether the named backup branch exists.
func (r *Repository) HasBackupRef(name string) bool {
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), false)
	return err == nil
}

// DeleteRefsWithPrefix removes every reference whose full name starts with
// prefix, e.g. refs/original/ left behind by filter-branch.
func (r *Repository) DeleteRefsWithPrefix(prefix string) error {
	iter, err := r.repo.References()
	if err != nil {
		return errors.Wrap(err, errors.KindGitCommand, "cannot list references")
	}
	defer iter.Close()

	var doomed []plumbing.ReferenceName
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if strings.HasPrefix(string(ref.Name()), prefix) {
			doomed = append(doomed, ref.Name())
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.KindGitCommand, "cannot scan references")
	}
	for _, name := range doomed {
		if err := r.repo.Storer.RemoveReference(name); err != nil {
			return errors.Wrap(err, errors.KindGitCommand, fmt.Sprintf("cannot delete %s", name))
		}
	}
	return nil
}

// ParentOf returns the first-parent hash of a commit, or empty for a root
// commit.
func (r *Repository) ParentOf(id string) (string, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(id))
	if err != nil {
		return "", errors.Wrap(err, errors.KindGitCommand, fmt.Sprintf("cannot load commit %s", id))
	}
	if commit.NumParents() == 0 {
		return "", nil
	}
	return commit.ParentHashes[0].String(), nil
}


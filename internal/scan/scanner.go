package scan

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/time/rate"

	"github.com/aiscrub/aiscrub/internal/gitx"
	"github.com/aiscrub/aiscrub/internal/logging"
	"github.com/aiscrub/aiscrub/internal/pattern"
)

// Kind says whether a candidate names a blob path or a directory that
// contains them.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Candidate is one path slated for removal. Earliest is the first commit
// that introduced the path, nil when it only ever appeared as a rename or
// copy target.
type Candidate struct {
	Path     string
	Kind     Kind
	Reason   string
	Earliest *gitx.Change
}

// VersionControl is the slice of gitx the scanner needs.
type VersionControl interface {
	EnsureHistory() error
	StreamHistory(ctx context.Context, fn func(gitx.PathEvent) error, progress func(commits int)) error
}

// Scanner finds artifact paths across the whole history of a repository.
type Scanner struct {
	vc      VersionControl
	matcher *pattern.Matcher
	exclude []string
	limiter *rate.Limiter
}

// NewScanner builds a scanner over vc using the compiled rule set. exclude
// holds doublestar patterns; excluded paths never become candidates but still
// count for directory-kind inference.
func NewScanner(vc VersionControl, matcher *pattern.Matcher, exclude []string) *Scanner {
	return &Scanner{
		vc:      vc,
		matcher: matcher,
		exclude: exclude,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// Scan replays all of history once and returns every matching path and
// matching ancestor directory, deduplicated and sorted by path. The result
// is the same whether or not anything will be mutated afterwards.
func (s *Scanner) Scan(ctx context.Context) ([]Candidate, error) {
	if err := s.vc.EnsureHistory(); err != nil {
		return nil, err
	}

	start := time.Now()
	trie := newPathTrie()
	var commits int
	err := s.vc.StreamHistory(ctx, func(ev gitx.PathEvent) error {
		if ev.Status == 'A' {
			c := ev.Commit
			trie.insert(ev.Path, &c)
		} else {
			trie.insert(ev.Path, nil)
		}
		return nil
	}, func(n int) {
		commits = n
		if s.limiter.Allow() {
			logging.Info("scanning history", "commits", n, "paths", trie.tracked)
		}
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var candidates []Candidate

	add := func(path string) {
		if seen[path] || s.excluded(path) {
			return
		}
		reason, ok := s.matcher.Reason(path)
		if !ok {
			return
		}
		seen[path] = true
		kind := KindFile
		if trie.isDir(path) {
			kind = KindDirectory
		}
		candidates = append(candidates, Candidate{
			Path:     path,
			Kind:     kind,
			Reason:   reason,
			Earliest: trie.earliest(path),
		})
	}

	trie.walkTracked(func(path string) {
		add(path)
		// Ancestor directories are matched on their own names, so a rule
		// like ".claude" finds the directory even when nothing inside it
		// matches any rule.
		for dir := parentDir(path); dir != ""; dir = parentDir(dir) {
			add(dir)
		}
	})

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })

	logging.Info("history scan complete",
		"commits", commits,
		"paths", trie.tracked,
		"candidates", len(candidates),
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	return candidates, nil
}

func (s *Scanner) excluded(path string) bool {
	for _, pat := range s.exclude {
		if ok, err := doublestar.Match(pat, path); err == nil && ok {
			return true
		}
	}
	return false
}

func parentDir(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return ""
	}
	return path[:i]
}

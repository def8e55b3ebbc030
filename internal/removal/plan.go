// Package removal batches matched paths into the fewest possible external
// blob-removal invocations and drives them, followed by the mandatory
// reflog expiry and object-store compaction.
package removal

import (
	"path"

	"github.com/aiscrub/aiscrub/internal/scan"
)

// Plan is the partitioned, basename-deduplicated removal work for one run.
// The removal tool deletes by basename across all of history, so two
// candidates that share a basename need only one invocation.
type Plan struct {
	Files       []string // unique file basenames, first-seen order
	Directories []string // unique directory basenames, first-seen order
}

// Empty reports whether the plan has nothing to remove.
func (p Plan) Empty() bool {
	return len(p.Files) == 0 && len(p.Directories) == 0
}

// Invocations counts the external tool runs the plan needs.
func (p Plan) Invocations() int {
	return len(p.Files) + len(p.Directories)
}

// BuildPlan partitions candidates by kind and deduplicates basenames within
// each partition, preserving the order basenames were first seen.
func BuildPlan(candidates []scan.Candidate) Plan {
	var plan Plan
	seenFiles := make(map[string]bool)
	seenDirs := make(map[string]bool)

	for _, c := range candidates {
		base := path.Base(c.Path)
		switch c.Kind {
		case scan.KindDirectory:
			if !seenDirs[base] {
				seenDirs[base] = true
				plan.Directories = append(plan.Directories, base)
			}
		default:
			if !seenFiles[base] {
				seenFiles[base] = true
				plan.Files = append(plan.Files, base)
			}
		}
	}
	return plan
}

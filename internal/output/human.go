package output

import (
	"fmt"
	"io"
	"time"
)

// HumanFormatter writes readable terminal output. Glyphs switches the
// markers between Unicode and plain ASCII so piped output stays clean.
type HumanFormatter struct {
	Glyphs bool
}

func (f *HumanFormatter) bullet() string {
	if f.Glyphs {
		return "•"
	}
	return "-"
}

func (f *HumanFormatter) arrow() string {
	if f.Glyphs {
		return "→"
	}
	return "->"
}

func (f *HumanFormatter) check() string {
	if f.Glyphs {
		return "✓"
	}
	return "*"
}

func (f *HumanFormatter) mode(dryRun bool) string {
	if dryRun {
		return "dry run (no changes made)"
	}
	return "execute"
}

// Files renders a file-artifact report.
func (f *HumanFormatter) Files(w io.Writer, report *FilesReport) error {
	fmt.Fprintf(w, "Repository: %s\n", report.Repo)
	fmt.Fprintf(w, "Branch:     %s\n", report.Branch)
	fmt.Fprintf(w, "Mode:       %s\n", f.mode(report.DryRun))
	if report.BackupRef != "" {
		fmt.Fprintf(w, "Backup:     %s\n", report.BackupRef)
	}
	fmt.Fprintln(w)

	if len(report.Candidates) == 0 {
		fmt.Fprintf(w, "%s No artifact files found in history\n", f.check())
		return nil
	}

	fmt.Fprintf(w, "Found %s in history:\n\n", plural(len(report.Candidates), "artifact path"))
	for _, c := range report.Candidates {
		fmt.Fprintf(w, "  %s %s (%s)\n", f.bullet(), c.Path, c.Kind)
		fmt.Fprintf(w, "    matched: %s\n", c.Reason)
		if c.EarliestChange != nil {
			fmt.Fprintf(w, "    first seen: %s (%s) %q\n",
				shortID(c.EarliestChange.ID),
				c.EarliestChange.Timestamp.UTC().Format(time.RFC3339),
				c.EarliestChange.Summary)
		}
	}

	if len(report.Commands) > 0 {
		fmt.Fprintln(w)
		if report.DryRun {
			fmt.Fprintln(w, "Planned removal commands:")
		} else {
			fmt.Fprintln(w, "Removal commands run:")
		}
		for _, cmd := range report.Commands {
			fmt.Fprintf(w, "  %s %s\n", f.arrow(), cmd)
		}
	}

	if report.DryRun {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Re-run with --execute to rewrite history. A backup ref is created first.")
	}
	return nil
}

// Commits renders an attribution-trailer report.
func (f *HumanFormatter) Commits(w io.Writer, report *CommitsReport) error {
	fmt.Fprintf(w, "Repository: %s\n", report.Repo)
	fmt.Fprintf(w, "Branch:     %s\n", report.Branch)
	fmt.Fprintf(w, "Mode:       %s\n", f.mode(report.DryRun))
	if report.BackupRef != "" {
		fmt.Fprintf(w, "Backup:     %s\n", report.BackupRef)
	}
	fmt.Fprintln(w)

	if report.AffectedCommits == 0 {
		fmt.Fprintf(w, "%s No attribution trailers found in %s\n",
			f.check(), plural(report.TotalCommits, "commit"))
		return nil
	}

	fmt.Fprintf(w, "Scanned %s, %d affected, %s to remove\n",
		plural(report.TotalCommits, "commit"),
		report.AffectedCommits,
		plural(report.TrailersRemoved, "trailer"))
	if report.EarliestAffected != nil {
		fmt.Fprintf(w, "Earliest affected: %s %q\n",
			shortID(report.EarliestAffected.ID), report.EarliestAffected.Subject)
	}
	if report.RewriteRange != "" {
		fmt.Fprintf(w, "Rewrite range:     %s\n", report.RewriteRange)
	}

	if len(report.Preview) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Preview:")
		for _, p := range report.Preview {
			fmt.Fprintf(w, "  %s %s %s\n", f.bullet(), shortID(p.ID), p.Subject)
			for _, t := range p.RemovedTrailers {
				fmt.Fprintf(w, "    removes: %s\n", t)
			}
		}
		if rest := report.AffectedCommits - len(report.Preview); rest > 0 {
			fmt.Fprintf(w, "  ... and %d more\n", rest)
		}
	}

	if report.DryRun {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Re-run with --execute to rewrite messages. A backup ref is created first.")
	}
	return nil
}

// Backups renders the list of recovery refs.
func (f *HumanFormatter) Backups(w io.Writer, report *BackupsReport) error {
	fmt.Fprintf(w, "Repository: %s\n\n", report.Repo)
	if len(report.Backups) == 0 {
		fmt.Fprintln(w, "No backup refs found.")
		return nil
	}
	fmt.Fprintf(w, "%s:\n", plural(len(report.Backups), "backup ref"))
	for _, b := range report.Backups {
		fmt.Fprintf(w, "  %s %s %s %s\n", f.bullet(), b.Name, f.arrow(), shortID(b.Target))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Restore with: aiscrub backups restore <name>")
	return nil
}

// shortID abbreviates a full hash for display.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aiscrub/aiscrub/internal/output"
	"github.com/aiscrub/aiscrub/internal/pipeline"
)

var commitsCmd = &cobra.Command{
	Use:   "commits",
	Short: "Find attribution trailers in commit messages on one branch",
	Long: `Walks the branch's commits and reports every message that carries an
AI attribution trailer, with a preview of the cleaned form.

Without --execute this is a preview. With --execute the working tree
must be clean; a backup branch is created, then the smallest range of
history containing every affected commit is rewritten with cleaned
messages, and the branch is re-analyzed to confirm nothing remains.`,
	RunE: runCommits,
}

func init() {
	commitsCmd.Flags().Bool("execute", false, "rewrite history (default: dry run)")
}

func runCommits(cmd *cobra.Command, args []string) error {
	execute, _ := cmd.Flags().GetBool("execute")

	pipe, _, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	result, err := pipe.RunCommits(cmd.Context(), pipeline.Options{
		Branch:  cfg.Branch,
		Execute: execute,
	})
	if err != nil {
		return err
	}

	report := output.NewCommitsReport(cfg.Repo, !execute, result.BackupRef, result.Analysis, result.RewriteRange)
	return newFormatter(cfg).Commits(os.Stdout, report)
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aiscrub/aiscrub/internal/output"
	"github.com/aiscrub/aiscrub/internal/pipeline"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Find artifact files and directories across all history",
	Long: `Scans every commit reachable from any ref for paths matching the
active artifact rules and reports where each one first appeared.

Without --execute this is a preview: the exact removal commands are
printed and nothing runs. With --execute a backup branch is created,
then each unique basename is removed from all of history with the
configured removal tool, followed by reflog expiry and repacking.`,
	RunE: runFiles,
}

func init() {
	filesCmd.Flags().Bool("execute", false, "rewrite history (default: dry run)")
	filesCmd.Flags().StringArray("rule", nil, "additional artifact name, glob syntax (repeatable)")
	filesCmd.Flags().String("rules-file", "", "YAML file with additional rules")
	filesCmd.Flags().Bool("no-default-rules", false, "disable the built-in rule table")
	filesCmd.Flags().Bool("extended", false, "use the extended built-in rule table")
	filesCmd.Flags().StringArray("exclude", nil, "path pattern to skip, doublestar syntax (repeatable)")

	filesCmd.MarkFlagsMutuallyExclusive("no-default-rules", "extended")
}

func runFiles(cmd *cobra.Command, args []string) error {
	execute, _ := cmd.Flags().GetBool("execute")

	pipe, _, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	result, err := pipe.RunFiles(cmd.Context(), pipeline.Options{
		Branch:  cfg.Branch,
		Execute: execute,
	})
	if err != nil {
		return err
	}

	report := output.NewFilesReport(cfg.Repo, result.Branch, !execute, result.BackupRef, result.Candidates, result.Commands)
	return newFormatter(cfg).Files(os.Stdout, report)
}

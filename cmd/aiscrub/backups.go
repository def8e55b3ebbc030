package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aiscrub/aiscrub/internal/errors"
	"github.com/aiscrub/aiscrub/internal/gitx"
	"github.com/aiscrub/aiscrub/internal/logging"
	"github.com/aiscrub/aiscrub/internal/output"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List the recovery refs created before mutating runs",
	RunE:  runBackups,
}

var backupsRestoreCmd = &cobra.Command{
	Use:   "restore <ref>",
	Short: "Hard-reset the checked-out branch to a backup ref",
	Long: `Points the checked-out branch back at a backup ref, discarding the
rewritten history. The working tree must be clean; the reset is a
plain git reset --hard, so the ref itself survives and can be
restored again.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupsRestore,
}

func init() {
	backupsCmd.AddCommand(backupsRestoreCmd)
}

func runBackups(cmd *cobra.Command, args []string) error {
	repo, err := gitx.Open(cfg.Repo)
	if err != nil {
		return err
	}

	refs, err := repo.ListBackupRefs()
	if err != nil {
		return err
	}

	report := output.NewBackupsReport(cfg.Repo, refs)
	return newFormatter(cfg).Backups(os.Stdout, report)
}

func runBackupsRestore(cmd *cobra.Command, args []string) error {
	name := strings.TrimPrefix(args[0], "refs/heads/")

	repo, err := gitx.Open(cfg.Repo)
	if err != nil {
		return err
	}
	if !repo.HasBackupRef(name) {
		return errors.ConfigErrorf("no backup ref named %q; run 'aiscrub backups' to list them", name)
	}

	ctx := cmd.Context()
	clean, err := repo.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return errors.DirtyWorktree()
	}

	branch, err := repo.CurrentBranch()
	if err != nil {
		return err
	}
	if err := repo.ResetHard(ctx, name); err != nil {
		return err
	}

	logging.Info("branch restored", "branch", branch, "ref", name)
	fmt.Printf("Restored %s to %s\n", branch, name)
	return nil
}

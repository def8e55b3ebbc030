package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/aiscrub/aiscrub/internal/message"
	"github.com/aiscrub/aiscrub/internal/rewrite"
)

// msgFilterCmd is the per-commit message filter the history rewrite invokes:
// raw message on stdin, cleaned message on stdout, nothing else. Hidden
// because it is an implementation detail of 'commits --execute', but keeping
// it a real subcommand means preview and rewrite share one compiled cleaner.
var msgFilterCmd = &cobra.Command{
	Use:    rewrite.FilterSubcommand,
	Short:  "Clean one commit message from stdin (used during history rewrite)",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		result := message.MustCleaner(message.DefaultTrailerRules()).Clean(string(raw))
		_, err = io.WriteString(cmd.OutOrStdout(), result.Cleaned)
		return err
	},
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aiscrub/aiscrub/internal/config"
	"github.com/aiscrub/aiscrub/internal/gitx"
	"github.com/aiscrub/aiscrub/internal/logging"
	"github.com/aiscrub/aiscrub/internal/message"
	"github.com/aiscrub/aiscrub/internal/output"
	"github.com/aiscrub/aiscrub/internal/pattern"
	"github.com/aiscrub/aiscrub/internal/pipeline"
	"github.com/aiscrub/aiscrub/internal/removal"
	"github.com/aiscrub/aiscrub/internal/rewrite"
	"github.com/aiscrub/aiscrub/internal/scan"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logging.Close()
		os.Exit(1)
	}
	logging.Close()
}

var rootCmd = &cobra.Command{
	Use:   "aiscrub",
	Short: "Remove AI-assistant artifacts from git repositories",
	Long: `aiscrub finds the traces AI coding assistants leave in a repository -
artifact files and directories anywhere in history, and attribution
trailers in commit messages - and removes them safely.

Every command is a dry run by default and prints exactly what would
happen. Mutation requires --execute and always creates a timestamped
backup branch first.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The message filter runs once per rewritten commit and must stay
		// cheap and quiet: no config loading, no log initialization.
		switch cmd.Name() {
		case rewrite.FilterSubcommand, "version", "help":
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, cfg)

		result := cfg.Validate()
		if err := result.Err(); err != nil {
			return err
		}
		if err := initLogging(cfg); err != nil {
			return err
		}
		for _, warning := range result.Warnings {
			logging.Warn(warning)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .aiscrub/config.yaml)")
	pf.String("repo", ".", "repository to operate on")
	pf.String("branch", "", "branch to back up and rewrite (default: the checked-out branch)")
	pf.Bool("json", false, "machine-readable output")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.String("log-file", "", "also write logs to this file")

	rootCmd.SetVersionTemplate(`aiscrub {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(commitsCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(msgFilterCmd)
	rootCmd.AddCommand(versionCmd)
}

// applyFlagOverrides copies explicitly-set flags over the loaded config, so
// precedence is flags > environment > config file > defaults.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("repo") {
		cfg.Repo, _ = flags.GetString("repo")
	}
	if flags.Changed("branch") {
		cfg.Branch, _ = flags.GetString("branch")
	}
	if flags.Changed("json") {
		cfg.Output.JSON, _ = flags.GetBool("json")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("log-file") {
		cfg.Log.File, _ = flags.GetString("log-file")
	}
	if flags.Changed("rule") {
		cfg.Rules.Custom, _ = flags.GetStringArray("rule")
	}
	if flags.Changed("rules-file") {
		cfg.Rules.File, _ = flags.GetString("rules-file")
	}
	if flags.Changed("no-default-rules") {
		cfg.Rules.NoDefaults, _ = flags.GetBool("no-default-rules")
	}
	if flags.Changed("extended") {
		cfg.Rules.Extended, _ = flags.GetBool("extended")
	}
	if flags.Changed("exclude") {
		cfg.Rules.Exclude, _ = flags.GetStringArray("exclude")
	}
}

func initLogging(cfg *config.Config) error {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	return logging.Initialize(logging.Config{
		Level:      level,
		OutputFile: cfg.Log.File,
		JSONFormat: cfg.Log.Format == "json",
	})
}

// buildPipeline wires one repository's collaborators together. Both cleaning
// commands use the identical construction, so a dry run exercises the same
// detection path execute mode does.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, *gitx.Repository, error) {
	repo, err := gitx.Open(cfg.Repo)
	if err != nil {
		return nil, nil, err
	}

	matcher, err := buildMatcher(cfg)
	if err != nil {
		return nil, nil, err
	}

	scanner := scan.NewScanner(repo, matcher, cfg.Rules.Exclude)
	remover := removal.NewRunner(repo, removal.Config{
		Command: cfg.Removal.Command,
		JarPath: cfg.Removal.JarPath,
	})
	analyzer := message.NewAnalyzer(repo, message.MustCleaner(message.DefaultTrailerRules()))
	rewriter := rewrite.NewRewriter(repo)

	return pipeline.New(repo, scanner, remover, analyzer, rewriter), repo, nil
}

// buildMatcher compiles the effective rule set for this invocation.
func buildMatcher(cfg *config.Config) (*pattern.Matcher, error) {
	var fileRules []pattern.Rule
	if cfg.Rules.File != "" {
		var err error
		fileRules, err = pattern.LoadRulesFile(cfg.Rules.File)
		if err != nil {
			return nil, err
		}
	}
	rules := pattern.Assemble(cfg.Rules.Custom, fileRules, !cfg.Rules.NoDefaults, cfg.Rules.Extended)
	return pattern.Compile(rules)
}

func newFormatter(cfg *config.Config) output.Formatter {
	return output.NewFormatter(output.DetectFormat(cfg.Output.JSON))
}

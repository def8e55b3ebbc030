// Package config loads aiscrub settings from defaults, an optional YAML
// config file, .env files, and AISCRUB_* environment variables, in that
// order of increasing precedence. Command-line flags override everything
// and are applied by the CLI layer after Load.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envKeyReplacer maps nested config keys to environment names, so
// "rules.extended" resolves from AISCRUB_RULES_EXTENDED.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Config holds all settings one invocation runs with.
type Config struct {
	// Repo is the repository to operate on. Must itself contain the git
	// metadata; parent directories are not searched.
	Repo string `yaml:"repo" mapstructure:"repo"`

	// Branch is the branch to analyze and rewrite. Empty means the
	// checked-out branch.
	Branch string `yaml:"branch" mapstructure:"branch"`

	Rules   RulesConfig   `yaml:"rules" mapstructure:"rules"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Removal RemovalConfig `yaml:"removal" mapstructure:"removal"`
}

// RulesConfig selects which artifact rules are active. Execute mode is
// deliberately absent: mutation is a per-run decision and only ever comes
// from the --execute flag, never from a file or the environment.
type RulesConfig struct {
	// Custom lists artifact names matched as exact basenames (glob syntax
	// allowed). Always additive to whichever built-in table is selected.
	Custom []string `yaml:"custom" mapstructure:"custom"`

	// File is a YAML rules file with additional glob/regex rules.
	File string `yaml:"file" mapstructure:"file"`

	// NoDefaults disables the built-in table. Ignored when Extended is set.
	NoDefaults bool `yaml:"no_defaults" mapstructure:"no_defaults"`

	// Extended selects the wider built-in table instead of the default one.
	Extended bool `yaml:"extended" mapstructure:"extended"`

	// Exclude lists path patterns (doublestar syntax) never reported as
	// candidates.
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
}

type OutputConfig struct {
	// JSON switches stdout to machine-readable output.
	JSON bool `yaml:"json" mapstructure:"json"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level"`
	// Format is text or json.
	Format string `yaml:"format" mapstructure:"format"`
	// File, when set, additionally writes logs to this path.
	File string `yaml:"file" mapstructure:"file"`
}

type RemovalConfig struct {
	// Command is the blob-removal executable, "bfg" by default.
	Command string `yaml:"command" mapstructure:"command"`
	// JarPath, when set, runs the tool as "java -jar <JarPath>" instead.
	JarPath string `yaml:"jar_path" mapstructure:"jar_path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Repo: ".",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Removal: RemovalConfig{
			Command: "bfg",
		},
	}
}

// Load loads configuration from file and environment.
func Load(path string) (*Config, error) {
	// Load .env files first so AISCRUB_* values they define are visible
	// to viper's AutomaticEnv below.
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults; every key registered here is also resolvable from the
	// environment as AISCRUB_<KEY> with dots replaced by underscores.
	cfg := Default()
	v.SetDefault("repo", cfg.Repo)
	v.SetDefault("branch", cfg.Branch)
	v.SetDefault("rules.custom", cfg.Rules.Custom)
	v.SetDefault("rules.file", cfg.Rules.File)
	v.SetDefault("rules.no_defaults", cfg.Rules.NoDefaults)
	v.SetDefault("rules.extended", cfg.Rules.Extended)
	v.SetDefault("rules.exclude", cfg.Rules.Exclude)
	v.SetDefault("output.json", cfg.Output.JSON)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("removal.command", cfg.Removal.Command)
	v.SetDefault("removal.jar_path", cfg.Removal.JarPath)

	v.SetEnvPrefix("AISCRUB")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Search standard locations: repo-local first, then the home dir.
		v.SetConfigName("config")
		v.AddConfigPath(".aiscrub")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".aiscrub"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine; defaults and environment apply.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandPaths(cfg)
	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence. godotenv never
// overrides variables already set in the real environment.
func loadEnvFiles() {
	envFiles := []string{
		".env.local", // local overrides (highest precedence)
		".env",       // main environment file
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	// Also try the tool's home directory.
	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".aiscrub", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// expandPaths expands ~ in every path-valued setting.
func expandPaths(cfg *Config) {
	cfg.Repo = expandPath(cfg.Repo)
	cfg.Rules.File = expandPath(cfg.Rules.File)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Removal.JarPath = expandPath(cfg.Removal.JarPath)
}

// expandPath expands ~ to the home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

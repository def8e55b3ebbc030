package pattern

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiscrub/aiscrub/internal/errors"
)

func TestMatchingIsCaseInsensitive(t *testing.T) {
	m, err := Compile([]Rule{
		{Kind: Glob, Source: "CLAUDE.md", Reason: "config"},
		{Kind: Regex, Source: `(^|/)\.claude(/|$)`, Reason: "settings"},
	})
	require.NoError(t, err)

	paths := []string{"CLAUDE.md", "docs/claude.MD", ".Claude/settings.json", "src/.CLAUDE/hooks"}
	for _, p := range paths {
		assert.Equal(t, m.Matches(p), m.Matches(strings.ToUpper(p)), "upper-casing changed result for %q", p)
		assert.Equal(t, m.Matches(p), m.Matches(strings.ToLower(p)), "lower-casing changed result for %q", p)
	}
	assert.True(t, m.Matches("claude.md"))
	assert.True(t, m.Matches("CLAUDE.MD"))
}

func TestDirectoryRuleMatchesWholeBasenameOnly(t *testing.T) {
	m, err := Compile([]Rule{{Kind: Glob, Source: "temp", Reason: "temp directory"}})
	require.NoError(t, err)

	assert.True(t, m.Matches("temp"))
	assert.True(t, m.Matches("project/temp"))
	assert.False(t, m.Matches("temporary"))
	assert.False(t, m.Matches("other/temp-backup"))
}

func TestReasonIsFirstMatchWins(t *testing.T) {
	m, err := Compile([]Rule{
		{Kind: Glob, Source: "*.md", Reason: "markdown file"},
		{Kind: Glob, Source: "CLAUDE.md", Reason: "Claude project configuration file"},
	})
	require.NoError(t, err)

	reason, ok := m.Reason("CLAUDE.md")
	require.True(t, ok)
	assert.Equal(t, "markdown file", reason)
}

func TestEmptyRuleListNeverMatches(t *testing.T) {
	m, err := Compile(nil)
	require.NoError(t, err)
	assert.False(t, m.Matches("CLAUDE.md"))
	_, ok := m.Reason("CLAUDE.md")
	assert.False(t, ok)
}

func TestEmptyPathNeverMatches(t *testing.T) {
	m, err := Compile([]Rule{{Kind: Glob, Source: "*", Reason: "anything"}})
	require.NoError(t, err)
	assert.False(t, m.Matches(""))
}

func TestUnusualPaths(t *testing.T) {
	m, err := Compile([]Rule{
		{Kind: Glob, Source: "my notes.md", Reason: "notes"},
		{Kind: Glob, Source: "résumé*", Reason: "resume"},
	})
	require.NoError(t, err)

	assert.True(t, m.Matches("dir with spaces/My Notes.MD"))
	assert.True(t, m.Matches("docs/RÉSUMÉ.doc"))

	long := strings.Repeat("nested/", 200) + "my notes.md"
	require.Greater(t, len(long), 1000)
	assert.True(t, m.Matches(long))
	assert.False(t, m.Matches(strings.Repeat("nested/", 200)+"my notes.md.bak"))
}

func TestRegexRuleAppliesToFullPath(t *testing.T) {
	m, err := Compile([]Rule{{Kind: Regex, Source: `(^|/)claude[-_.][^/]*$`, Reason: "claude artifact"}})
	require.NoError(t, err)

	assert.True(t, m.Matches("claude-x.txt"))
	assert.True(t, m.Matches("src/claude_notes.md"))
	assert.True(t, m.Matches("SRC/CLAUDE-X.TXT"))
	assert.False(t, m.Matches("myclaude-x.txt"))
}

func TestSlashedGlobAnchorsToRepoRoot(t *testing.T) {
	m, err := Compile([]Rule{{Kind: Glob, Source: ".github/copilot-instructions.md", Reason: "copilot"}})
	require.NoError(t, err)

	assert.True(t, m.Matches(".github/copilot-instructions.md"))
	assert.False(t, m.Matches("sub/.github/copilot-instructions.md"))
}

func TestCompileRejectsRegexSyntaxInGlobRules(t *testing.T) {
	_, err := Compile([]Rule{{Kind: Glob, Source: `\d+`, Reason: "bad"}})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidPattern))
}

func TestDefaultRulesScenario(t *testing.T) {
	m, err := Compile(DefaultRules())
	require.NoError(t, err)

	reason, ok := m.Reason("CLAUDE.md")
	require.True(t, ok)
	assert.Equal(t, "Claude project configuration file", reason)

	assert.False(t, m.Matches("notes.txt"))
	assert.True(t, m.Matches(".claude"))
	assert.True(t, m.Matches("deep/nested/.claude"))
}

func TestExtendedRulesExceptionFixture(t *testing.T) {
	m, err := Compile(ExtendedRules())
	require.NoError(t, err)

	// Hand-tuned pairs: bare claude names are spared, suffixed ones match.
	assert.False(t, m.Matches("claude.txt"))
	assert.False(t, m.Matches("docs/claude"))
	assert.True(t, m.Matches("claude-x.txt"))
	assert.True(t, m.Matches("claude_scratch.md"))

	// Extended is a superset of the default table.
	reason, ok := m.Reason("CLAUDE.md")
	require.True(t, ok)
	assert.Equal(t, "Claude project configuration file", reason)
	assert.True(t, m.Matches(".aider.chat.history.md"))
	assert.True(t, m.Matches(".cursorrules"))
}

func TestCustomRulesBehaveAsExactBasenames(t *testing.T) {
	m, err := Compile(CustomRules([]string{"temp", "scratch"}))
	require.NoError(t, err)

	assert.True(t, m.Matches("temp"))
	assert.True(t, m.Matches("a/b/scratch"))
	assert.False(t, m.Matches("scratchpad"))

	reason, ok := m.Reason("temp")
	require.True(t, ok)
	assert.Contains(t, reason, `"temp"`)
}

func TestLoadRulesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `rules:
  - pattern: "*.scratch"
    reason: "scratch file"
  - pattern: "(^|/)tmp[0-9]+$"
    kind: regex
  - pattern: "build-out"
    kind: glob
    reason: "build output"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rules, err := LoadRulesFile(path)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, Glob, rules[0].Kind)
	assert.Equal(t, Regex, rules[1].Kind)
	assert.Equal(t, "matches rule (^|/)tmp[0-9]+$", rules[1].Reason)

	m, err := Compile(rules)
	require.NoError(t, err)
	assert.True(t, m.Matches("notes.scratch"))
	assert.True(t, m.Matches("work/tmp42"))
	assert.True(t, m.Matches("ci/build-out"))
}

func TestLoadRulesFileErrors(t *testing.T) {
	_, err := LoadRulesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindPatternSource))

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rules:\n  - pattern: x\n    kind: pcre\n"), 0644))
	_, err = LoadRulesFile(bad)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfig))
}

func TestAssembleSelectsOneBuiltinTable(t *testing.T) {
	defaults := Assemble(nil, nil, true, false)
	assert.Equal(t, DefaultRules(), defaults)

	extended := Assemble(nil, nil, true, true)
	assert.Equal(t, ExtendedRules(), extended, "extended mode replaces the default table")

	custom := Assemble([]string{"scratch.txt"}, nil, false, false)
	require.Len(t, custom, 1)
	assert.Equal(t, "scratch.txt", custom[0].Source)

	both := Assemble([]string{"scratch.txt"}, nil, true, false)
	require.Len(t, both, 1+len(DefaultRules()))
	assert.Equal(t, "scratch.txt", both[0].Source, "custom rules come first")

	none := Assemble(nil, nil, false, false)
	assert.Empty(t, none)
}

func TestAssembleKeepsFileRulesActive(t *testing.T) {
	fileRules := []Rule{{Kind: Glob, Source: "*.scratch", Reason: "scratch file"}}
	rules := Assemble([]string{"exact.txt"}, fileRules, true, false)

	m, err := Compile(rules)
	require.NoError(t, err)

	reason, ok := m.Reason("exact.txt")
	require.True(t, ok)
	assert.Equal(t, `user-specified artifact name "exact.txt"`, reason)

	assert.True(t, m.Matches("notes.scratch"))
	assert.True(t, m.Matches("CLAUDE.md"), "defaults stay active alongside custom rules")
}

package pattern

// DefaultRules returns the core artifact table: configuration and state files
// that Claude-family assistants drop into a working tree. Returned fresh each
// call so independent matchers never share rule slices.
func DefaultRules() []Rule {
	return []Rule{
		{Kind: Glob, Source: "CLAUDE.md", Reason: "Claude project configuration file"},
		{Kind: Glob, Source: "CLAUDE.local.md", Reason: "Claude local configuration file"},
		{Kind: Glob, Source: ".claude", Reason: "Claude settings directory"},
		{Kind: Glob, Source: ".claude.json", Reason: "Claude state file"},
		{Kind: Glob, Source: ".mcp.json", Reason: "Model Context Protocol server configuration"},
	}
}

// ExtendedRules returns the wider artifact table: everything in DefaultRules
// plus patterns for other assistants and looser Claude-prefixed names. The
// claude* rule carries hand-tuned exceptions: a file literally named claude or
// claude.txt is presumed user content, while claude-x.txt style names match.
func ExtendedRules() []Rule {
	rules := DefaultRules()
	return append(rules,
		Rule{
			Kind:       Glob,
			Source:     "claude*",
			Reason:     "Claude-prefixed artifact",
			Exceptions: []string{"claude", "claude.txt"},
		},
		Rule{Kind: Glob, Source: ".aider*", Reason: "Aider assistant artifact"},
		Rule{Kind: Glob, Source: ".cursor", Reason: "Cursor settings directory"},
		Rule{Kind: Glob, Source: ".cursorrules", Reason: "Cursor rules file"},
		Rule{Kind: Glob, Source: ".cursorignore", Reason: "Cursor ignore file"},
		Rule{Kind: Glob, Source: ".windsurfrules", Reason: "Windsurf rules file"},
		Rule{Kind: Glob, Source: "GEMINI.md", Reason: "Gemini project configuration file"},
		Rule{Kind: Glob, Source: "AGENTS.md", Reason: "Agent instructions file"},
		Rule{Kind: Glob, Source: "copilot-instructions.md", Reason: "Copilot instructions file"},
		Rule{Kind: Glob, Source: ".codex", Reason: "Codex settings directory"},
	)
}

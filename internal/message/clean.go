// Package message strips AI-attribution trailers from commit messages. The
// Cleaner here is the single source of truth for that transform: the analyzer
// previews with it and the history rewrite pipes every message through the
// same compiled rules, so preview and apply cannot drift apart.
package message

import (
	"regexp"
	"strings"

	"github.com/aiscrub/aiscrub/internal/errors"
)

// TrailerRule identifies one kind of attribution trailer by regular
// expression. Patterns are applied with global multiline removal.
type TrailerRule struct {
	Name        string
	Pattern     string
	Description string
}

// DefaultTrailerRules returns the built-in attribution trailer table. A fresh
// slice each call; callers may append without affecting others.
func DefaultTrailerRules() []TrailerRule {
	return []TrailerRule{
		{
			Name:        "robot-attribution",
			Pattern:     `(?im)^[ \t]*🤖[ \t]*generated with[^\n]*$`,
			Description: "robot-emoji 'Generated with' attribution line",
		},
		{
			Name:        "generated-by-tool",
			Pattern:     `(?im)^[ \t]*generated (?:with|by)[ \t]+(?:\[?claude\b|chatgpt|gpt-|github copilot|copilot|gemini|cursor|aider|codex|an? ai\b)[^\n]*$`,
			Description: "'Generated with <AI tool>' attribution line",
		},
		{
			Name:        "ai-co-author",
			Pattern:     `(?im)^[ \t]*co-authored-by:[^\n]*\b(?:claude|gpt|chatgpt|copilot|cursor|gemini|codex|devin|aider|assistant|noreply@anthropic\.com)\b[^\n]*$`,
			Description: "Co-Authored-By trailer naming an AI assistant",
		},
	}
}

type compiledTrailer struct {
	rule TrailerRule
	re   *regexp.Regexp
}

// Cleaner applies a fixed trailer-rule table to raw commit messages.
type Cleaner struct {
	trailers []compiledTrailer
}

// NewCleaner compiles the given trailer rules. A bad pattern is a
// configuration error naming the rule.
func NewCleaner(rules []TrailerRule) (*Cleaner, error) {
	c := &Cleaner{trailers: make([]compiledTrailer, 0, len(rules))}
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, errors.ConfigErrorf("trailer rule %s: %v", rule.Name, err)
		}
		c.trailers = append(c.trailers, compiledTrailer{rule: rule, re: re})
	}
	return c, nil
}

// MustCleaner is NewCleaner for the built-in tables, where compilation
// failure is a programming error.
func MustCleaner(rules []TrailerRule) *Cleaner {
	c, err := NewCleaner(rules)
	if err != nil {
		panic(err)
	}
	return c
}

// CleanResult is the outcome of cleaning one message.
type CleanResult struct {
	Cleaned string
	Matched []string // removed trailer lines, in removal order, whitespace-trimmed
}

// Changed reports whether cleaning altered the message at all, trailing-blank
// normalization included.
func (r CleanResult) Changed(raw string) bool {
	return r.Cleaned != raw
}

var runsOfBlankLines = regexp.MustCompile(`\n{3,}`)

// Clean removes every matching trailer, collapses three or more consecutive
// line breaks to two, strips trailing blank lines, and ends a non-empty
// result with exactly one line break. Clean is a fixed point: applying it to
// its own output changes nothing.
func (c *Cleaner) Clean(raw string) CleanResult {
	out := raw
	var matched []string
	for _, t := range c.trailers {
		for _, m := range t.re.FindAllString(out, -1) {
			if trimmed := strings.TrimSpace(m); trimmed != "" {
				matched = append(matched, trimmed)
			}
		}
		out = t.re.ReplaceAllString(out, "")
	}

	out = runsOfBlankLines.ReplaceAllString(out, "\n\n")
	out = strings.TrimRight(out, " \t\n")
	if out != "" {
		out += "\n"
	}
	return CleanResult{Cleaned: out, Matched: matched}
}

package pattern

import (
	"strings"
	"testing"

	"github.com/aiscrub/aiscrub/internal/errors"
)

func TestValidateGlobPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"digit shorthand", `file\d.txt`, true},
		{"word shorthand", `\w+`, true},
		{"space shorthand", `a\sb`, true},
		{"upper digit shorthand", `\D`, true},
		{"leading anchor", `^temp`, true},
		{"trailing anchor", `temp$`, true},
		{"empty", ``, true},
		{"trailing backslash", `temp\`, true},
		{"optional group", `?(x)`, false},
		{"alternation group", `@(a|b)`, false},
		{"one or more group", `+(x)`, false},
		{"negation group", `!(x)`, false},
		{"braces", `{a,b}`, false},
		{"character class", `[abc]`, false},
		{"negated class", `[!abc]`, false},
		{"range class", `file[0-9].txt`, false},
		{"escaped dollar", `price\$`, false},
		{"plain wildcard", `*.md`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGlobPattern(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateGlobPattern(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
			if err != nil && !errors.IsKind(err, errors.KindInvalidPattern) {
				t.Errorf("ValidateGlobPattern(%q) kind = %v, want invalid_pattern", tt.pattern, errors.GetKind(err))
			}
		})
	}
}

func TestValidationErrorNamesOffendingToken(t *testing.T) {
	err := ValidateGlobPattern(`log\d.txt`)
	if err == nil {
		t.Fatal("expected error for regex digit class in glob")
	}
	if !strings.Contains(err.Error(), `\d`) {
		t.Errorf("error %q does not name the offending token", err.Error())
	}
}

func TestTranslateGlobExpressions(t *testing.T) {
	tests := []struct {
		pattern string
		matches []string
		misses  []string
	}{
		{"*.md", []string{"a.md", "README.md"}, []string{"a.mdx", "md"}},
		{"temp?", []string{"temp1", "tempX"}, []string{"temp", "temp12"}},
		{"file[0-9].txt", []string{"file0.txt", "file9.txt"}, []string{"fileA.txt", "file10.txt"}},
		{"file[!0-9].txt", []string{"fileA.txt"}, []string{"file0.txt"}},
		{"*.{md,txt}", []string{"a.md", "b.txt"}, []string{"c.go"}},
		{"claude?(x).md", []string{"claude.md", "claudex.md"}, []string{"claudexy.md"}},
		{"@(a|bb).log", []string{"a.log", "bb.log"}, []string{"ab.log", "b.log"}},
		{"+(ab).txt", []string{"ab.txt", "abab.txt"}, []string{"a.txt", ".txt"}},
		{"!(claude).txt", []string{"notes.txt", "claudex.txt"}, []string{"claude.txt"}},
		{"!(a|b).md", []string{"c.md"}, []string{"a.md", "b.md"}},
		{"*(ab)c", []string{"c", "abc", "ababc"}, []string{"ac"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			m, err := Compile([]Rule{{Kind: Glob, Source: tt.pattern, Reason: "test"}})
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", tt.pattern, err)
			}
			for _, p := range tt.matches {
				if !m.Matches(p) {
					t.Errorf("pattern %q should match %q", tt.pattern, p)
				}
			}
			for _, p := range tt.misses {
				if m.Matches(p) {
					t.Errorf("pattern %q should not match %q", tt.pattern, p)
				}
			}
		})
	}
}

func TestTranslateGlobStructuralErrors(t *testing.T) {
	bad := []string{"@(a|b", "[abc", "{a,b", "!(a|!(b))"}
	for _, pattern := range bad {
		if _, err := Compile([]Rule{{Kind: Glob, Source: pattern, Reason: "test"}}); err == nil {
			t.Errorf("Compile(%q) succeeded, want structural error", pattern)
		}
	}
}

// Package pattern compiles artifact-name rules into a single case-insensitive
// matcher with first-match-wins reason lookup. Rules come in two flavors:
// wildcard (glob) rules matched against a path's basename, and full regular
// expressions matched against the whole path.
package pattern

import "fmt"

// RuleKind distinguishes wildcard rules from full regular expressions.
type RuleKind int

const (
	// Glob rules use wildcard syntax (*, ?, [...], {a,b} and the extended
	// operators ?(x), @(a|b), +(x), !(x)) and match a whole basename.
	// A rule containing a slash is instead anchored to the repository root.
	Glob RuleKind = iota
	// Regex rules are Go regular expressions applied to the full path.
	// Case-insensitivity is enforced even if the source omits (?i).
	Regex
)

// String returns the YAML/flag spelling of the kind.
func (k RuleKind) String() string {
	switch k {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// ParseRuleKind converts a rules-file kind string into a RuleKind.
// An empty string defaults to Glob.
func ParseRuleKind(s string) (RuleKind, error) {
	switch s {
	case "", "glob":
		return Glob, nil
	case "regex":
		return Regex, nil
	default:
		return Glob, fmt.Errorf("unknown rule kind %q (want glob or regex)", s)
	}
}

// Rule is one artifact-name rule. Immutable once compiled into a Matcher.
type Rule struct {
	Kind   RuleKind
	Source string
	Reason string

	// Exceptions lists exact basenames (compared case-insensitively) that
	// veto an otherwise-matching rule. The extended built-in table uses this
	// for its hand-tuned exclusion pairs, e.g. "claude*" matching claude-x.txt
	// but sparing a plain claude.txt.
	Exceptions []string
}

// CustomRules wraps user-supplied artifact names as glob rules. Plain names
// behave as exact-basename rules; wildcard characters keep their glob meaning.
func CustomRules(names []string) []Rule {
	rules := make([]Rule, 0, len(names))
	for _, name := range names {
		rules = append(rules, Rule{
			Kind:   Glob,
			Source: name,
			Reason: fmt.Sprintf("user-specified artifact name %q", name),
		})
	}
	return rules
}

// Assemble builds the effective rule list for one run. Custom names and
// rules-file entries are always active; exactly one built-in table joins them:
// the extended table when extended is set, otherwise the default table unless
// useDefaults is false. Custom rules come first so their reasons win ties.
func Assemble(custom []string, fileRules []Rule, useDefaults, extended bool) []Rule {
	rules := CustomRules(custom)
	rules = append(rules, fileRules...)
	switch {
	case extended:
		rules = append(rules, ExtendedRules()...)
	case useDefaults:
		rules = append(rules, DefaultRules()...)
	}
	return rules
}

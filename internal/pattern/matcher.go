package pattern

import (
	"regexp"
	"strings"

	"github.com/aiscrub/aiscrub/internal/errors"
)

// Matcher is an ordered set of compiled rules. Matching is case-insensitive
// for every rule kind, and reason lookup is first-match-wins in construction
// order. A Matcher is immutable and safe for concurrent readers.
type Matcher struct {
	rules []compiledRule
}

type compiledRule struct {
	rule       Rule
	re         *regexp.Regexp
	negations  []*regexp.Regexp
	exceptions map[string]struct{}
	matchBase  bool
}

// Compile validates and compiles an ordered rule list. A glob rule containing
// regex-only syntax fails validation before compilation so it is never
// silently misread as a wildcard.
func Compile(rules []Rule) (*Matcher, error) {
	compiled := make([]compiledRule, 0, len(rules))

	for _, r := range rules {
		cr := compiledRule{rule: r}

		switch r.Kind {
		case Glob:
			if err := ValidateGlobPattern(r.Source); err != nil {
				return nil, err
			}
			expr, negSrcs, err := translateGlob(r.Source)
			if err != nil {
				return nil, errors.InvalidPattern(r.Source, err.Error())
			}
			re, err := regexp.Compile("(?i)^" + expr + "$")
			if err != nil {
				return nil, errors.InvalidPattern(r.Source, err.Error())
			}
			cr.re = re
			for _, n := range negSrcs {
				neg, err := regexp.Compile("(?i)^(?:" + n + ")$")
				if err != nil {
					return nil, errors.InvalidPattern(r.Source, err.Error())
				}
				cr.negations = append(cr.negations, neg)
			}
			cr.matchBase = !strings.Contains(r.Source, "/")
		case Regex:
			if r.Source == "" {
				return nil, errors.InvalidPattern(r.Source, "pattern is empty")
			}
			re, err := regexp.Compile(ensureCaseInsensitive(r.Source))
			if err != nil {
				return nil, errors.InvalidPattern(r.Source, err.Error())
			}
			cr.re = re
		default:
			return nil, errors.InvalidPattern(r.Source, "unknown rule kind")
		}

		if len(r.Exceptions) > 0 {
			cr.exceptions = make(map[string]struct{}, len(r.Exceptions))
			for _, e := range r.Exceptions {
				cr.exceptions[strings.ToLower(e)] = struct{}{}
			}
		}

		compiled = append(compiled, cr)
	}

	return &Matcher{rules: compiled}, nil
}

// MustCompile is Compile for rule tables known good at build time.
func MustCompile(rules []Rule) *Matcher {
	m, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return m
}

// Matches reports whether any rule matches the path.
func (m *Matcher) Matches(path string) bool {
	_, ok := m.match(path)
	return ok
}

// Reason returns the description of the first rule (construction order) that
// matches the path.
func (m *Matcher) Reason(path string) (string, bool) {
	r, ok := m.match(path)
	if !ok {
		return "", false
	}
	return r.Reason, true
}

// Len reports the number of compiled rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

func (m *Matcher) match(path string) (Rule, bool) {
	if path == "" || len(m.rules) == 0 {
		return Rule{}, false
	}
	base := basename(path)
	for i := range m.rules {
		if m.rules[i].matches(path, base) {
			return m.rules[i].rule, true
		}
	}
	return Rule{}, false
}

func (cr *compiledRule) matches(full, base string) bool {
	if len(cr.exceptions) > 0 {
		if _, vetoed := cr.exceptions[strings.ToLower(base)]; vetoed {
			return false
		}
	}

	if cr.rule.Kind == Regex {
		return cr.re.MatchString(full)
	}

	target := full
	if cr.matchBase {
		target = base
	}
	if len(cr.negations) == 0 {
		return cr.re.MatchString(target)
	}

	idx := cr.re.FindStringSubmatchIndex(target)
	if idx == nil {
		return false
	}
	for gi, neg := range cr.negations {
		start, end := idx[2*(gi+1)], idx[2*(gi+1)+1]
		if start < 0 {
			continue
		}
		if neg.MatchString(target[start:end]) {
			return false
		}
	}
	return true
}

func ensureCaseInsensitive(src string) string {
	if strings.HasPrefix(src, "(?i") {
		return src
	}
	return "(?i)" + src
}

func basename(p string) string {
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

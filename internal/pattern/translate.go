package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aiscrub/aiscrub/internal/errors"
)

// ValidateGlobPattern rejects wildcard sources that contain full-regex-only
// syntax. Accepting them silently would misinterpret a regex-flavored string
// as a glob, so each rejection names the offending token and its glob-side
// replacement.
func ValidateGlobPattern(src string) error {
	if src == "" {
		return errors.InvalidPattern(src, "pattern is empty")
	}
	if strings.HasPrefix(src, "^") {
		return errors.InvalidPattern(src, "leading ^ is a regex anchor; glob patterns already match the whole name")
	}
	if hasUnescapedTrailingDollar(src) {
		return errors.InvalidPattern(src, "trailing $ is a regex anchor; glob patterns already match the whole name")
	}

	runes := []rune(src)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			continue
		}
		if i+1 >= len(runes) {
			return errors.InvalidPattern(src, "trailing backslash")
		}
		next := runes[i+1]
		switch next {
		case 'd', 'D':
			return errors.InvalidPattern(src, `\d is a regex character class; use [0-9] in a glob`)
		case 'w', 'W':
			return errors.InvalidPattern(src, `\w is a regex character class; use [a-zA-Z0-9_] in a glob`)
		case 's', 'S':
			return errors.InvalidPattern(src, `\s is a regex character class; use a literal space in a glob`)
		}
		i++ // skip the escaped rune
	}
	return nil
}

func hasUnescapedTrailingDollar(src string) bool {
	if !strings.HasSuffix(src, "$") {
		return false
	}
	// Count backslashes directly before the $; an odd count escapes it.
	backslashes := 0
	for i := len(src) - 2; i >= 0 && src[i] == '\\'; i-- {
		backslashes++
	}
	return backslashes%2 == 0
}

// translateGlob converts a validated glob source into a regular expression
// body plus one negation expression per !(...) group, in order of appearance.
// Each !(...) compiles to a capture group; after a positive match the captured
// span is tested against its negation and vetoes the match on success. This
// sidesteps the lookahead syntax Go's regexp engine does not provide.
func translateGlob(src string) (expr string, negations []string, err error) {
	var sb strings.Builder
	runes := []rune(src)
	braceDepth := 0

	i := 0
	for i < len(runes) {
		c := runes[i]
		switch c {
		case '*', '?', '+', '@', '!':
			if i+1 < len(runes) && runes[i+1] == '(' {
				body, next, gerr := extractGroup(runes, i+2)
				if gerr != nil {
					return "", nil, gerr
				}
				alts, subNegs, aerr := translateAlternatives(body)
				if aerr != nil {
					return "", nil, aerr
				}
				switch c {
				case '*':
					sb.WriteString("(?:" + alts + ")*")
				case '?':
					sb.WriteString("(?:" + alts + ")?")
				case '+':
					sb.WriteString("(?:" + alts + ")+")
				case '@':
					sb.WriteString("(?:" + alts + ")")
				case '!':
					if len(subNegs) > 0 {
						return "", nil, fmt.Errorf("nested negation groups are not supported")
					}
					sb.WriteString("([^/]*)")
					negations = append(negations, alts)
				}
				if c != '!' {
					negations = append(negations, subNegs...)
				}
				i = next
				continue
			}
			switch c {
			case '*':
				sb.WriteString("[^/]*")
			case '?':
				sb.WriteString("[^/]")
			default:
				sb.WriteString(regexp.QuoteMeta(string(c)))
			}
		case '[':
			class, next, cerr := extractClass(runes, i)
			if cerr != nil {
				return "", nil, cerr
			}
			sb.WriteString(class)
			i = next
			continue
		case '{':
			braceDepth++
			sb.WriteString("(?:")
		case '}':
			if braceDepth == 0 {
				sb.WriteString(regexp.QuoteMeta("}"))
			} else {
				braceDepth--
				sb.WriteString(")")
			}
		case ',':
			if braceDepth > 0 {
				sb.WriteString("|")
			} else {
				sb.WriteString(",")
			}
		case '\\':
			if i+1 >= len(runes) {
				return "", nil, fmt.Errorf("trailing backslash")
			}
			sb.WriteString(regexp.QuoteMeta(string(runes[i+1])))
			i += 2
			continue
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
		i++
	}

	if braceDepth != 0 {
		return "", nil, fmt.Errorf("unbalanced { in pattern")
	}
	return sb.String(), negations, nil
}

// extractGroup returns the raw body of an extended-operator group whose
// opening parenthesis sits at start-1, plus the index one past the closer.
func extractGroup(runes []rune, start int) (string, int, error) {
	depth := 1
	for i := start; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return string(runes[start:i]), i + 1, nil
			}
		}
	}
	return "", 0, fmt.Errorf("unterminated group (missing closing parenthesis)")
}

// translateAlternatives splits a group body on top-level | and translates each
// branch, returning the joined alternation and any nested negations.
func translateAlternatives(body string) (string, []string, error) {
	var parts []string
	var negs []string
	depth := 0
	runes := []rune(body)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
		case '|':
			if depth == 0 {
				parts = append(parts, string(runes[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, string(runes[start:]))

	translated := make([]string, 0, len(parts))
	for _, p := range parts {
		expr, subNegs, err := translateGlob(p)
		if err != nil {
			return "", nil, err
		}
		translated = append(translated, expr)
		negs = append(negs, subNegs...)
	}
	return strings.Join(translated, "|"), negs, nil
}

// extractClass copies a [...] character class, converting the glob negation
// marker ! into the regex ^. The body otherwise passes through unchanged, so
// ranges like [a-z0-9] keep their meaning.
func extractClass(runes []rune, start int) (string, int, error) {
	var sb strings.Builder
	sb.WriteString("[")
	i := start + 1
	if i < len(runes) && (runes[i] == '!' || runes[i] == '^') {
		sb.WriteString("^")
		i++
	}
	// A ] immediately after the opener (or negation marker) is literal.
	if i < len(runes) && runes[i] == ']' {
		sb.WriteString(`\]`)
		i++
	}
	for i < len(runes) {
		switch runes[i] {
		case ']':
			sb.WriteString("]")
			return sb.String(), i + 1, nil
		case '\\':
			if i+1 >= len(runes) {
				return "", 0, fmt.Errorf("trailing backslash in character class")
			}
			sb.WriteString(`\` + string(runes[i+1]))
			i += 2
		default:
			sb.WriteString(string(runes[i]))
			i++
		}
	}
	return "", 0, fmt.Errorf("unterminated character class (missing ])")
}

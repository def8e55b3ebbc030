package pattern

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aiscrub/aiscrub/internal/errors"
)

type rulesFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Pattern    string   `yaml:"pattern"`
	Kind       string   `yaml:"kind"`
	Reason     string   `yaml:"reason"`
	Exceptions []string `yaml:"exceptions"`
}

// LoadRulesFile reads additional rules from a YAML file:
//
//	rules:
//	  - pattern: "*.scratch"
//	    kind: glob
//	    reason: "scratch file"
//
// Kind defaults to glob; reason defaults to a generic description. The rules
// are returned unvalidated; Compile performs the syntax checks.
func LoadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.PatternSource(err, path)
	}

	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, errors.PatternSource(err, path)
	}

	rules := make([]Rule, 0, len(rf.Rules))
	for _, entry := range rf.Rules {
		if entry.Pattern == "" {
			return nil, errors.ConfigErrorf("rules file %s: entry with empty pattern", path)
		}
		kind, err := ParseRuleKind(entry.Kind)
		if err != nil {
			return nil, errors.ConfigErrorf("rules file %s: %v", path, err)
		}
		reason := entry.Reason
		if reason == "" {
			reason = "matches rule " + entry.Pattern
		}
		rules = append(rules, Rule{
			Kind:       kind,
			Source:     entry.Pattern,
			Reason:     reason,
			Exceptions: entry.Exceptions,
		})
	}
	return rules, nil
}

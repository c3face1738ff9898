package ghidra

// stderr.go filters known-benign noise out of the analyzer's stderr so the
// success predicate only sees genuine error text.

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed stderr_patterns.yaml
var stderrPatternsYAML []byte

// noisePattern is one entry of the benign-stderr table.
type noisePattern struct {
	Match     string `yaml:"match"`
	Rationale string `yaml:"rationale"`
}

var noisePatterns = loadNoisePatterns()

func loadNoisePatterns() []noisePattern {
	var table struct {
		Patterns []noisePattern `yaml:"patterns"`
	}
	if err := yaml.Unmarshal(stderrPatternsYAML, &table); err != nil {
		panic(fmt.Sprintf("malformed stderr_patterns.yaml: %v", err))
	}
	return table.Patterns
}

// FilterStderr removes blank lines and lines matching the benign-pattern
// table. Matching is case-insensitive and per-line; lines that match nothing
// pass through untouched.
func FilterStderr(stderr string) string {
	var kept []string
	for _, line := range strings.Split(stderr, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		benign := false
		for _, p := range noisePatterns {
			if strings.Contains(lower, p.Match) {
				benign = true
				break
			}
		}
		if !benign {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

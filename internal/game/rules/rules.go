// Package rules defines the tunable Farkle house rules and a YAML loader for
// overrides.
package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules holds the house-rule knobs for a Farkle match.
type Rules struct {
	// TargetScore is the banked total that triggers the final round.
	TargetScore int `yaml:"target_score"`
	// BustThreshold is the minimum turn score required to avoid the forced
	// bust once BustRollCount rolls have been taken.
	BustThreshold int `yaml:"bust_threshold"`
	// BustRollCount is the roll count from which the forced-bust check
	// applies after each confirm.
	BustRollCount int `yaml:"bust_roll_count"`
	// StraightAttempt enables the five-of-six straight-completion rescue.
	StraightAttempt bool `yaml:"straight_attempt"`
}

// Default returns the standard dicehall rules: play to 10000, forced bust
// below 350 from the third roll, straight attempts enabled.
func Default() Rules {
	return Rules{
		TargetScore:     10000,
		BustThreshold:   350,
		BustRollCount:   3,
		StraightAttempt: true,
	}
}

// Validate checks the rule invariants.
//
// Postcondition: Returns nil if the rules are playable, or an error
// describing all violations.
func (r Rules) Validate() error {
	var errs []string
	if r.TargetScore < 1 {
		errs = append(errs, fmt.Sprintf("target_score must be >= 1, got %d", r.TargetScore))
	}
	if r.BustThreshold < 0 {
		errs = append(errs, fmt.Sprintf("bust_threshold must be >= 0, got %d", r.BustThreshold))
	}
	if r.BustRollCount < 1 {
		errs = append(errs, fmt.Sprintf("bust_roll_count must be >= 1, got %d", r.BustRollCount))
	}
	if len(errs) > 0 {
		return fmt.Errorf("rules validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadDir reads all .yaml files in dir in lexical order and applies each as
// an override on top of Default. Keys absent from a file leave the prior
// value untouched. A missing directory yields the defaults.
//
// Postcondition: Returns validated rules or a non-nil error.
func LoadDir(dir string) (Rules, error) {
	r := Default()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return Rules{}, fmt.Errorf("reading rules dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return Rules{}, fmt.Errorf("reading rules file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &r); err != nil {
			return Rules{}, fmt.Errorf("parsing rules file %s: %w", path, err)
		}
	}

	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

package extract

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/ppiankov/quizguard/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// DefaultRules returns the embedded English and Vietnamese rule table
func DefaultRules() (*model.RuleSet, error) {
	return ParseRules(defaultRules)
}

// LoadRules reads a rule table from path. An empty path loads the defaults.
func LoadRules(path string) (*model.RuleSet, error) {
	if path == "" {
		return DefaultRules()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes and checks a YAML rule table
func ParseRules(data []byte) (*model.RuleSet, error) {
	var rules model.RuleSet
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	if err := checkRules(&rules); err != nil {
		return nil, err
	}
	return &rules, nil
}

func checkRules(rules *model.RuleSet) error {
	if len(rules.Languages) == 0 {
		return fmt.Errorf("rules define no languages")
	}

	for kind, weight := range rules.Weights {
		if !kind.Valid() {
			return fmt.Errorf("unknown signal kind %q in weights", kind)
		}
		if weight < 0 || weight > 1 {
			return fmt.Errorf("weight for %s must be within [0, 1], got %v", kind, weight)
		}
	}
	for _, kind := range model.SignalKinds {
		if _, ok := rules.Weights[kind]; !ok {
			return fmt.Errorf("missing weight for signal kind %s", kind)
		}
	}

	for lang, lr := range rules.Languages {
		patterns := append(append([]string(nil), lr.TemporalPatterns...), lr.NumericPatterns...)
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("language %s: invalid pattern %q: %w", lang, p, err)
			}
		}
	}
	return nil
}

// Fingerprint identifies a rule table. Cached validations are keyed on it.
func Fingerprint(rules *model.RuleSet) string {
	// encoding/json sorts map keys, so equal tables give equal bytes
	data, err := json.Marshal(rules)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

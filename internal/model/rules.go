package model

// RuleSet is the data-driven configuration of claim extraction and scoring.
// It is loaded from YAML so domains and languages can be added without code changes.
type RuleSet struct {
	Version   string                   `yaml:"version" json:"version"`
	Weights   map[SignalKind]float64   `yaml:"weights" json:"weights"`
	Languages map[string]LanguageRules `yaml:"languages" json:"languages"`
}

// LanguageRules holds the patterns and word lists for one language
type LanguageRules struct {
	TemporalPatterns    []string            `yaml:"temporal_patterns" json:"temporal_patterns"`
	TemporalKeywords    []string            `yaml:"temporal_keywords" json:"temporal_keywords"`
	NumericPatterns     []string            `yaml:"numeric_patterns" json:"numeric_patterns"`
	DomainKeywords      map[string][]string `yaml:"domain_keywords" json:"domain_keywords"`
	ProperNounStopwords []string            `yaml:"proper_noun_stopwords" json:"proper_noun_stopwords"`
	Stopwords           []string            `yaml:"stopwords" json:"stopwords"`
	Negations           []string            `yaml:"negations" json:"negations"`
	TrueFalse           TrueFalsePair       `yaml:"true_false" json:"true_false"`
}

// TrueFalsePair is the canonical answer pair for true/false questions
type TrueFalsePair struct {
	True  string `yaml:"true" json:"true"`
	False string `yaml:"false" json:"false"`
}

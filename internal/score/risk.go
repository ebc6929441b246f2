package score

import "github.com/ppiankov/quizguard/internal/model"

// Classifier maps a confidence score to a risk level
type Classifier struct {
	highBelow    float64
	lowAtOrAbove float64
	floorKinds   map[model.SignalKind]bool
}

// NewClassifier creates a classifier from the scoring thresholds.
// domain_risk always floors at medium; configured kinds add to it.
func NewClassifier(cfg model.ScoringConfig) *Classifier {
	floor := map[model.SignalKind]bool{model.SignalDomainRisk: true}
	for _, k := range cfg.MediumFloorKinds {
		floor[k] = true
	}
	return &Classifier{
		highBelow:    cfg.HighBelow,
		lowAtOrAbove: cfg.LowAtOrAbove,
		floorKinds:   floor,
	}
}

// Classify applies the first matching rule: structural issues and scores
// below the high threshold are high, scores below the low threshold are
// medium, everything else is low. Signals of a floor kind lift low to medium.
func (c *Classifier) Classify(score float64, signals []model.ClaimSignal, issues []model.Issue) model.RiskLevel {
	if model.HasStructural(issues) {
		return model.RiskHigh
	}

	var level model.RiskLevel
	switch {
	case score < c.highBelow:
		level = model.RiskHigh
	case score < c.lowAtOrAbove:
		level = model.RiskMedium
	default:
		level = model.RiskLow
	}

	for _, sig := range signals {
		if c.floorKinds[sig.Kind] {
			return level.AtLeast(model.RiskMedium)
		}
	}
	return level
}

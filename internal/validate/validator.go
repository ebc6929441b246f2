package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/quizguard/internal/extract"
	"github.com/ppiankov/quizguard/internal/model"
	"github.com/ppiankov/quizguard/internal/score"
)

// Validator runs claim extraction, consistency checks, scoring and risk
// classification for single questions. It holds no mutable state and is
// safe for concurrent use.
type Validator struct {
	extractor  *extract.ClaimExtractor
	checker    *Checker
	scorer     *score.Scorer
	classifier *score.Classifier
	minValid   float64
}

// NewValidator creates a validator for the given rule table and thresholds
func NewValidator(rules *model.RuleSet, scoring model.ScoringConfig) (*Validator, error) {
	extractor, err := extract.NewClaimExtractor(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to build claim extractor: %w", err)
	}

	return &Validator{
		extractor:  extractor,
		checker:    NewChecker(rules),
		scorer:     score.NewScorer(),
		classifier: score.NewClassifier(scoring),
		minValid:   scoring.MinValidConfidence,
	}, nil
}

// Extractor returns the claim extractor the validator scans with
func (v *Validator) Extractor() *extract.ClaimExtractor {
	return v.extractor
}

// Checker returns the consistency checker
func (v *Validator) Checker() *Checker {
	return v.checker
}

// Validate validates one question. The same question always yields an
// identical result.
func (v *Validator) Validate(q model.Question) model.ValidationResult {
	signals := v.extractor.Extract(q)
	consistency := v.checker.Check(q)

	confidence := v.scorer.Score(signals)
	risk := v.classifier.Classify(confidence, signals, consistency)

	issues := make([]model.Issue, 0, len(consistency)+4)
	issues = append(issues, consistency...)
	issues = append(issues, claimIssues(signals)...)

	return model.ValidationResult{
		QuestionID:      q.ID,
		ConfidenceScore: confidence,
		RiskLevel:       risk,
		Valid:           risk != model.RiskHigh && confidence >= v.minValid,
		Issues:          issues,
		Suggestions:     suggestions(issues, signals),
		Domains:         domains(signals),
	}
}

// Explain returns the signals and the per-kind penalties behind a score
func (v *Validator) Explain(q model.Question) ([]model.ClaimSignal, []score.Penalty) {
	signals := v.extractor.Extract(q)
	return signals, v.scorer.Explain(signals)
}

// claimIssues produces one issue per signal kind, listing what matched
func claimIssues(signals []model.ClaimSignal) []model.Issue {
	matched := make(map[model.SignalKind][]string)
	for _, s := range signals {
		matched[s.Kind] = append(matched[s.Kind], s.MatchedText)
	}

	var issues []model.Issue
	for _, kind := range model.SignalKinds {
		texts := matched[kind]
		if len(texts) == 0 {
			continue
		}
		quoted := make([]string, len(texts))
		for i, t := range texts {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		list := strings.Join(quoted, ", ")

		switch kind {
		case model.SignalTemporal:
			issues = append(issues, model.Issue{
				Category:   model.IssueClaim,
				Message:    "Contains time-sensitive information: " + list,
				Suggestion: "Avoid facts that change over time or state the reference date",
			})
		case model.SignalNumeric:
			issues = append(issues, model.Issue{
				Category:   model.IssueClaim,
				Message:    "Contains specific numerical claims: " + list,
				Suggestion: "Consider using conceptual questions instead of specific facts",
			})
		case model.SignalDomainRisk:
			for _, d := range domains(signals) {
				issues = append(issues, model.Issue{
					Category:   model.IssueClaim,
					Message:    "Content in high-risk domain: " + d,
					Suggestion: fmt.Sprintf("Have a %s expert review this question", d),
				})
			}
		case model.SignalProperNoun:
			issues = append(issues, model.Issue{
				Category:   model.IssueClaim,
				Message:    "References named entities: " + list,
				Suggestion: "Check names against the source material",
			})
		}
	}
	return issues
}

func suggestions(issues []model.Issue, signals []model.ClaimSignal) []string {
	out := make([]string, 0, len(issues))
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, issue := range issues {
		add(issue.Suggestion)
	}
	if len(signals) > 0 && model.HasStructural(issues) {
		add("Fix the question structure before reviewing its content")
	}
	return out
}

func domains(signals []model.ClaimSignal) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range signals {
		if s.Kind == model.SignalDomainRisk && s.Domain != "" && !seen[s.Domain] {
			seen[s.Domain] = true
			out = append(out, s.Domain)
		}
	}
	sort.Strings(out)
	return out
}

package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/ppiankov/quizguard/internal/score"
)

// Summarize aggregates a batch's results and contradictions
func (v *Validator) Summarize(results []model.ValidationResult, contradictions []model.Contradiction) model.ValidationSummary {
	summary := model.ValidationSummary{
		TotalQuestions: len(results),
		RiskDistribution: map[model.RiskLevel]int{
			model.RiskLow:    0,
			model.RiskMedium: 0,
			model.RiskHigh:   0,
		},
		Contradictions: contradictions,
	}
	if summary.Contradictions == nil {
		summary.Contradictions = []model.Contradiction{}
	}
	if len(results) == 0 {
		return summary
	}

	var total float64
	lowConfidence := 0
	for _, r := range results {
		if r.Valid {
			summary.ValidQuestions++
		}
		if r.RiskLevel == model.RiskHigh {
			summary.HighRiskCount++
		}
		if r.ConfidenceScore < v.minValid {
			lowConfidence++
		}
		summary.RiskDistribution[r.RiskLevel]++
		total += r.ConfidenceScore
	}

	summary.ValidationRate = math.Round(float64(summary.ValidQuestions)/float64(len(results))*100*100) / 100
	summary.AverageConfidence = score.Round3(total / float64(len(results)))
	summary.Recommendations = recommendations(results, summary.HighRiskCount, lowConfidence, len(summary.Contradictions))
	return summary
}

func recommendations(results []model.ValidationResult, highRisk, lowConfidence, contradictions int) []string {
	var recs []string

	if highRisk > 0 {
		recs = append(recs, fmt.Sprintf("Review %d high-risk questions before deployment", highRisk))
	}
	if lowConfidence > 0 {
		recs = append(recs, fmt.Sprintf("Regenerate %d low-confidence questions", lowConfidence))
	}
	if contradictions > 0 {
		recs = append(recs, fmt.Sprintf("Resolve %d contradictions between questions in this batch", contradictions))
	}

	counts := make(map[string]int)
	for _, r := range results {
		for _, issue := range r.Issues {
			counts[issue.Message]++
		}
	}
	if len(counts) > 0 {
		messages := make([]string, 0, len(counts))
		for m := range counts {
			messages = append(messages, m)
		}
		sort.Slice(messages, func(i, j int) bool {
			if counts[messages[i]] != counts[messages[j]] {
				return counts[messages[i]] > counts[messages[j]]
			}
			return messages[i] < messages[j]
		})
		recs = append(recs, "Address common issue: "+messages[0])
	}
	return recs
}

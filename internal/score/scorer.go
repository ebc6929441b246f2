package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/quizguard/internal/model"
)

// Scorer turns claim signals into a confidence score
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Penalty is the contribution of one signal kind to the score
type Penalty struct {
	Kind  model.SignalKind `json:"kind"`
	Count int              `json:"count"`
	Total float64          `json:"total"`
}

// Score computes 1.0 minus the summed signal weights, clamped to [0, 1]
// and rounded to 3 decimals. The result does not depend on signal order.
func (s *Scorer) Score(signals []model.ClaimSignal) float64 {
	var penalty float64
	for _, p := range s.Explain(signals) {
		penalty += p.Total
	}

	score := 1.0 - penalty
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return Round3(score)
}

// Explain returns the per-kind penalty breakdown in kind priority order
func (s *Scorer) Explain(signals []model.ClaimSignal) []Penalty {
	byKind := make(map[model.SignalKind][]float64)
	for _, sig := range signals {
		byKind[sig.Kind] = append(byKind[sig.Kind], sig.Weight)
	}

	order := append([]model.SignalKind(nil), model.SignalKinds...)
	var extra []model.SignalKind
	for kind := range byKind {
		if !kind.Valid() {
			extra = append(extra, kind)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	order = append(order, extra...)

	var penalties []Penalty
	for _, kind := range order {
		weights := byKind[kind]
		if len(weights) == 0 {
			continue
		}
		// Fixed summation order keeps the float result bit-identical
		sort.Float64s(weights)
		var total float64
		for _, w := range weights {
			total += w
		}
		penalties = append(penalties, Penalty{Kind: kind, Count: len(weights), Total: total})
	}
	return penalties
}

// Describe renders a penalty breakdown as human-readable lines
func Describe(penalties []Penalty) []string {
	lines := make([]string, 0, len(penalties))
	for _, p := range penalties {
		lines = append(lines, fmt.Sprintf("%s: %d signal(s), -%.3f", p.Kind, p.Count, p.Total))
	}
	return lines
}

// Round3 rounds to 3 decimal places
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

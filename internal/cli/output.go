package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/ppiankov/quizguard/internal/pipeline"
)

const rule = "═══════════════════════════════════════════════════════════"

// writeJSON writes v to path, or to stdout when path is "-"
func writeJSON(stdout io.Writer, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// printSummary renders the human-readable batch report
func printSummary(w io.Writer, outcome *pipeline.Outcome) {
	s := outcome.Summary

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "  Batch %s\n", outcome.BatchID)
	fmt.Fprintf(w, "%s\n\n", rule)
	fmt.Fprintf(w, "  Questions:       %d\n", s.TotalQuestions)
	fmt.Fprintf(w, "  Valid:           %d (%.2f%%)\n", s.ValidQuestions, s.ValidationRate)
	fmt.Fprintf(w, "  Avg confidence:  %.3f\n", s.AverageConfidence)
	fmt.Fprintf(w, "  Risk:            low %d, medium %d, high %d\n",
		s.RiskDistribution[model.RiskLow], s.RiskDistribution[model.RiskMedium], s.RiskDistribution[model.RiskHigh])
	fmt.Fprintf(w, "  Contradictions:  %d\n", len(s.Contradictions))
	fmt.Fprintf(w, "  Queued:          %d for review\n", len(outcome.ReviewItems))

	if outcome.Consensus != nil {
		fmt.Fprintf(w, "  Consensus:       %.3f across %d models (merged from %s)\n",
			outcome.Consensus.AgreementScore, len(outcome.Consensus.ModelOutputs), outcome.Consensus.MergedModel)
	}

	if len(s.Recommendations) > 0 {
		fmt.Fprintf(w, "\n  Recommendations:\n")
		for _, r := range s.Recommendations {
			fmt.Fprintf(w, "    - %s\n", r)
		}
	}
	if len(outcome.Warnings) > 0 {
		fmt.Fprintf(w, "\n  Warnings:\n")
		for _, warn := range outcome.Warnings {
			fmt.Fprintf(w, "    ! %s\n", warn)
		}
	}
	fmt.Fprintln(w)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/ppiankov/quizguard/internal/pipeline"
	"github.com/ppiankov/quizguard/internal/quiz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outJSON         string
	batchID         string
	modelUsed       string
	validateTimeout time.Duration
	strict          bool
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <questions.json>",
	Short: "Validate a batch of generated quiz questions",
	Long: `Validate scores every question in a batch:
- Check structure (stem, options, answer)
- Extract unverifiable claims and score confidence
- Detect contradictions between questions
- Queue risky questions for human review
- Record every decision in the audit trail

The input may be a JSON array, a single question, or {"questions": [...]}.

Example:
  quizguard validate batch.json
  quizguard validate batch.json --json outcome.json --batch-id week-12
  quizguard validate batch.json --json - --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&outJSON, "json", "outcome.json", "output JSON path (- for stdout)")
	validateCmd.Flags().StringVar(&batchID, "batch-id", "", "batch id recorded in the audit trail (default: random)")
	validateCmd.Flags().StringVar(&modelUsed, "model", "", "model that produced the batch, for the audit trail")
	validateCmd.Flags().DurationVar(&validateTimeout, "timeout", 5*time.Minute, "overall validation timeout")
	validateCmd.Flags().BoolVar(&strict, "strict", false, "exit with an error unless every question is approved")
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read questions: %w", err)
	}
	questions, err := quiz.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), validateTimeout)
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	if verbose {
		fmt.Fprintf(os.Stderr, "Validating %d questions from %s\n", len(questions), args[0])
	}

	outcome, runErr := a.pipeline.ValidateBatch(ctx, questions, pipeline.Meta{BatchID: batchID, ModelUsed: modelUsed})
	if outcome == nil {
		return runErr
	}
	return finish(cmd, a, outcome, runErr)
}

// finish writes the outcome and reports persistence errors after the report is out
func finish(cmd *cobra.Command, a *app, outcome *pipeline.Outcome, runErr error) error {
	if err := writeJSON(cmd.OutOrStdout(), outJSON, outcome); err != nil {
		return err
	}
	printSummary(cmd.ErrOrStderr(), outcome)
	if outJSON != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Outcome written to %s\n", outJSON)
	}
	if warning := memoryQueueWarning(a.settings, len(outcome.ReviewItems)); warning != "" {
		a.logger.Warn("review items held in memory", zap.Int("items", len(outcome.ReviewItems)))
		fmt.Fprintln(cmd.ErrOrStderr(), warning)
	}

	// Drain the audit writer before judging the run
	if err := a.close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	if strict {
		held := 0
		for _, state := range outcome.States {
			if state != model.StateApproved {
				held++
			}
		}
		if held > 0 {
			return fmt.Errorf("%d of %d questions not approved", held, len(outcome.States))
		}
	}
	return nil
}

// memoryQueueWarning is empty unless queued items would die with the process
func memoryQueueWarning(settings *model.Config, queued int) string {
	if queued == 0 {
		return ""
	}
	if b := settings.Review.Backend; b != "" && b != "memory" {
		return ""
	}
	return fmt.Sprintf("⚠ %d review item(s) are held in the in-memory queue and are lost when this process exits; set review.backend: redis to review them later", queued)
}

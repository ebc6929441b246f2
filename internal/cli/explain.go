package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/quizguard/internal/extract"
	"github.com/ppiankov/quizguard/internal/quiz"
	"github.com/ppiankov/quizguard/internal/score"
	"github.com/ppiankov/quizguard/internal/validate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain <questions.json>",
	Short: "Show the claim signals and penalties behind each score",
	Long: `Explain runs the claim extractor and scorer without touching the
review queue or the audit trail. Use it to tune a rule table.

Example:
  quizguard explain batch.json --rules my_rules.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(viper.GetViper())
	if err != nil {
		return err
	}
	rules, err := extract.LoadRules(settings.Rules.File)
	if err != nil {
		return err
	}
	validator, err := validate.NewValidator(rules, settings.Scoring)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read questions: %w", err)
	}
	questions, err := quiz.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	for _, q := range questions {
		result := validator.Validate(q)
		signals, penalties := validator.Explain(q)

		fmt.Fprintf(out, "%s  confidence %.3f  risk %s\n", q.ID, result.ConfidenceScore, result.RiskLevel)
		for _, s := range signals {
			fmt.Fprintf(out, "    %-12s %-10s %q", s.Kind, s.Source, s.MatchedText)
			if s.Domain != "" {
				fmt.Fprintf(out, " (%s)", s.Domain)
			}
			fmt.Fprintln(out)
		}
		for _, line := range score.Describe(penalties) {
			fmt.Fprintf(out, "    = %s\n", line)
		}
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "    ! [%s] %s\n", issue.Category, issue.Message)
		}
	}
	return nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	approve  bool
	reject   bool
	reviewer string
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Work the human review queue",
	Long: `List questions waiting for a reviewer and record review decisions.

The queue is shared between processes only with review.backend: redis.`,
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending review items, highest priority first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer func() { _ = a.close() }()

		items, err := a.pipeline.PendingReviews(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "No items pending review")
			return nil
		}
		for _, item := range items {
			fmt.Fprintf(out, "%s  %-6s  risk %.3f  %s  (%s)\n",
				item.ID, item.Priority, item.RiskScore, item.ContentRef, item.CreatedAt.Format("2006-01-02 15:04"))
			for _, reason := range item.Reasons {
				fmt.Fprintf(out, "    - %s\n", reason)
			}
		}
		return nil
	},
}

var reviewResolveCmd = &cobra.Command{
	Use:   "resolve <item-id>",
	Short: "Approve or reject a pending review item",
	Long: `Resolve records the reviewer's decision. The audit trail gets a new
entry that supersedes the one which flagged the question.

Example:
  quizguard review resolve 7f1c... --approve --reviewer alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if approve == reject {
			return fmt.Errorf("exactly one of --approve or --reject is required")
		}
		if strings.TrimSpace(reviewer) == "" {
			return fmt.Errorf("--reviewer is required")
		}

		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer func() { _ = a.close() }()

		item, err := a.pipeline.ResolveReview(cmd.Context(), args[0], approve, reviewer)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s %s by %s\n", item.ContentRef, item.Status, item.Reviewer)
		return a.close()
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewResolveCmd)

	reviewResolveCmd.Flags().BoolVar(&approve, "approve", false, "approve the content")
	reviewResolveCmd.Flags().BoolVar(&reject, "reject", false, "reject the content")
	reviewResolveCmd.Flags().StringVar(&reviewer, "reviewer", "", "name of the reviewer")
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
}

var auditShowCmd = &cobra.Command{
	Use:   "show <content-id>",
	Short: "Print every audit entry for a question or batch, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer func() { _ = a.close() }()

		entries, err := a.pipeline.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("no audit entries for %s", args[0])
		}
		return writeJSON(cmd.OutOrStdout(), "-", entries)
	},
}

var auditReleasableCmd = &cobra.Command{
	Use:   "releasable <question-id>",
	Short: "Report whether a question may be shown to learners",
	Long: `Releasable checks the latest audit entry for the question. Only
auto-approved or reviewer-approved content is releasable; the command
exits with an error otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer func() { _ = a.close() }()

		ok, err := a.pipeline.Releasable(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s is not releasable", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is releasable\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditShowCmd)
	auditCmd.AddCommand(auditReleasableCmd)
}

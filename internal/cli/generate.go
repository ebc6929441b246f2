package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	promptFile      string
	promptText      string
	models          []string
	generateTimeout time.Duration
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a quiz with several models and validate the consensus",
	Long: `Generate sends one prompt to every model in parallel, measures how much
their outputs agree, merges them and validates the merged quiz.

Models are given as provider:model (openai, anthropic, ollama).
When agreement is below consensus.min_agreement nothing is validated
and the batch is reported as low consensus.

Example:
  quizguard generate --prompt-file prompt.txt --models openai:gpt-4o-mini,anthropic:claude-3-5-haiku-20241022
  quizguard generate --prompt "Five questions on photosynthesis" --models ollama:llama3,ollama:mistral`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&promptFile, "prompt-file", "", "file holding the generation prompt")
	generateCmd.Flags().StringVar(&promptText, "prompt", "", "generation prompt (alternative to --prompt-file)")
	generateCmd.Flags().StringSliceVar(&models, "models", nil, "provider:model ids (default: consensus.models)")
	generateCmd.Flags().DurationVar(&generateTimeout, "timeout", 10*time.Minute, "overall generation timeout")
	generateCmd.Flags().StringVar(&outJSON, "json", "outcome.json", "output JSON path (- for stdout)")
	generateCmd.Flags().BoolVar(&strict, "strict", false, "exit with an error unless every question is approved")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), generateTimeout)
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	ids := models
	if len(ids) == 0 {
		ids = a.settings.Consensus.Models
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Generating with %s\n", strings.Join(ids, ", "))
	}

	outcome, runErr := a.pipeline.GenerateAndValidate(ctx, prompt, ids)
	if outcome == nil {
		return runErr
	}
	return finish(cmd, a, outcome, runErr)
}

func readPrompt() (string, error) {
	switch {
	case promptFile != "" && promptText != "":
		return "", fmt.Errorf("use either --prompt or --prompt-file, not both")
	case promptFile != "":
		data, err := os.ReadFile(promptFile)
		if err != nil {
			return "", fmt.Errorf("read prompt: %w", err)
		}
		promptText = string(data)
	}
	prompt := strings.TrimSpace(promptText)
	if prompt == "" {
		return "", fmt.Errorf("a prompt is required (--prompt or --prompt-file)")
	}
	return prompt, nil
}

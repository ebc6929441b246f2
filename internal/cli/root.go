package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ppiankov/quizguard/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var version = "v0.1.0"

var (
	cfgFile         string
	envFile         string
	verbose         bool
	rulesFile       string
	logLevel        string
	logFormat       string
	metricsTextfile string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "quizguard",
	Short: "QuizGuard - validation gate for machine-generated quiz content",
	Long: `QuizGuard checks generated quiz questions before they reach learners.

It scores each question for unverifiable claims, detects contradictions
across a batch, reconciles output from several models, and routes risky
content to a human review queue. Every decision is written to an
append-only audit trail.

QuizGuard flags risk. It does not decide what is true.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if metricsTextfile == "" {
			return nil
		}
		return writeMetrics(metricsTextfile)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of QuizGuard.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "quizguard %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.quizguard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "claim rule table (default: embedded en/vi rules)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("rules.file", rootCmd.PersistentFlags().Lookup("rules"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// A missing .env is normal outside development
	if err := godotenv.Load(envFile); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Loaded environment from %s\n", envFile)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
		} else {
			viper.AddConfigPath(filepath.Join(home, ".quizguard"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := setDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	// Read in environment variables that match QUIZGUARD_*, e.g. QUIZGUARD_AUDIT_BACKEND
	viper.SetEnvPrefix("QUIZGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Provider credentials also come from their conventional variables
	_ = viper.BindEnv("llm.openai.api_key", "QUIZGUARD_LLM_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = viper.BindEnv("llm.anthropic.api_key", "QUIZGUARD_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("llm.ollama.base_url", "QUIZGUARD_LLM_OLLAMA_BASE_URL", "OLLAMA_BASE_URL")
	_ = viper.BindEnv("llm.http_proxy", "QUIZGUARD_LLM_HTTP_PROXY", "HTTP_PROXY")
	_ = viper.BindEnv("llm.https_proxy", "QUIZGUARD_LLM_HTTPS_PROXY", "HTTPS_PROXY")
	_ = viper.BindEnv("llm.no_proxy", "QUIZGUARD_LLM_NO_PROXY", "NO_PROXY")

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key of cfg so env variables can override keys
// that no config file mentions
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	for key, value := range flatten("", tree) {
		v.SetDefault(key, value)
	}
	return nil
}

func flatten(prefix string, tree map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]interface{}); ok {
			for sk, sv := range flatten(key, sub) {
				out[sk] = sv
			}
			continue
		}
		out[key] = v
	}
	return out
}

// loadSettings resolves flags, environment, config file and defaults into one Config
func loadSettings(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	return cfg, nil
}

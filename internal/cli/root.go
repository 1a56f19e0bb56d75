package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/appscope/internal/logging"
	"github.com/ppiankov/appscope/internal/model"
)

// Version is overridden at build time with -ldflags
var Version = "0.1.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "appscope",
	Short: "AppScope - App Store review analysis",
	Long: `AppScope turns App Store reviews into a product research report.

It fetches the public customer review feed of an app (or reads a JSON/CSV
export) and finds, with transparent keyword and pattern rules:
- Complaint and praise themes per category
- Forces of adoption (push, pull, anxiety, habit)
- Jobs-to-be-done statements
- Pain points and wins

Findings are what reviewers wrote, not verified facts about the app.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of AppScope.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("appscope v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.appscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and APPSCOPE_* variables
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	if err := registerDefaults(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	bindEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	} else if err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: could not read config %s: %v\n", cfgFile, err)
	}
}

// registerDefaults makes every config key known to viper so that
// environment variables apply even without a config file
func registerDefaults() error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var defaults map[string]interface{}
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return fmt.Errorf("decode defaults: %w", err)
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
	return nil
}

// bindEnv maps APPSCOPE_* variables onto config keys, so that
// APPSCOPE_HTTP_TIMEOUT overrides http.timeout
func bindEnv() {
	viper.SetEnvPrefix("APPSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// loadConfig resolves the effective configuration
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the structured logger for a command
func newLogger(cfg *model.Config) (logging.Logger, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return logger, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".appscope"), nil
}

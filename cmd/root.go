package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-assistant/internal/filtering"
)

const (
	app = "resume-assistant"

	apiKeyFileEnv = "RESUME_ASSISTANT_API_KEY_FILE"
	apiKeyEnv     = "RESUME_ASSISTANT_API_KEY"
)

type Config struct {
	AI     *AIConfig         `mapstructure:"ai"`
	Page   *PageConfig       `mapstructure:"page"`
	Screen *filtering.Config `mapstructure:"screen"`
	Prefs  string            `mapstructure:"prefs"`
}

// AIConfig selects and tunes the model provider. MaxRetries counts retries after the
// first attempt for every provider; 0 disables retrying.
type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	URL          string        `mapstructure:"url"`
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	MaxRetries   int           `mapstructure:"max-retries"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type PageConfig struct {
	UserAgent string            `mapstructure:"user-agent"`
	Selector  string            `mapstructure:"selector"`
	Headers   map[string]string `mapstructure:"headers"`
	Timeout   time.Duration     `mapstructure:"timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-assistant scores resumes locally and with an LLM, summarizes them and suggests interview questions",
	}
)

// Execute executes the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	if err := viper.BindEnv("ai.api-key-file", apiKeyFileEnv); err != nil {
		log.Fatalf("binding %s environment variable: %v", apiKeyFileEnv, err)
	}

	viper.SetDefault("ai.provider", providerOpenAI)
	viper.SetDefault("ai.max-retries", 3)
	viper.SetDefault("ai.max-log-length", 200)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-assistant.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("prefs", "", "preferences file (default is $XDG_CONFIG_HOME/resume-assistant/prefs.yaml)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("prefs", rootCmd.PersistentFlags().Lookup("prefs"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional: preferences can supply the API settings.
	// An explicitly requested or broken config is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.Page == nil {
		config.Page = &PageConfig{}
	}
	if config.Screen == nil {
		config.Screen = &filtering.Config{}
	}

	return config, nil
}

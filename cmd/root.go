package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "pathfinder"
)

type Config struct {
	LLM        *LLMConfig        `mapstructure:"llm"`
	JobSearch  *JobSearchConfig  `mapstructure:"jobsearch"`
	Classifier *ClassifierConfig `mapstructure:"classifier"`
	Speech     *SpeechConfig     `mapstructure:"speech"`
	Server     *ServerConfig     `mapstructure:"server"`
}

type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
	OpenAI   *OpenAIConfig `mapstructure:"openai"`
}

// Every max-retries setting counts retries after the first call: 0 makes a
// single attempt, 2 allows up to three calls.
type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type JobSearchConfig struct {
	APIKey           string   `mapstructure:"api-key"`
	APIKeyFile       string   `mapstructure:"api-key-file"`
	Host             string   `mapstructure:"host"`
	Location         string   `mapstructure:"location"`
	MaxRetries       int      `mapstructure:"max-retries"`
	ExcludeEmployers []string `mapstructure:"exclude-employers"`
	// EnableFilters turns on opt-in filters (missing_apply_link, duplicates).
	EnableFilters  []string `mapstructure:"enable-filters"`
	DisableFilters []string `mapstructure:"disable-filters"`
}

// ClassifierConfig and SpeechConfig share the Hugging Face key (HF_API_KEY).
type ClassifierConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	ModelURL   string `mapstructure:"model-url"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type SpeechConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	APIKey        string        `mapstructure:"api-key"`
	APIKeyFile    string        `mapstructure:"api-key-file"`
	TranscribeURL string        `mapstructure:"transcribe-url"`
	SpeakURL      string        `mapstructure:"speak-url"`
	Language      string        `mapstructure:"language"`
	ClipTTL       time.Duration `mapstructure:"clip-ttl"`
}

type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	SessionTTL    time.Duration `mapstructure:"session-ttl"`
	SecureCookies bool          `mapstructure:"secure-cookies"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "pathfinder is a career counselling chat assistant",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is pathfinder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.gemini.model", "gemini-2.0-flash")
	v.SetDefault("llm.gemini.max-retries", 2)
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.max-retries", 2)

	v.SetDefault("jobsearch.host", "")
	v.SetDefault("jobsearch.location", "India")
	v.SetDefault("jobsearch.max-retries", 2)

	v.SetDefault("classifier.enabled", true)
	v.SetDefault("classifier.model-url", "")
	v.SetDefault("classifier.max-retries", 2)

	v.SetDefault("speech.enabled", false)
	v.SetDefault("speech.language", "en")
	v.SetDefault("speech.clip-ttl", 10*time.Second)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session-ttl", 2*time.Hour)
	v.SetDefault("server.secure-cookies", false)

	// PATHFINDER_SERVER_ADDR overrides server.addr and so on.
	v.SetEnvPrefix(strings.ToUpper(app))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func initConfig() {
	// Nothing to configure for version.
	if versionCmd.CalledAs() != "" {
		return
	}

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if err := readConfigFile(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfigFile reads an explicit config file or the optional pathfinder.yaml
// from the current directory.
func readConfigFile(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", file, err)
		}
		return nil
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	return nil
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if config == nil {
		config = &Config{}
	}
	if config.LLM == nil {
		config.LLM = &LLMConfig{}
	}
	if config.LLM.Gemini == nil {
		config.LLM.Gemini = &GeminiConfig{}
	}
	if config.LLM.OpenAI == nil {
		config.LLM.OpenAI = &OpenAIConfig{}
	}
	if config.JobSearch == nil {
		config.JobSearch = &JobSearchConfig{}
	}
	if config.Classifier == nil {
		config.Classifier = &ClassifierConfig{}
	}
	if config.Speech == nil {
		config.Speech = &SpeechConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/ai"
	"github.com/spigell/pathfinder/internal/ai/gemini"
	"github.com/spigell/pathfinder/internal/ai/openai"
	"github.com/spigell/pathfinder/internal/classifier"
	"github.com/spigell/pathfinder/internal/conversation"
	"github.com/spigell/pathfinder/internal/jobsearch"
	"github.com/spigell/pathfinder/internal/logger"
	"github.com/spigell/pathfinder/internal/secrets"
	"github.com/spigell/pathfinder/internal/speech"
)

const hfKeyEnv = "HF_API_KEY"

var errUnsupportedProvider = errors.New("unsupported llm provider")

// components holds the clients shared by serve and chat.
type components struct {
	router      *conversation.Router
	classifier  *classifier.Client
	transcriber *speech.Transcriber
	speaker     *speech.Speaker
}

func buildComponents(ctx context.Context, config *Config, log *zap.Logger) (*components, error) {
	generator, err := newGenerator(ctx, config.LLM, log)
	if err != nil {
		return nil, err
	}

	jobs, err := newJobSearch(config.JobSearch, log)
	if err != nil {
		return nil, err
	}

	router, err := conversation.New(log, jobs, generator, config.JobSearch.Location)
	if err != nil {
		return nil, err
	}

	c := &components{router: router}

	if config.Classifier.Enabled {
		if c.classifier, err = newClassifier(config.Classifier, log); err != nil {
			return nil, err
		}
	}

	if config.Speech.Enabled {
		if c.transcriber, c.speaker, err = newSpeech(config.Speech, log); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func newGenerator(ctx context.Context, cfg *LLMConfig, log *zap.Logger) (ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", ai.ProviderGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		genLogger := logger.WithProvider(log, ai.ProviderGemini, cfg.Gemini.Model).
			With(zap.Int("ai_max_retries", cfg.Gemini.MaxRetries))

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
		if err != nil {
			return nil, err
		}
		return generator, nil

	case ai.ProviderOpenAI:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: cfg.OpenAI.APIKey,
			File:  cfg.OpenAI.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		genLogger := logger.WithProvider(log, ai.ProviderOpenAI, cfg.OpenAI.Model)

		generator, err := openai.NewGenerator(apiKey, cfg.OpenAI.Model, cfg.OpenAI.MaxRetries, genLogger)
		if err != nil {
			return nil, err
		}
		return generator, nil

	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedProvider, cfg.Provider)
	}
}

func newJobSearch(cfg *JobSearchConfig, log *zap.Logger) (*jobsearch.Client, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "rapidapi key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "RAPIDAPI_KEY",
	})
	if err != nil {
		return nil, err
	}

	host, err := secrets.Load(secrets.Source{
		Name:  "rapidapi host",
		Value: cfg.Host,
		Env:   "RAPIDAPI_HOST",
	})
	if err != nil {
		return nil, err
	}

	filters := jobsearch.DefaultFilters(cfg.ExcludeEmployers)
	for _, name := range cfg.EnableFilters {
		jobsearch.EnableByName(filters, name)
	}
	for _, name := range cfg.DisableFilters {
		jobsearch.DisableByName(filters, name, "disabled in configuration")
	}

	client, err := jobsearch.New(log, apiKey, host, filters...)
	if err != nil {
		return nil, err
	}
	client.MaxRetries = cfg.MaxRetries

	for _, status := range jobsearch.Describe(filters) {
		log.Debug("job listing filter", zap.String("filter", status.Name), zap.Bool("enabled", status.Enabled), zap.String("reason", status.Reason))
	}

	return client, nil
}

func newClassifier(cfg *ClassifierConfig, log *zap.Logger) (*classifier.Client, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "hugging face api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   hfKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (or set classifier.enabled to false)", err)
	}

	client, err := classifier.New(log, apiKey, cfg.ModelURL)
	if err != nil {
		return nil, err
	}
	client.MaxRetries = cfg.MaxRetries

	return client, nil
}

func newSpeech(cfg *SpeechConfig, log *zap.Logger) (*speech.Transcriber, *speech.Speaker, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "hugging face api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   hfKeyEnv,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (or set speech.enabled to false)", err)
	}

	transcriber, err := speech.NewTranscriber(log, apiKey, cfg.TranscribeURL)
	if err != nil {
		return nil, nil, err
	}

	return transcriber, speech.NewSpeaker(log, cfg.SpeakURL, cfg.Language, cfg.ClipTTL), nil
}

package providers

import (
	"context"
	"fmt"
	"strings"
)

// Client completes a prompt with a model
type Client interface {
	Complete(ctx context.Context, model string, prompt string) (string, error)
}

type ProviderParams struct {
	BaseURL string
	APIKey  string
	Seed    int64
	Choices []string
}

type ProviderOption func(*ProviderParams)

func WithBaseURL(baseURL string) ProviderOption {
	return func(p *ProviderParams) {
		p.BaseURL = baseURL
	}
}

func WithAPIKey(apiKey string) ProviderOption {
	return func(p *ProviderParams) {
		p.APIKey = apiKey
	}
}

// WithSeed seeds the scripted provider
func WithSeed(seed int64) ProviderOption {
	return func(p *ProviderParams) {
		p.Seed = seed
	}
}

// WithChoices sets the replies the scripted provider picks from
func WithChoices(choices []string) ProviderOption {
	return func(p *ProviderParams) {
		p.Choices = append([]string(nil), choices...)
	}
}

const (
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderScripted = "scripted"

	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.0-flash-exp"
)

// ParseModelTag splits "provider:model" and fills in the default model.
// A bare model name is treated as an OpenAI model.
func ParseModelTag(tag string) (provider string, model string, err error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", "", fmt.Errorf("empty model tag")
	}
	provider, model, found := strings.Cut(tag, ":")
	if !found {
		switch tag {
		case ProviderOpenAI, ProviderGemini, ProviderScripted:
			provider, model = tag, ""
		default:
			provider, model = ProviderOpenAI, tag
		}
	}
	switch provider {
	case ProviderOpenAI:
		if model == "" {
			model = DefaultOpenAIModel
		}
	case ProviderGemini:
		if model == "" {
			model = DefaultGeminiModel
		}
	case ProviderScripted:
		model = ProviderScripted
	default:
		return "", "", fmt.Errorf("unknown provider %q in model tag %q", provider, tag)
	}
	return provider, model, nil
}

// FromModelTag builds the client for a model tag and returns the model id to use with it
func FromModelTag(ctx context.Context, tag string, opts ...ProviderOption) (Client, string, error) {
	provider, model, err := ParseModelTag(tag)
	if err != nil {
		return nil, "", err
	}
	switch provider {
	case ProviderOpenAI:
		return OpenAi(ctx, opts...), model, nil
	case ProviderGemini:
		c, err := Gemini(ctx, opts...)
		if err != nil {
			return nil, "", err
		}
		return c, model, nil
	default:
		params := &ProviderParams{}
		for _, opt := range opts {
			opt(params)
		}
		return Scripted(params.Seed, params.Choices), model, nil
	}
}

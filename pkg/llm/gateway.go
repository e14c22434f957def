package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

// GatewayConfig represents the configuration for the language-model gateway.
type GatewayConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
	BaseURL     string // Ollama server URL
}

// Gateway sends prompts to a hosted text-generation model and returns
// the generated text. It is the only place the query and ingestion
// pipelines touch an LLM.
type Gateway struct {
	config GatewayConfig
	llm    llms.Model
}

// NewWithConfig creates a new Gateway with the given configuration.
func NewWithConfig(config GatewayConfig) (*Gateway, error) {
	if config.Model == "" {
		config.Model = "mistral" // Default Ollama model
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}

	model, err := ollama.New(ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &Gateway{
		config: config,
		llm:    model,
	}, nil
}

// Generate performs a single synchronous completion. The system message
// is optional; callers carry their own prompt templates.
func (g *Gateway) Generate(ctx context.Context, system, prompt string) (string, error) {
	var content []llms.MessageContent
	if system != "" {
		content = append(content, llms.TextParts(schema.ChatMessageTypeSystem, system))
	}
	content = append(content, llms.TextParts(schema.ChatMessageTypeHuman, prompt))

	response, err := g.llm.GenerateContent(ctx, content,
		llms.WithTemperature(g.config.Temperature),
		llms.WithMaxTokens(g.config.MaxTokens))
	if err != nil {
		return "", fmt.Errorf("generation error: %w", err)
	}

	if response == nil || len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return response.Choices[0].Content, nil
}

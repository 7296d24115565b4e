// Package llm provides text generation and classification using langchaingo.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/driveline/driveline-go/internal/config"
)

// Model wraps a langchaingo LLM for text generation and classification.
type Model struct {
	llm       llms.Model
	modelName string
}

// NewModel creates the primary-path LLM model based on configuration.
func NewModel(cfg config.Config) (*Model, error) {
	return newForProvider(cfg, cfg.LLMProvider, cfg.LLMModel)
}

// NewFallbackModel creates the secondary-path LLM model based on configuration.
func NewFallbackModel(cfg config.Config) (*Model, error) {
	return newForProvider(cfg, cfg.FallbackProvider, cfg.FallbackModel)
}

func newForProvider(cfg config.Config, provider config.LLMProvider, modelName string) (*Model, error) {
	var model llms.Model
	var err error

	switch provider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(modelName),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(modelName),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(modelName),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(context.Background())
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		model, err = bedrock.New(
			bedrock.WithClient(client),
			bedrock.WithModel(cfg.BedrockModelID),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}
		modelName = cfg.BedrockModelID

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}

	return &Model{
		llm:       model,
		modelName: modelName,
	}, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// Ready reports whether the model is usable.
func (m *Model) Ready() bool {
	return m != nil && m.llm != nil
}

// Generate generates text based on a prompt.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, m.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", wrapFatalError(err))
	}
	return response, nil
}

// GenerateWithSystem generates text with a system prompt.
func (m *Model) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		slog.Warn("generation failed",
			"model", m.modelName,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return "", fmt.Errorf("generate with system: %w", wrapFatalError(err))
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return response.Choices[0].Content, nil
}

// ClassExample is one few-shot example for classification.
type ClassExample struct {
	Text  string
	Label string
}

// Classification is the parsed result of a classify call.
type Classification struct {
	Label      string
	Confidence float64
}

// Classify asks the model to pick one label for the text, given the allowed
// labels and few-shot examples. The model answers "label|confidence"; a
// malformed answer yields the first allowed label at low confidence.
func (m *Model) Classify(ctx context.Context, text string, labels []string, examples []ClassExample) (Classification, error) {
	if len(labels) == 0 {
		return Classification{}, fmt.Errorf("no labels provided")
	}

	var b strings.Builder
	b.WriteString("You are a message classifier for a car dealership assistant.\n")
	b.WriteString("Classify the customer message into exactly one of these labels: ")
	b.WriteString(strings.Join(labels, ", "))
	b.WriteString("\nRespond with only: label|confidence (confidence between 0.0 and 1.0).")
	if len(examples) > 0 {
		b.WriteString("\n\nExamples:")
		for _, ex := range examples {
			fmt.Fprintf(&b, "\n%q -> %s|0.9", ex.Text, ex.Label)
		}
	}

	answer, err := m.GenerateWithSystem(ctx, b.String(), text)
	if err != nil {
		return Classification{}, err
	}

	return parseClassification(answer, labels), nil
}

// parseClassification parses "label|confidence" leniently, falling back to
// the first allowed label with confidence 0.3.
func parseClassification(answer string, labels []string) Classification {
	fallback := Classification{Label: labels[0], Confidence: 0.3}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fallback
	}

	// Use the first line only; models sometimes append explanation.
	if idx := strings.IndexByte(answer, '\n'); idx >= 0 {
		answer = answer[:idx]
	}

	label := answer
	confidence := 0.7
	if idx := strings.IndexByte(answer, '|'); idx >= 0 {
		label = strings.TrimSpace(answer[:idx])
		if f, err := strconv.ParseFloat(strings.TrimSpace(answer[idx+1:]), 64); err == nil {
			confidence = f
		}
	}

	label = strings.ToLower(strings.TrimSpace(label))
	for _, allowed := range labels {
		if label == strings.ToLower(allowed) {
			if confidence < 0 {
				confidence = 0
			}
			if confidence > 1 {
				confidence = 1
			}
			return Classification{Label: allowed, Confidence: confidence}
		}
	}

	return fallback
}

// Summarize condenses conversation history into a short summary.
func (m *Model) Summarize(ctx context.Context, text string) (string, error) {
	systemPrompt := `You summarize dealership customer conversations.
Produce a 2-3 sentence summary covering what the customer wants, any vehicles
or services discussed, and where the conversation stands.`

	return m.GenerateWithSystem(ctx, systemPrompt, text)
}

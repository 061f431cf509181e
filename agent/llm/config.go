package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
)

// Config carries the OpenRouter-compatible chat model settings. The decider
// call interprets user intent; the phraser call writes the final reply and
// may run warmer.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.1"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`

	PhraserModel       string  `envconfig:"PHRASER_MODEL" split_words:"true"`
	PhraserTemperature float32 `envconfig:"PHRASER_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) newDeciderModel(ctx context.Context) (einomodel.ToolCallingChatModel, error) {
	return c.newChatModel(ctx, strings.TrimSpace(c.Model), c.Temperature)
}

func (c Config) newPhraserModel(ctx context.Context) (einomodel.ToolCallingChatModel, error) {
	modelName := strings.TrimSpace(c.Model)
	if v := strings.TrimSpace(c.PhraserModel); v != "" {
		modelName = v
	}
	temp := c.Temperature
	if c.PhraserTemperature >= 0 {
		temp = c.PhraserTemperature
	}
	return c.newChatModel(ctx, modelName, temp)
}

func (c Config) newChatModel(ctx context.Context, modelName string, temperature float32) (einomodel.ToolCallingChatModel, error) {
	maxTokens := c.MaxCompletionToken
	conf := &openaimodel.ChatModelConfig{
		BaseURL:     strings.TrimRight(c.BaseURL, "/"),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       modelName,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return m, nil
}

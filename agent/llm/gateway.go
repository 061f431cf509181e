package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
	promptx "github.com/gecortesh/chatbot-ecommerce/agent/prompt"
	registryx "github.com/gecortesh/chatbot-ecommerce/agent/registry"
)

// ModelGateway adapts the chat model to the core's tagged-variant contract.
// The model's free-form output is resolved into either plain text or exactly
// one function call here, at the boundary, so downstream code never
// inspects raw completions.
type ModelGateway struct {
	decider einomodel.ToolCallingChatModel
	phraser einomodel.BaseChatModel
	prompts promptx.PromptSet
	timeout time.Duration
}

var _ contractx.Gateway = (*ModelGateway)(nil)

func NewModelGateway(ctx context.Context, cfg Config, reg *registryx.Registry) (*ModelGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, errors.New("operation registry is required")
	}

	base, err := cfg.newDeciderModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create decider model: %w", err)
	}
	decider, err := base.WithTools(reg.ToolInfos())
	if err != nil {
		return nil, fmt.Errorf("bind operation tools: %w", err)
	}

	phraser, err := cfg.newPhraserModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create phraser model: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &ModelGateway{
		decider: decider,
		phraser: phraser,
		prompts: promptx.LoadPromptSet(),
		timeout: timeout,
	}, nil
}

// Decide sends the user text plus the session's accumulated context and
// interprets the completion as a Decision. A completion that is neither
// usable text nor a parsable tool call yields ErrMalformedOutput.
func (g *ModelGateway) Decide(ctx context.Context, req contractx.DecideRequest) (contractx.Decision, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: marshal decide payload: %v", contractx.ErrValidation, err)
	}

	messages := make([]*schema.Message, 0, len(req.History)+2)
	messages = append(messages, schema.SystemMessage(g.prompts.Decider))
	messages = append(messages, historyMessages(req.History)...)
	messages = append(messages, schema.UserMessage(string(payload)))

	msg, err := g.generate(ctx, g.decider, messages)
	if err != nil {
		return contractx.Decision{}, err
	}

	if len(msg.ToolCalls) > 0 {
		call, err := toFunctionCall(msg.ToolCalls[0])
		if err != nil {
			return contractx.Decision{}, err
		}
		if len(msg.ToolCalls) > 1 {
			log.Warn().Str("operation", call.Name).Int("tool_calls", len(msg.ToolCalls)).
				Msg("model requested multiple calls, keeping the first")
		}
		return contractx.Decision{Kind: contractx.DecisionFunctionCall, Call: call}, nil
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return contractx.Decision{}, fmt.Errorf("%w: empty completion", contractx.ErrMalformedOutput)
	}
	return contractx.Decision{Kind: contractx.DecisionText, Text: text}, nil
}

// Phrase turns a dispatch outcome into the final natural-language reply.
func (g *ModelGateway) Phrase(ctx context.Context, req contractx.PhraseRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w: marshal phrase payload: %v", contractx.ErrValidation, err)
	}

	messages := make([]*schema.Message, 0, len(req.History)+2)
	messages = append(messages, schema.SystemMessage(g.prompts.Phraser))
	messages = append(messages, historyMessages(req.History)...)
	messages = append(messages, schema.UserMessage(string(payload)))

	msg, err := g.generate(ctx, g.phraser, messages)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", contractx.ErrMalformedOutput)
	}
	return text, nil
}

func (g *ModelGateway) generate(ctx context.Context, m einomodel.BaseChatModel, messages []*schema.Message) (*schema.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	msg, err := m.Generate(ctx, messages)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", contractx.ErrGatewayTimeout, err)
		}
		return nil, fmt.Errorf("model invoke: %w", err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: nil completion", contractx.ErrMalformedOutput)
	}
	return msg, nil
}

func toFunctionCall(call schema.ToolCall) (contractx.FunctionCall, error) {
	name := strings.TrimSpace(call.Function.Name)
	if name == "" {
		return contractx.FunctionCall{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrMalformedOutput)
	}

	args := map[string]string{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return contractx.FunctionCall{}, fmt.Errorf("%w: invalid arguments for %s: %v", contractx.ErrMalformedOutput, name, err)
		}
		for k, v := range decoded {
			args[k] = strings.TrimSpace(fmt.Sprint(v))
		}
	}

	return contractx.FunctionCall{Name: name, Arguments: args}, nil
}

func historyMessages(history []contractx.Turn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case string(schema.Assistant):
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(turn.Content))
		}
	}
	return messages
}

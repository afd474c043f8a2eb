package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kaibot/internal/domain"
)

const (
	defaultMaxIterations = 10
	defaultMaxTokens     = 4096
)

// Agent is the gateway to the language model: one Run invocation takes a
// prompt plus the serialized prior history and drives the tool-calling loop
// until the model produces a final textual reply.
type Agent struct {
	provider      domain.Provider
	tools         *Registry
	logger        *slog.Logger
	maxIterations int
}

type Config struct {
	Provider      domain.Provider
	Tools         *Registry
	Logger        *slog.Logger
	MaxIterations int
}

func New(cfg Config) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	return &Agent{
		provider:      cfg.Provider,
		tools:         cfg.Tools,
		logger:        cfg.Logger,
		maxIterations: cfg.MaxIterations,
	}
}

// Run invokes the model with the prompt appended to the prior history and
// returns the final reply text plus the serialized full exchange. The
// returned transcript is nil when the exchange cannot be represented by the
// serialization (binary attachments); callers skip persistence in that case.
func (a *Agent) Run(ctx context.Context, prompt []domain.ContentPart, history []byte) (string, []byte, error) {
	prior, err := DecodeTranscript(history)
	if err != nil {
		return "", nil, err
	}

	convo := make([]domain.ModelMessage, 0, len(prior)+2)
	convo = append(convo, prior...)
	convo = append(convo, userMessage(prompt))

	toolDefs := a.tools.Definitions()

	var finalContent string
	for iteration := 0; iteration < a.maxIterations; iteration++ {
		a.logger.Debug("agent iteration", "iteration", iteration+1, "messages", len(convo))

		// The system prompt is rebuilt per request, never persisted.
		request := make([]domain.ModelMessage, 0, len(convo)+1)
		request = append(request, domain.ModelMessage{Role: "system", Content: systemPrompt})
		request = append(request, convo...)

		resp, err := a.provider.Chat(ctx, domain.ChatRequest{
			Messages:  request,
			Tools:     toolDefs,
			MaxTokens: defaultMaxTokens,
		})
		if err != nil {
			return "", nil, fmt.Errorf("model error: %w", err)
		}

		// No tool calls means we have the final answer.
		if !resp.HasToolCalls() {
			finalContent = resp.Content
			convo = append(convo, domain.ModelMessage{Role: "assistant", Content: resp.Content})
			break
		}

		convo = append(convo, domain.ModelMessage{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// Execute tool calls in order. Tool failures become results the
		// model relays conversationally; they do not abort the run.
		for _, tc := range resp.ToolCalls {
			a.logger.Info("executing tool", "tool", tc.Name)
			result, toolErr := a.tools.Execute(ctx, tc.Name, tc.Arguments)
			if toolErr != nil {
				result = fmt.Sprintf("Error executing tool %s: %s", tc.Name, toolErr)
			}
			convo = append(convo, domain.ModelMessage{
				Role:       "tool",
				Content:    result,
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
			})
		}
	}

	if finalContent == "" {
		finalContent = "I've completed processing but have no additional response."
		convo = append(convo, domain.ModelMessage{Role: "assistant", Content: finalContent})
	}

	transcript, err := EncodeTranscript(convo)
	if err != nil {
		if errors.Is(err, ErrBinaryContent) {
			a.logger.Debug("transcript carries attachments, not serializable")
			return finalContent, nil, nil
		}
		return "", nil, err
	}
	return finalContent, transcript, nil
}

// userMessage builds the user turn from the prompt segments, collapsing a
// single text segment into plain string content.
func userMessage(prompt []domain.ContentPart) domain.ModelMessage {
	if len(prompt) == 1 && len(prompt[0].Data) == 0 {
		return domain.ModelMessage{Role: "user", Content: prompt[0].Text}
	}
	return domain.ModelMessage{Role: "user", Parts: prompt}
}

// Package gemini adapts the Gemini API to [ports.LanguageModel]. Each
// call is a single text turn bounded by the configured timeout.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/chat"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/config"
	"github.com/jsamuelsen11/crm-chat-relay/internal/ports"
)

var _ ports.LanguageModel = (*Model)(nil)

const opGenerate = "gemini.generate"

// generator is the part of the genai client the adapter calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Model sends prompts to one Gemini model.
type Model struct {
	models  generator
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Model backed by the Gemini API.
func New(ctx context.Context, cfg *config.LLMConfig, logger *slog.Logger) (*Model, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return newModel(client.Models, cfg.Model, cfg.Timeout, logger), nil
}

func newModel(models generator, model string, timeout time.Duration, logger *slog.Logger) *Model {
	return &Model{
		models:  models,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate sends prompt as a single user turn. A prompt blocked by the
// safety policy comes back as an Answer with BlockReason set. When the
// call outlives the configured timeout the error is a
// *domain.TimeoutError.
func (m *Model) Generate(ctx context.Context, prompt string) (*chat.Answer, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := m.models.GenerateContent(ctx, m.model, genai.Text(prompt), nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &domain.TimeoutError{Op: opGenerate, Err: err}
		}
		return nil, fmt.Errorf("%s: %w", opGenerate, err)
	}

	answer := toAnswer(resp)
	m.logger.DebugContext(ctx, "language model answered",
		slog.String("model", m.model),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("blocked", answer.BlockReason != ""),
	)
	return answer, nil
}

// toAnswer maps a response to the domain. A prompt block wins over any
// text; otherwise the text is read from the first candidate, skipping
// thought parts.
func toAnswer(resp *genai.GenerateContentResponse) *chat.Answer {
	if resp == nil {
		return &chat.Answer{}
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return &chat.Answer{BlockReason: string(fb.BlockReason)}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return &chat.Answer{}
	}
	return &chat.Answer{Text: strings.TrimSpace(contentText(resp.Candidates[0].Content))}
}

func contentText(content *genai.Content) string {
	if content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// Package llm wraps the external generative-text collaborator. Everything
// downstream depends only on the Generator interface so tests can script
// replies without a network.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/finsight-ai/finsight/internal/config"
)

// Generator is the opaque generate(prompt) -> text collaborator. It may
// fail (network, quota) and its output may or may not contain a parseable
// structured block; callers must parse defensively.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatGenerator adapts an eino chat model to the Generator contract, with a
// per-call deadline so a hung upstream surfaces as a model-call failure.
type ChatGenerator struct {
	chatModel model.BaseChatModel
	timeout   time.Duration
	log       *zap.Logger
}

// NewChatGenerator builds the provider-specific chat model from config.
func NewChatGenerator(ctx context.Context, cfg *config.Config, log *zap.Logger) (*ChatGenerator, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch cfg.LLMProvider {
	case "deepseek":
		chatModel, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
	case "openai":
		maxTokens := cfg.MaxTokens
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.Model,
			MaxTokens: &maxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s chat model: %w", cfg.LLMProvider, err)
	}

	return &ChatGenerator{
		chatModel: chatModel,
		timeout:   cfg.ModelCallTimeout(),
		log:       log,
	}, nil
}

func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	msg, err := g.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		g.log.Warn("model call failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("generate: %w", err)
	}

	g.log.Debug("model call completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("reply_len", len(msg.Content)))
	return msg.Content, nil
}

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"cine-rag-api/internal/config"
	apperrors "cine-rag-api/pkg/errors"
	"cine-rag-api/pkg/logger"
	"cine-rag-api/pkg/metrics"
)

// Generator 基于 ChatModel 的回答生成器
type Generator struct {
	factory *EinoFactory
	config  *config.LLMConfig
}

// NewGenerator 创建回答生成器
func NewGenerator(factory *EinoFactory, cfg *config.Config) *Generator {
	return &Generator{
		factory: factory,
		config:  &cfg.LLM,
	}
}

// Generate 以系统提示词加用户消息调用模型，返回非空回答文本
func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	chatModel, err := g.factory.Default(ctx)
	if err != nil {
		return "", apperrors.ErrGenerationFailed.WithError(fmt.Errorf("failed to get chat model: %w", err))
	}

	provider := g.config.DefaultProvider
	modelName := ""
	if providerCfg, ok := g.config.Providers[provider]; ok {
		modelName = providerCfg.Model
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	}

	start := time.Now()
	result, err := chatModel.Generate(ctx, messages)
	metrics.LLMCallDuration.WithLabelValues(provider, modelName).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(provider, modelName, "error").Inc()
		return "", apperrors.ErrGenerationFailed.WithError(err)
	}

	content := strings.TrimSpace(result.Content)
	if content == "" {
		metrics.LLMCallTotal.WithLabelValues(provider, modelName, "empty").Inc()
		return "", apperrors.ErrGenerationFailed.WithDetail("chat model returned empty content")
	}

	metrics.LLMCallTotal.WithLabelValues(provider, modelName, "success").Inc()
	if result.ResponseMeta != nil && result.ResponseMeta.Usage != nil {
		logger.Debug(ctx, "LLM 调用完成",
			"provider", provider,
			"model", modelName,
			"prompt_tokens", result.ResponseMeta.Usage.PromptTokens,
			"completion_tokens", result.ResponseMeta.Usage.CompletionTokens,
		)
	}
	return content, nil
}

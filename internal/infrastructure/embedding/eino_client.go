package embedding

import (
	"context"
	"fmt"

	"cine-rag-api/internal/config"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
)

// EinoEmbedder OpenAI 兼容端点的 Embedder 适配
type EinoEmbedder struct {
	inner     *openai.Embedder
	batchSize int
}

// NewEinoEmbedder 基于 Eino 的 OpenAI 适配器创建 Embedder
func NewEinoEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (*EinoEmbedder, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint is required")
	}

	inner, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.Endpoint,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino embedder: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	return &EinoEmbedder{inner: inner, batchSize: batchSize}, nil
}

// Embed 批量向量化
func (e *EinoEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	normalized := make([]string, len(texts))
	for i, t := range texts {
		normalized[i] = NormalizeText(t)
	}

	var all [][]float64
	for i := 0; i < len(normalized); i += e.batchSize {
		end := i + e.batchSize
		if end > len(normalized) {
			end = len(normalized)
		}

		embeddings, err := e.inner.EmbedStrings(ctx, normalized[i:end])
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		all = append(all, embeddings...)
	}

	if len(all) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(all))
	}
	return all, nil
}

// NewEmbedder 按配置选择实现
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return NewEinoEmbedder(ctx, cfg)
	default:
		return NewOllamaClient(cfg), nil
	}
}

// Package embedding 提供向量化服务客户端
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cine-rag-api/internal/config"
)

// Embedder 向量化接口，Ollama 与 OpenAI 兼容实现共用
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// OllamaClient Ollama 原生 embed 接口客户端
type OllamaClient struct {
	endpoint   string
	model      string
	batchSize  int
	httpClient *http.Client
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewOllamaClient 创建 Ollama 客户端
func NewOllamaClient(cfg *config.EmbeddingConfig) *OllamaClient {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	model := cfg.Model
	if model == "" {
		model = "nomic-embed-text:latest"
	}
	return &OllamaClient{
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		model:     model,
		batchSize: batchSize,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Embed 批量向量化，空白折叠后发送
func (c *OllamaClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	normalized := make([]string, len(texts))
	for i, t := range texts {
		normalized[i] = NormalizeText(t)
	}

	var all [][]float64
	for i := 0; i < len(normalized); i += c.batchSize {
		end := i + c.batchSize
		if end > len(normalized) {
			end = len(normalized)
		}

		embeddings, err := c.doBatchEmbed(ctx, normalized[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, embeddings...)
	}

	if len(all) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(all))
	}
	return all, nil
}

func (c *OllamaClient) doBatchEmbed(ctx context.Context, texts []string) ([][]float64, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint is empty")
	}

	reqBody, err := json.Marshal(&ollamaEmbedRequest{
		Model: c.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/embed", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create embed request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding request failed: status=%d", httpResp.StatusCode)
	}

	var resp ollamaEmbedResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode embed response: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}

// NormalizeText 折叠连续空白为单个空格并去除首尾空白
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

package chat

import (
	"context"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"cine-rag-api/internal/config"
	"cine-rag-api/internal/domain/repository"
	"cine-rag-api/internal/infrastructure/embedding"
	apperrors "cine-rag-api/pkg/errors"
	"cine-rag-api/pkg/logger"
	"cine-rag-api/pkg/metrics"
)

var tracer = otel.Tracer("chat")

// Generator 回答生成接口
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Hit 返回给调用方的引用条目
type Hit struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path,omitempty"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date,omitempty"`
	Score       float64 `json:"score"`
}

// Answer 问答结果
type Answer struct {
	Text string `json:"answer"`
	Hits []Hit  `json:"hits"`
}

// Engine 问答编排器
//
// 单次请求的流水线：向量化问题 → 快照语料打分 → 拼装上下文 → 生成回答。
// 问题向量一次性使用，不缓存不落库；每次请求重新全库扫描。
type Engine struct {
	movies    repository.MovieRepository
	embedder  embedding.Embedder
	assembler *Assembler
	generator Generator
	cfg       *config.ChatConfig
}

// NewEngine 创建问答编排器
func NewEngine(
	movies repository.MovieRepository,
	embedder embedding.Embedder,
	assembler *Assembler,
	generator Generator,
	cfg *config.Config,
) *Engine {
	return &Engine{
		movies:    movies,
		embedder:  embedder,
		assembler: assembler,
		generator: generator,
		cfg:       &cfg.Chat,
	}
}

// Answer 回答一个影片问题
// 生成失败降级为固定话术并照常返回检索结果；
// 向量化或检索本身失败则整个请求失败。
func (e *Engine) Answer(ctx context.Context, question string, topK int) (*Answer, error) {
	ctx, span := tracer.Start(ctx, "chat.Engine.Answer")
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		metrics.ChatRequestsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.New(apperrors.CodeInvalidParam, "问题不能为空")
	}

	// 0 与负数一律视为未指定，取配置缺省值
	hitsK := topK
	if hitsK <= 0 {
		hitsK = e.defaultTopK()
	}
	contextK := hitsK
	if limit := e.maxContextK(); contextK > limit {
		contextK = limit
	}
	span.SetAttributes(
		attribute.Int("chat.top_k", hitsK),
		attribute.Int("chat.context_k", contextK),
		attribute.String("chat.prompt_version", PromptVersion),
	)

	start := time.Now()
	vectors, err := e.embedder.Embed(ctx, []string{question})
	metrics.EmbeddingCallDuration.WithLabelValues("query").Observe(time.Since(start).Seconds())
	if err != nil || len(vectors) != 1 || len(vectors[0]) == 0 {
		metrics.EmbeddingCallsTotal.WithLabelValues("query", "error").Inc()
		metrics.ChatRequestsTotal.WithLabelValues("failed").Inc()
		if err == nil {
			return nil, apperrors.New(apperrors.CodeEmbeddingFailed, "向量化服务未返回向量")
		}
		return nil, apperrors.ErrEmbeddingFailed.WithError(err)
	}
	metrics.EmbeddingCallsTotal.WithLabelValues("query", "success").Inc()
	queryVector := vectors[0]

	// 单条 SELECT 的一致快照，打分期间不受并发写入影响
	corpus, err := e.movies.ListProjections(ctx)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("failed").Inc()
		return nil, apperrors.ErrRetrievalFailed.WithError(err)
	}
	metrics.RetrievalCorpusSize.Set(float64(len(corpus)))

	rankStart := time.Now()
	candidates := Rank(ctx, queryVector, corpus)
	metrics.RetrievalDuration.Observe(time.Since(rankStart).Seconds())
	span.SetAttributes(attribute.Int("chat.candidates", len(candidates)))

	contextWindow := candidates
	if len(contextWindow) > contextK {
		contextWindow = contextWindow[:contextK]
	}

	hits := buildHits(candidates, hitsK)

	contextText, err := e.assembler.Assemble(ctx, contextWindow)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("failed").Inc()
		return nil, apperrors.ErrRetrievalFailed.WithError(err)
	}

	system, user := BuildPrompt(contextText, question)
	text, err := e.generator.Generate(ctx, system, user)
	if err != nil {
		// 检索结果已经算出，生成失败只降级回答文本
		logger.Warn(ctx, "回答生成失败，返回降级话术", "error", err.Error())
		metrics.ChatRequestsTotal.WithLabelValues("degraded").Inc()
		return &Answer{Text: FallbackAnswer, Hits: hits}, nil
	}

	metrics.ChatRequestsTotal.WithLabelValues("answered").Inc()
	return &Answer{Text: text, Hits: hits}, nil
}

func (e *Engine) defaultTopK() int {
	if e.cfg != nil && e.cfg.DefaultTopK > 0 {
		return e.cfg.DefaultTopK
	}
	return DefaultTopK
}

func (e *Engine) maxContextK() int {
	if e.cfg != nil && e.cfg.MaxContextK > 0 {
		return e.cfg.MaxContextK
	}
	return MaxContextK
}

// buildHits 截断为请求的 top_k 并对分数做 6 位小数取整，
// 避免浮点噪声泄漏给 API 消费者
func buildHits(candidates []ScoredCandidate, limit int) []Hit {
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	hits := make([]Hit, 0, len(candidates))
	for _, c := range candidates {
		hits = append(hits, Hit{
			ID:          c.Movie.ID,
			Title:       c.Movie.Title,
			PosterPath:  c.Movie.PosterPath,
			VoteAverage: c.Movie.VoteAverage,
			ReleaseDate: c.Movie.ReleaseDate,
			Score:       roundScore(c.Score),
		})
	}
	return hits
}

func roundScore(score float64) float64 {
	return math.Round(score*1e6) / 1e6
}

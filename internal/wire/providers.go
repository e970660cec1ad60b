// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/gin-gonic/gin"

	"cine-rag-api/internal/config"
	"cine-rag-api/internal/infrastructure/embedding"
	"cine-rag-api/internal/infrastructure/persistence/postgres"
	"cine-rag-api/internal/infrastructure/persistence/redis"
	"cine-rag-api/internal/infrastructure/tmdb"
	"cine-rag-api/internal/interfaces/http/router"
)

// App 应用容器
type App struct {
	Router *router.Router
	Config *config.Config
}

// Engine 返回 HTTP 引擎
func (a *App) Engine() *gin.Engine {
	return a.Router.Engine()
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideEmbedder 按配置提供向量化客户端
func ProvideEmbedder(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	return embedding.NewEmbedder(ctx, &cfg.Embedding)
}

// ProvideTMDBClient 提供 TMDB 客户端
func ProvideTMDBClient(cfg *config.Config) *tmdb.Client {
	return tmdb.NewClient(&cfg.TMDB)
}

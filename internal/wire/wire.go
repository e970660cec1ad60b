//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"cine-rag-api/internal/application/catalog"
	"cine-rag-api/internal/application/chat"
	"cine-rag-api/internal/config"
	"cine-rag-api/internal/domain/repository"
	"cine-rag-api/internal/infrastructure/llm"
	"cine-rag-api/internal/infrastructure/persistence/postgres"
	"cine-rag-api/internal/infrastructure/persistence/redis"
	"cine-rag-api/internal/interfaces/http/handler"
	"cine-rag-api/internal/interfaces/http/router"
)

// DataSet 数据层提供者集合
var DataSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewMovieRepository,
	postgres.NewShowRepository,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.MovieRepository), new(*postgres.MovieRepository)),
	wire.Bind(new(repository.ShowRepository), new(*postgres.ShowRepository)),
	ProvideRedisClient,
	redis.NewRateLimiter,
)

// DomainSet 领域服务提供者集合
var DomainSet = wire.NewSet(
	ProvideEmbedder,
	ProvideTMDBClient,
	llm.NewEinoFactory,
	llm.NewGenerator,
	wire.Bind(new(chat.Generator), new(*llm.Generator)),
	catalog.NewProjector,
	catalog.NewService,
	chat.NewAssembler,
	chat.NewEngine,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewMovieHandler,
	handler.NewShowHandler,
	handler.NewChatHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 构建完整应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		DataSet,
		DomainSet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

package bootstrap

import (
	"context"

	"market_server/adapter/out/embedding"
	"market_server/adapter/out/mongodb"
	"market_server/adapter/out/persistence"
	"market_server/config"
	"market_server/core/port/in"
	"market_server/core/port/out"
	"market_server/core/service/behavior"
	"market_server/core/service/catalog"
	"market_server/core/service/loyalty"
	"market_server/core/service/recommend"
	"market_server/core/service/search"
	"market_server/core/service/user"
	"market_server/internal/stream"
	"market_server/pkg/cache"
	"market_server/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"market_server/infra/database"
)

type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Repositories
	BehaviorRepo out.BehaviorRepository
	ProfileRepo  out.ProfileRepository
	CatalogRepo  out.CatalogRepository
	PatternRepo  out.PatternRepository
	UserRepo     out.UserRepository
	LoyaltyRepo  out.LoyaltyRepository

	// Providers
	Embedder out.EmbeddingProvider
	Cache    out.Cache

	// Messaging
	Stream    *stream.RedisStream
	Publisher out.EventPublisher

	// Services
	RecommendationService in.RecommendationService
	SearchService         in.SearchService
	BehaviorService       in.BehaviorService
	CatalogService        in.CatalogService
	UserService           in.UserService
	LoyaltyService        in.LoyaltyService
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// PostgreSQL (pgxpool for health checks, sqlx for adapters)
	if cfg.PostgresURL != "" {
		db, err := database.NewPostgres(cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		deps.DB = db
		cleanups = append(cleanups, func() { db.Close() })

		sqlDB, err := database.NewSqlx(cfg.PostgresURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.SQLDB = sqlDB
		cleanups = append(cleanups, func() { sqlDB.Close() })

		deps.UserRepo = persistence.NewUserAdapter(sqlDB)
		deps.LoyaltyRepo = persistence.NewLoyaltyAdapter(sqlDB)
	} else {
		logger.Warn("DATABASE_URL not set, user and loyalty services unavailable")
	}

	// Redis (cache + streams)
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis connection failed: %v", err)
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })

			deps.Cache = cache.NewRedisCache(redisClient)
			deps.Stream = stream.NewRedisStream(redisClient, cfg.ConsumerGroup)
			deps.Publisher = stream.NewProducer(deps.Stream)
		}
	}

	// MongoDB (behavior log, profiles, catalog, patterns)
	mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.MongoDB = mongoClient
	cleanups = append(cleanups, func() {
		mongoClient.Disconnect(context.Background())
	})

	mongoDB := mongoClient.Database(cfg.MongoDBName)
	behaviorAdapter := mongodb.NewBehaviorAdapter(mongoDB)
	profileAdapter := mongodb.NewProfileAdapter(mongoDB)
	catalogAdapter := mongodb.NewCatalogAdapter(mongoDB)
	patternAdapter := mongodb.NewPatternAdapter(mongoDB)

	indexCtx := context.Background()
	for name, ensure := range map[string]func(context.Context) error{
		"behavior_events":   behaviorAdapter.EnsureIndexes,
		"user_profiles":     profileAdapter.EnsureIndexes,
		"products":          catalogAdapter.EnsureIndexes,
		"purchase_patterns": patternAdapter.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			logger.Warn("failed to ensure indexes for %s: %v", name, err)
		}
	}

	deps.BehaviorRepo = behaviorAdapter
	deps.ProfileRepo = profileAdapter
	deps.CatalogRepo = catalogAdapter
	deps.PatternRepo = patternAdapter

	// Embedding provider
	if cfg.OpenAIAPIKey != "" {
		deps.Embedder = embedding.NewOpenAIAdapter(embedding.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.EmbeddingModel,
		})
	} else {
		logger.Warn("OPENAI_API_KEY not set, semantic search unavailable")
	}

	// Services
	if deps.LoyaltyRepo != nil {
		deps.LoyaltyService = loyalty.NewService(deps.LoyaltyRepo)
	}
	if deps.UserRepo != nil {
		deps.UserService = user.NewService(deps.UserRepo)
	}
	deps.CatalogService = catalog.NewService(deps.CatalogRepo, deps.Embedder)
	deps.BehaviorService = behavior.NewService(deps.BehaviorRepo, deps.ProfileRepo, deps.PatternRepo, deps.LoyaltyService)

	trending := recommend.NewTrendingRanker(deps.BehaviorRepo, deps.CatalogRepo)
	deps.RecommendationService = recommend.NewService(
		deps.BehaviorRepo,
		deps.ProfileRepo,
		deps.CatalogRepo,
		deps.PatternRepo,
		trending,
		deps.Cache,
	).WithCacheTTL(cfg.RecommendationTTL)

	if deps.Embedder != nil {
		deps.SearchService = search.NewService(deps.Embedder, deps.CatalogRepo)
	}

	return deps, cleanup, nil
}

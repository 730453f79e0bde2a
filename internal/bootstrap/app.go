package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docsearch/internal/ai"
	"docsearch/internal/app"
	"docsearch/internal/blob"
	"docsearch/internal/cache"
	"docsearch/internal/config"
	"docsearch/internal/model"
	mysqlClient "docsearch/internal/platform/mysql"
	rabbitmqClient "docsearch/internal/platform/rabbitmq"
	redisClient "docsearch/internal/platform/redis"
	"docsearch/internal/pkg/pdfextract"
	"docsearch/internal/repository"
	"docsearch/internal/search"
	"docsearch/internal/worker"
)

type App struct {
	Config   *config.Config
	MySQL    *gorm.DB
	Redis    *redis.Client
	MQConn   *amqp.Connection
	Embedder *ai.EmbeddingClient

	IngestService   *app.IngestService
	SearchService   *app.SearchService
	IngestPublisher *rabbitmqClient.IngestPublisher
	IngestWorker    *worker.IngestWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Document{}, &model.Chunk{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.IngestQueue)
	if err != nil {
		return nil, err
	}

	docRepo := repository.NewDocumentRepository(mysqlDB)
	chunkRepo := repository.NewChunkRepository(mysqlDB)

	embedder := ai.NewEmbeddingClient(ai.EmbeddingConfig{
		BaseURL:   cfg.Embedding.BaseURL,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
	})

	blobStore := blob.NewFSStore(cfg.Blob.RootDir)
	docLock := cache.NewDocumentLock(redisCli, time.Duration(cfg.Redis.LockTTLSeconds)*time.Second)
	searchCache := cache.NewSearchCache(redisCli, time.Duration(cfg.Redis.SearchTTLSeconds)*time.Second)

	ingestService := app.NewIngestService(
		docRepo,
		chunkRepo,
		embedder,
		blobStore,
		pdfextract.Extractor{},
		docLock,
		app.IngestOptions{
			ChunkSize:    cfg.Ingest.ChunkSize,
			ChunkOverlap: cfg.Ingest.ChunkOverlap,
			BatchSize:    cfg.Ingest.BatchSize,
			Workers:      cfg.Ingest.Workers,
			EmbedRetries: cfg.Ingest.EmbedRetries,
		},
	)

	searchService := app.NewSearchService(
		chunkRepo,
		embedder,
		searchCache,
		app.SearchOptions{
			MaxCandidates: cfg.Search.MaxCandidates,
			Weights: search.Weights{
				Vector:     cfg.Search.VectorWeight,
				Keyword:    cfg.Search.KeywordWeight,
				VectorRRF:  cfg.Search.VectorRRFWeight,
				KeywordRRF: cfg.Search.KeywordRRFWeight,
			},
		},
	)

	ingestPublisher := rabbitmqClient.NewIngestPublisher(mqConn, cfg.RabbitMQ.IngestQueue)
	ingestWorker := worker.NewIngestWorker(mqConn, ingestService, cfg.RabbitMQ.IngestQueue)
	if err := ingestWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest worker failed: %w", err)
	}

	return &App{
		Config:          cfg,
		MySQL:           mysqlDB,
		Redis:           redisCli,
		MQConn:          mqConn,
		Embedder:        embedder,
		IngestService:   ingestService,
		SearchService:   searchService,
		IngestPublisher: ingestPublisher,
		IngestWorker:    ingestWorker,
		StartedAt:       time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}

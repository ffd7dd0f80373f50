// Package bootstrap constructs the application's dependencies explicitly:
// every external client is built once here and injected, never created
// lazily behind a global.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"cpl-backend/internal/documents"
	"cpl-backend/internal/embedding"
	"cpl-backend/internal/embedding/watsonx"
	"cpl-backend/internal/ingest"
	"cpl-backend/internal/requests"
	"cpl-backend/internal/shared/config"
	"cpl-backend/internal/shared/server"
	"cpl-backend/internal/shared/storage/db"
	"cpl-backend/internal/shared/storage/object"
	coststore "cpl-backend/internal/shared/storage/object/cos"
	localstore "cpl-backend/internal/shared/storage/object/local"
	"cpl-backend/internal/shared/storage/presto"
	"cpl-backend/internal/vectorstore"
	"cpl-backend/internal/vectorstore/milvus"
)

// App holds shared dependencies for both servers.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	QueryRouter *gin.Engine

	DB           *sql.DB
	Store        object.ObjectStore
	Embedder     embedding.Embedder
	Vectors      vectorstore.Store
	RequestsRepo requests.Repo

	IngestService   *ingest.Service
	RequestsService *requests.Service
	DocumentsSvc    *documents.Service

	IngestHandler   *ingest.Handler
	DocumentHandler *documents.Handler
	RequestHandler  *requests.Handler
}

// Build prepares all dependencies and wires both routers.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	vectors, err := buildVectors(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, repo, err := buildRequestsRepo(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:       cfg,
		DB:           sqlDB,
		Store:        store,
		Embedder:     embedder,
		Vectors:      vectors,
		RequestsRepo: repo,
	}

	app.RequestsService = requests.NewService(repo)
	app.DocumentsSvc = documents.NewService(store)
	app.IngestService = &ingest.Service{
		Objects:  store,
		Vectors:  vectors,
		Embedder: embedder,
		Requests: app.RequestsService,
		Chunker:  ingest.Chunker{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap},
		Enricher: ingest.Enricher{MaxTokens: cfg.MaxChunkTokens},
	}

	app.IngestHandler = ingest.NewHandler(app.IngestService)
	app.DocumentHandler = documents.NewHandler(app.DocumentsSvc)
	app.RequestHandler = requests.NewHandler(app.RequestsService)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		IngestHandler:   app.IngestHandler,
		DocumentHandler: app.DocumentHandler,
		RequestHandler:  app.RequestHandler,
	})
	app.QueryRouter = server.NewQueryRouter(cfg, app.RequestHandler)

	return app, nil
}

// BuildReferenceService constructs the slimmer pipeline used by the
// reference-syllabus uploader: vector store only, no COS or metadata table.
func BuildReferenceService(cfg config.Config) (*ingest.Service, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	vectors, err := buildVectors(cfg)
	if err != nil {
		return nil, err
	}
	return &ingest.Service{
		Vectors:  vectors,
		Embedder: embedder,
		Chunker:  ingest.Chunker{Size: cfg.ReferenceChunkSize, Overlap: cfg.ChunkOverlap},
		Enricher: ingest.Enricher{MaxTokens: cfg.MaxChunkTokens},
	}, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "cos":
		return coststore.New(ctx, coststore.Options{
			Endpoint:        cfg.COSEndpoint,
			Region:          cfg.COSRegion,
			Bucket:          cfg.COSBucket,
			AccessKeyID:     cfg.COSAccessKeyID,
			SecretAccessKey: cfg.COSSecretKey,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildEmbedder(cfg config.Config) (embedding.Embedder, error) {
	if strings.TrimSpace(cfg.WatsonxAIAPIKey) != "" {
		return watsonx.NewClient(watsonx.Config{
			ServiceURL:  cfg.WatsonxAIURL,
			APIKey:      cfg.WatsonxAIAPIKey,
			ProjectID:   cfg.WatsonxAIProject,
			ModelID:     cfg.EmbeddingModelID,
			IAMTokenURL: cfg.IAMTokenURL,
		})
	}
	if isDevLike(cfg.Env) {
		log.Printf("bootstrap: WATSONX_AI_APIKEY empty; using deterministic dev embedder")
		return embedding.DevEmbedder{}, nil
	}
	return nil, fmt.Errorf("WATSONX_AI_APIKEY is required outside dev")
}

func buildVectors(cfg config.Config) (vectorstore.Store, error) {
	if strings.TrimSpace(cfg.MilvusURL) != "" {
		return milvus.NewClient(milvus.Config{
			BaseURL:    cfg.MilvusURL,
			APIKey:     cfg.MilvusAPIKey,
			Collection: cfg.MilvusCollection,
		})
	}
	if isDevLike(cfg.Env) {
		log.Printf("bootstrap: MILVUS_URL empty; using in-memory vector store")
		return vectorstore.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("MILVUS_URL is required outside dev")
}

func buildRequestsRepo(ctx context.Context, cfg config.Config) (*sql.DB, requests.Repo, error) {
	switch cfg.MetadataStore {
	case "presto":
		client := presto.New(presto.Config{
			BaseURL:  prestoBaseURL(cfg),
			User:     cfg.WatsonxDataUser,
			Password: cfg.WatsonxDataPassword,
		})
		repo, err := requests.NewPrestoRepo(client, cfg.IcebergCatalog, cfg.IcebergSchema, cfg.IcebergTable)
		if err != nil {
			return nil, nil, err
		}
		return nil, repo, nil
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: DATABASE_URL empty; using in-memory request repo")
				return nil, requests.NewMemoryRepo(), nil
			}
			return nil, nil, fmt.Errorf("METADATA_STORE=postgres requires DATABASE_URL")
		}
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: database connect failed; using in-memory request repo: %v", err)
				return nil, requests.NewMemoryRepo(), nil
			}
			return nil, nil, err
		}
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return sqlDB, requests.NewPGRepo(sqlDB), nil
	default:
		return nil, requests.NewMemoryRepo(), nil
	}
}

func prestoBaseURL(cfg config.Config) string {
	host := cfg.WatsonxDataHost
	if strings.Contains(host, "://") {
		return host
	}
	port := cfg.WatsonxDataPort
	if port == "" {
		port = "8443"
	}
	return "https://" + host + ":" + port
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

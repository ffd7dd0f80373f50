// Package server assembles the Gin engines for the upload API and the
// companion query service.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cpl-backend/internal/documents"
	"cpl-backend/internal/ingest"
	"cpl-backend/internal/requests"
	"cpl-backend/internal/shared/config"
	"cpl-backend/internal/shared/metrics"
	"cpl-backend/internal/shared/server/middleware"
	"cpl-backend/internal/shared/server/respond"
)

// RouterDeps carries the constructed handlers into route registration.
type RouterDeps struct {
	Config          config.Config
	IngestHandler   *ingest.Handler
	DocumentHandler *documents.Handler
	RequestHandler  *requests.Handler
}

// NewRouter constructs the upload/retrieval engine with the shared
// middleware chain and all API routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"UPLOAD": {Rate: 1, Burst: 5},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == "/api/upload-to-watsonx" {
					return "UPLOAD"
				}
				return ""
			},
		}),
	)

	api := r.Group("/api")
	deps.IngestHandler.RegisterRoutes(api)
	deps.DocumentHandler.RegisterRoutes(api)
	deps.RequestHandler.RegisterRoutes(api)

	r.GET("/metrics", metrics.Handler())
	r.GET("/health", healthHandler(deps.Config))
	r.GET("/", rootHandler(deps.Config))

	return r
}

// NewQueryRouter constructs the student-lookup engine served on its own port.
func NewQueryRouter(cfg config.Config, requestHandler *requests.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	requestHandler.RegisterQueryRoutes(r)
	r.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"status": "OK", "service": "CPL Query Service"})
	})
	r.GET("/", func(c *gin.Context) {
		respond.OK(c, gin.H{
			"service": "CPL Query Service",
			"endpoints": gin.H{
				"query_student": "POST /query-student",
				"health":        "GET /health",
			},
		})
	})

	return r
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		respond.OK(c, gin.H{
			"status":  "OK",
			"service": "CPL Upload Service",
			"configuration": gin.H{
				"embedding_model":   cfg.EmbeddingModelID,
				"chunk_size":        cfg.ChunkSize,
				"chunk_overlap":     cfg.ChunkOverlap,
				"max_chunk_tokens":  cfg.MaxChunkTokens,
				"milvus_collection": cfg.MilvusCollection,
				"cos_bucket":        cfg.COSBucket,
				"object_store":      cfg.ObjectStoreType,
				"metadata_store":    cfg.MetadataStore,
				"metadata_embedded": true,
				"safety_truncation": true,
			},
		})
	}
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		respond.OK(c, gin.H{
			"service": "CPL Upload Service",
			"features": []string{
				"chunking with overlap and safety truncation",
				"metadata embedded in chunk content",
				"COS storage for original files",
				"request records in " + cfg.MetadataStore,
			},
			"endpoints": gin.H{
				"upload":        "POST /api/upload-to-watsonx",
				"search":        "POST /api/search",
				"download":      "GET /api/download-document/:documentID/:filename",
				"preview":       "GET /api/preview-document/:documentID/:filename",
				"view":          "GET /api/view-document/:documentID/:filename",
				"get_requests":  "GET /api/get-requests",
				"update_status": "PUT /api/update-status",
			},
		})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port            string
	QueryPort       string
	CORSAllowOrigin []string
	Env             string

	ObjectStoreType string
	LocalStoreDir   string
	COSEndpoint     string
	COSRegion       string
	COSBucket       string
	COSAccessKeyID  string
	COSSecretKey    string

	MetadataStore string
	DatabaseURL   string

	WatsonxDataHost     string
	WatsonxDataPort     string
	WatsonxDataUser     string
	WatsonxDataPassword string
	IcebergCatalog      string
	IcebergSchema       string
	IcebergTable        string

	WatsonxAIURL      string
	WatsonxAIAPIKey   string
	WatsonxAIProject  string
	IAMTokenURL       string
	EmbeddingModelID  string
	MilvusURL         string
	MilvusAPIKey      string
	MilvusCollection  string

	ChunkSize          int
	ChunkOverlap       int
	ReferenceChunkSize int
	MaxChunkTokens     int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && normalizeMetadataStore(getEnv("METADATA_STORE", "presto")) == "postgres" && dbURL == "" {
		log.Printf("DATABASE_URL is required when METADATA_STORE=postgres in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		QueryPort:       getEnv("QUERY_PORT", "8081"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:             env,

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		COSEndpoint:     getEnv("COS_ENDPOINT", ""),
		COSRegion:       getEnv("COS_REGION", "us-south"),
		COSBucket:       getEnv("COS_BUCKET_NAME", "cpl-documents"),
		COSAccessKeyID:  getEnv("COS_ACCESS_KEY_ID", ""),
		COSSecretKey:    getEnv("COS_SECRET_ACCESS_KEY", ""),

		MetadataStore: normalizeMetadataStore(getEnv("METADATA_STORE", "presto")),
		DatabaseURL:   dbURL,

		WatsonxDataHost:     getEnv("WATSONX_DATA_HOST", ""),
		WatsonxDataPort:     getEnv("WATSONX_DATA_PORT", "8443"),
		WatsonxDataUser:     getEnv("WATSONX_DATA_USER", "ibmlhapikey"),
		WatsonxDataPassword: getEnv("WATSONX_DATA_PASSWORD", ""),
		IcebergCatalog:      getEnv("ICEBERG_CATALOG", "iceberg_data"),
		IcebergSchema:       getEnv("ICEBERG_SCHEMA", "cpl_schema"),
		IcebergTable:        getEnv("ICEBERG_TABLE", "cpl_requests"),

		WatsonxAIURL:     getEnv("WATSONX_AI_SERVICE_URL", ""),
		WatsonxAIAPIKey:  getEnv("WATSONX_AI_APIKEY", ""),
		WatsonxAIProject: getEnv("WATSONX_AI_PROJECT_ID", ""),
		IAMTokenURL:      getEnv("IAM_TOKEN_URL", "https://iam.cloud.ibm.com/identity/token"),
		EmbeddingModelID: getEnv("EMBEDDING_MODEL_ID", "ibm/slate-125m-english-rtrvr-v2"),
		MilvusURL:        getEnv("MILVUS_URL", ""),
		MilvusAPIKey:     getEnv("MILVUS_API_KEY", ""),
		MilvusCollection: getEnv("MILVUS_COLLECTION", "cpl_documents_v5"),

		ChunkSize:          getEnvInt("CHUNK_SIZE", 800),
		ChunkOverlap:       getEnvInt("CHUNK_OVERLAP", 150),
		ReferenceChunkSize: getEnvInt("REFERENCE_CHUNK_SIZE", 1500),
		MaxChunkTokens:     getEnvInt("MAX_CHUNK_TOKENS", 450),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || val <= 0 {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cos", "s3":
		return "cos"
	default:
		return "local"
	}
}

func normalizeMetadataStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "memory":
		return "memory"
	default:
		return "presto"
	}
}

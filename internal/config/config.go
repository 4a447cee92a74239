package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/xhit/go-str2duration/v2"
)

type Config struct {
	App       AppConfig
	Ai        AIConfig
	Tool      ToolConfig
	Retrieval RetrievalConfig
	Routing   RoutingConfig
	Stream    StreamConfig
	Otel      OtelConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMTraceLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	NatsEnabled        bool
	TelemetryTopic     string
}

type AIConfig struct {
	LLMProvider      string // "ollama" or "openai"
	LLMBaseURL       string
	LLMAPIKey        string
	RouterModel      string // model used for classification
	ChatModel        string // model used for direct and grounded answers
	EmbeddingBaseURL string
	EmbeddingModel   string
}

type ToolConfig struct {
	ServerURL string
	Token     string
}

// DocRoot is one retrieval document root with its document-count limit.
type DocRoot struct {
	Path  string
	Limit int
}

type RetrievalConfig struct {
	Roots        []DocRoot
	Pattern      string
	ChunkSize    int
	ChunkOverlap int
	Grounded     bool // false returns the top passages verbatim
	Hybrid       bool // false forces keyword-overlap scoring
	MinScore     float64
	CacheTTL     time.Duration
	BuildTimeout time.Duration
}

type RoutingConfig struct {
	ShortCircuitLen  int
	DirectLen        int
	RouterTimeout    time.Duration
	RetrievalTimeout time.Duration
	ToolTimeout      time.Duration
	DirectTimeout    time.Duration
}

// OtelConfig controls span export. Endpoint is host:port of an OTLP/HTTP
// collector such as Jaeger.
type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	ServiceName string
	SampleRatio float64
}

type StreamConfig struct {
	ChunkSize  int
	BufferSize int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMTraceLogPath:    getEnv("LLM_TRACE_LOG_PATH", "logs/llm_router.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			NatsEnabled:        getEnvAsBool("NATS_ENABLED", false),
			TelemetryTopic:     getEnv("TELEMETRY_TOPIC", "CHAT_COMPLETED"),
		},
		Ai: AIConfig{
			LLMProvider:      getEnv("LLM_PROVIDER", "ollama"),
			LLMBaseURL:       getEnv("LLM_BASE_URL", "http://localhost:11434"),
			LLMAPIKey:        getEnv("LLM_API_KEY", ""),
			RouterModel:      getEnv("LLM_ROUTER_MODEL", "qwen2.5:7b"),
			ChatModel:        getEnv("LLM_CHAT_MODEL", "llama3"),
			EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
			EmbeddingModel:   getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Tool: ToolConfig{
			ServerURL: getEnv("TOOL_SERVER_URL", "http://localhost:8765/mcp"),
			Token:     getEnv("TOOL_SERVER_TOKEN", ""),
		},
		Retrieval: RetrievalConfig{
			Roots:        getEnvAsRoots("RAG_DOC_ROOTS", "docs=50,README.md=1"),
			Pattern:      getEnv("RAG_DOC_PATTERN", "**/*.{md,txt,rst}"),
			ChunkSize:    getEnvAsInt("RAG_CHUNK_SIZE", 1000),
			ChunkOverlap: getEnvAsInt("RAG_CHUNK_OVERLAP", 100),
			Grounded:     getEnvAsBool("RAG_GROUNDED", true),
			Hybrid:       getEnvAsBool("RAG_HYBRID", true),
			MinScore:     getEnvAsFloat("RAG_MIN_SCORE", 0.35),
			CacheTTL:     getEnvAsDuration("RAG_CACHE_TTL", 10*time.Minute),
			BuildTimeout: getEnvAsDuration("RAG_BUILD_TIMEOUT", 2*time.Minute),
		},
		Routing: RoutingConfig{
			ShortCircuitLen:  getEnvAsInt("ROUTER_SHORT_CIRCUIT_LEN", 4),
			DirectLen:        getEnvAsInt("ROUTER_DIRECT_LEN", 6),
			RouterTimeout:    getEnvAsDuration("ROUTER_TIMEOUT", 20*time.Second),
			RetrievalTimeout: getEnvAsDuration("RETRIEVAL_TIMEOUT", 30*time.Second),
			ToolTimeout:      getEnvAsDuration("TOOL_TIMEOUT", 12*time.Second),
			DirectTimeout:    getEnvAsDuration("DIRECT_TIMEOUT", 30*time.Second),
		},
		Stream: StreamConfig{
			ChunkSize:  getEnvAsInt("STREAM_CHUNK_SIZE", 42),
			BufferSize: getEnvAsInt("STREAM_BUFFER", 16),
		},
		Otel: OtelConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Insecure:    getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "eval-assistant-be"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1.0),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations plus day/week units ("1d", "2w").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	value, err := str2duration.ParseDuration(strValue)
	if err != nil || value <= 0 {
		log.Printf("[WARN] Invalid duration for %s=%q, using %s", key, strValue, fallback)
		return fallback
	}
	return value
}

// getEnvAsRoots parses "path=limit,path=limit". A missing or invalid limit means 1.
func getEnvAsRoots(key, fallback string) []DocRoot {
	return parseRoots(getEnv(key, fallback))
}

func parseRoots(raw string) []DocRoot {
	var roots []DocRoot
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		path, limitStr, found := strings.Cut(entry, "=")
		limit := 1
		if found {
			if n, err := strconv.Atoi(strings.TrimSpace(limitStr)); err == nil && n > 0 {
				limit = n
			}
		}
		roots = append(roots, DocRoot{Path: strings.TrimSpace(path), Limit: limit})
	}
	return roots
}

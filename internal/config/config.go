package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"docqa-ai/internal/service"
)

// DefaultPromptTemplate is the grounding template used when neither
// PROMPT_TEMPLATE nor a prompt catalog file provides one. The model is
// instructed to refuse questions the retrieved context cannot answer.
const DefaultPromptTemplate = `You are a helpful assistant. Your task is to answer the QUESTION using only the information from the DOCUMENT below.
Answer strictly within the provided DOCUMENT, even when asked to speculate.
Answer politely in a formal style.
If the DOCUMENT does not contain the answer, reply: "I can only answer questions about the uploaded documents. I could not find an answer to your question in the documents."
DOCUMENT: {context}
QUESTION: {question}`

// Config holds all configuration for the application. It is loaded once at
// startup and passed into constructors as an immutable value.
type Config struct {
	// Yandex Foundation Models credentials (embeddings + completion).
	FolderID string `validate:"required"`
	APIKey   string `validate:"required"`

	// Search cluster connection.
	SearchHosts    []string `validate:"required,min=1"`
	SearchUser     string   `validate:"required"`
	SearchPassword string   `validate:"required"`
	SearchCAPath   string

	// Active index identifier is IndexPrefix + "-" + IndexName.
	IndexName   string `validate:"required"`
	IndexPrefix string `validate:"required"`

	// Chunker window parameters, in runes.
	ChunkSize    int `validate:"gt=0"`
	ChunkOverlap int `validate:"gte=0"`

	// Retrieval and generation parameters.
	RetrievalK  int     `validate:"gt=0"`
	ModelTier   string  `validate:"oneof=lite pro"`
	Temperature float32 `validate:"gte=0,lte=1"`
	MaxTokens   int     `validate:"gt=0"`

	// Embedding parameters.
	VectorSize     int `validate:"gt=0"`
	EmbedBatchSize int `validate:"gt=0"`

	// Outbound API throttling and timeouts.
	RateLimit   float64       `validate:"gt=0"`
	HTTPTimeout time.Duration `validate:"gt=0"`

	// PromptTemplate must contain the {context} and {question} placeholders.
	PromptTemplate string

	DBPath    string `validate:"required"`
	APIPort   string `validate:"required"`
	LogLevel  slog.Level
	LogFormat string
}

// promptCatalog is the shape of the optional YAML prompt file (PROMPTS_PATH).
type promptCatalog struct {
	Template string `yaml:"template"`
}

// Load reads configuration from environment variables and returns a Config.
// It applies defaults for optional fields and validates required fields before
// any pipeline call can happen. If a .env file exists in the current directory
// or a parent directory, it is loaded automatically; variables already set in
// the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Walk up from the working directory looking for a project-root .env.
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		FolderID:       os.Getenv("YAGPT_FOLDER_ID"),
		APIKey:         os.Getenv("YAGPT_API_KEY"),
		SearchHosts:    splitHosts(os.Getenv("SEARCH_HOSTS")),
		SearchUser:     getEnv("SEARCH_USER", "admin"),
		SearchPassword: os.Getenv("SEARCH_PASSWORD"),
		SearchCAPath:   os.Getenv("SEARCH_CA_PATH"),
		IndexName:      os.Getenv("SEARCH_INDEX_NAME"),
		IndexPrefix:    os.Getenv("SEARCH_INDEX_PREFIX"),
		ModelTier:      getEnv("MODEL_TIER", "pro"),
		DBPath:         getEnv("DB_PATH", "./data/docqa.db"),
		APIPort:        getEnv("API_PORT", "9000"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 100); err != nil {
		return nil, err
	}
	if cfg.RetrievalK, err = getEnvInt("RAG_K", 5); err != nil {
		return nil, err
	}
	if cfg.MaxTokens, err = getEnvInt("MAX_TOKENS", 8000); err != nil {
		return nil, err
	}
	if cfg.VectorSize, err = getEnvInt("VECTOR_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.EmbedBatchSize, err = getEnvInt("EMBED_BATCH_SIZE", 100); err != nil {
		return nil, err
	}

	temp, err := getEnvFloat("TEMPERATURE", 0.1)
	if err != nil {
		return nil, err
	}
	cfg.Temperature = float32(temp)

	if cfg.RateLimit, err = getEnvFloat("API_RATE_LIMIT", 10); err != nil {
		return nil, err
	}

	timeoutSecs, err := getEnvInt("HTTP_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = time.Duration(timeoutSecs) * time.Second

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	cfg.PromptTemplate, err = resolvePromptTemplate()
	if err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrConfig, err)
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("%w: CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)",
			service.ErrConfig, cfg.ChunkOverlap, cfg.ChunkSize)
	}
	if err := ValidatePromptTemplate(cfg.PromptTemplate); err != nil {
		return nil, err
	}

	// Create the data directory for the ingest ledger if it doesn't exist.
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// ValidatePromptTemplate checks that a grounding template carries both
// required placeholders. This runs once at configuration time, not per call.
func ValidatePromptTemplate(tmpl string) error {
	if !strings.Contains(tmpl, "{context}") {
		return fmt.Errorf("%w: missing {context} placeholder", service.ErrTemplate)
	}
	if !strings.Contains(tmpl, "{question}") {
		return fmt.Errorf("%w: missing {question} placeholder", service.ErrTemplate)
	}
	return nil
}

// resolvePromptTemplate picks the grounding template: the PROMPT_TEMPLATE
// variable wins, then the PROMPTS_PATH YAML catalog, then the built-in default.
func resolvePromptTemplate() (string, error) {
	if tmpl := os.Getenv("PROMPT_TEMPLATE"); tmpl != "" {
		return tmpl, nil
	}

	if path := os.Getenv("PROMPTS_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt catalog %s: %w", path, err)
		}
		var catalog promptCatalog
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return "", fmt.Errorf("failed to parse prompt catalog %s: %w", path, err)
		}
		if catalog.Template != "" {
			return catalog.Template, nil
		}
	}

	return DefaultPromptTemplate, nil
}

// splitHosts parses a comma-separated host list, dropping empty entries.
func splitHosts(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		if h := strings.TrimSpace(p); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown LOG_LEVEL %q", service.ErrConfig, raw)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer: %v", service.ErrConfig, key, err)
	}
	return value, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number: %v", service.ErrConfig, key, err)
	}
	return value, nil
}

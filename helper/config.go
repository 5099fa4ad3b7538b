package helper

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	GraphBackendNeo4j    = "neo4j"
	GraphBackendPostgres = "postgres"

	VectorBackendQdrant   = "qdrant"
	VectorBackendPgvector = "pgvector"

	EmbeddingProviderOpenAI = "openai"
	EmbeddingProviderLocal  = "local"
)

// Configuration is the single settings object handed to constructors.
type Configuration struct {
	LogLevel      string                 `yaml:"log_level"`
	GraphBackend  string                 `yaml:"graph_backend"`
	VectorBackend string                 `yaml:"vector_backend"`
	OutputDir     string                 `yaml:"output_dir"`
	Neo4j         Neo4jConfiguration     `yaml:"neo4j"`
	Database      *DatabaseConfiguration `yaml:"database"`
	OpenAI        OpenAIConfiguration    `yaml:"openai"`
	Qdrant        QdrantConfiguration    `yaml:"qdrant"`
	Index         IndexConfiguration     `yaml:"index"`
}

type Neo4jConfiguration struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type OpenAIConfiguration struct {
	APIKey             string `yaml:"api_key"`
	BaseURL            string `yaml:"base_url"`
	ChatModel          string `yaml:"chat_model"`
	EmbeddingModel     string `yaml:"embedding_model"`
	EmbeddingProvider  string `yaml:"embedding_provider"`
	EmbeddingDimension int    `yaml:"embedding_dimension"`
}

type QdrantConfiguration struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
	UseTLS bool   `yaml:"use_tls"`
}

type IndexConfiguration struct {
	Name          string `yaml:"name"`
	ForceRecreate bool   `yaml:"force_recreate"`
}

// LoadConfiguration loads envFile into the environment when it exists,
// builds the configuration from the environment, overlays yamlFile when
// given and validates the result.
func LoadConfiguration(envFile string, yamlFile string) (*Configuration, error) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, NewError("load env file", err)
		}
	}

	config, err := NewConfigurationFromEnv()
	if err != nil {
		return nil, err
	}

	if yamlFile != "" {
		err = config.overlayYAML(yamlFile)
		if err != nil {
			return nil, NewError("load yaml config", err)
		}
	}

	err = config.Validate()
	if err != nil {
		return nil, NewError("validate configuration", err)
	}

	return config, nil
}

// NewConfigurationFromEnv reads every setting from the environment and
// applies defaults. It does not validate.
func NewConfigurationFromEnv() (*Configuration, error) {
	embeddingDimension, err := envInt("EMBEDDING_DIMENSION", 0)
	if err != nil {
		return nil, err
	}
	qdrantPort, err := envInt("QDRANT_PORT", 6334)
	if err != nil {
		return nil, err
	}
	qdrantTLS, err := envBool("QDRANT_USE_TLS", false)
	if err != nil {
		return nil, err
	}
	forceRecreate, err := envBool("VECTOR_INDEX_RECREATE", true)
	if err != nil {
		return nil, err
	}

	config := &Configuration{
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		GraphBackend:  getEnvOrDefault("GRAPH_BACKEND", GraphBackendNeo4j),
		VectorBackend: getEnvOrDefault("VECTOR_BACKEND", VectorBackendQdrant),
		OutputDir:     getEnvOrDefault("OUTPUT_DIR", "meeting_analysis"),
		Neo4j: Neo4jConfiguration{
			URI:      os.Getenv("NEO4J_URI"),
			Username: os.Getenv("NEO4J_USER"),
			Password: os.Getenv("NEO4J_PASSWORD"),
			Database: getEnvOrDefault("NEO4J_DATABASE", "neo4j"),
		},
		Database: &DatabaseConfiguration{
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			Database: os.Getenv("DB_DATABASE"),
			Username: os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Schema:   getEnvOrDefault("DB_SCHEMA", "public"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		OpenAI: OpenAIConfiguration{
			APIKey:             os.Getenv("OPENAI_API_KEY"),
			BaseURL:            os.Getenv("OPENAI_BASE_URL"),
			ChatModel:          getEnvOrDefault("OPENAI_CHAT_MODEL", "gpt-4"),
			EmbeddingModel:     getEnvOrDefault("OPENAI_EMBEDDING_MODEL", "text-embedding-ada-002"),
			EmbeddingProvider:  getEnvOrDefault("EMBEDDING_PROVIDER", EmbeddingProviderOpenAI),
			EmbeddingDimension: embeddingDimension,
		},
		Qdrant: QdrantConfiguration{
			Host:   getEnvOrDefault("QDRANT_HOST", "localhost"),
			Port:   qdrantPort,
			APIKey: os.Getenv("QDRANT_API_KEY"),
			UseTLS: qdrantTLS,
		},
		Index: IndexConfiguration{
			Name:          getEnvOrDefault("VECTOR_INDEX_NAME", "meeting-analysis"),
			ForceRecreate: forceRecreate,
		},
	}
	config.applyDimensionDefault()

	return config, nil
}

func (c *Configuration) overlayYAML(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))
	err = yaml.Unmarshal([]byte(expanded), c)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	c.applyDimensionDefault()

	return nil
}

func (c *Configuration) applyDimensionDefault() {
	if c.OpenAI.EmbeddingDimension > 0 {
		return
	}
	if c.OpenAI.EmbeddingProvider == EmbeddingProviderLocal {
		c.OpenAI.EmbeddingDimension = 384
		return
	}
	c.OpenAI.EmbeddingDimension = 1536
}

func (c Configuration) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.GraphBackend, validation.Required, validation.In(GraphBackendNeo4j, GraphBackendPostgres)),
		validation.Field(&c.VectorBackend, validation.Required, validation.In(VectorBackendQdrant, VectorBackendPgvector)),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.Neo4j, validation.Skip.When(c.GraphBackend != GraphBackendNeo4j)),
		validation.Field(&c.Database, validation.Skip.When(!c.usesPostgres()), validation.Required),
		validation.Field(&c.OpenAI),
		validation.Field(&c.Qdrant, validation.Skip.When(c.VectorBackend != VectorBackendQdrant)),
		validation.Field(&c.Index),
	)
}

func (c Configuration) usesPostgres() bool {
	return c.GraphBackend == GraphBackendPostgres || c.VectorBackend == VectorBackendPgvector
}

func (c Neo4jConfiguration) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.URI, validation.Required),
		validation.Field(&c.Password, validation.When(c.Username != "", validation.Required)),
		validation.Field(&c.Database, validation.Required),
	)
}

func (c OpenAIConfiguration) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.APIKey, validation.Required),
		validation.Field(&c.ChatModel, validation.Required),
		validation.Field(&c.EmbeddingProvider, validation.Required, validation.In(EmbeddingProviderOpenAI, EmbeddingProviderLocal)),
		validation.Field(&c.EmbeddingModel, validation.When(c.EmbeddingProvider == EmbeddingProviderOpenAI, validation.Required)),
		validation.Field(&c.EmbeddingDimension, validation.Required, validation.Min(1)),
	)
}

func (c QdrantConfiguration) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

func (c IndexConfiguration) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 63)),
	)
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Configuration) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, NewError("parse "+key, err)
	}
	return parsed, nil
}

func envBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, NewError("parse "+key, err)
	}
	return parsed, nil
}

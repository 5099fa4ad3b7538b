package helper

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnvs(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://localhost:7687")
	t.Setenv("NEO4J_USER", "neo4j")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoadConfiguration(t *testing.T) {
	t.Run("Defaults are applied from the environment", func(t *testing.T) {
		setRequiredEnvs(t)

		config, err := LoadConfiguration("", "")
		require.NoError(t, err, "Expected LoadConfiguration to not return an error")

		assert.Equal(t, GraphBackendNeo4j, config.GraphBackend, "Expected neo4j graph backend by default")
		assert.Equal(t, VectorBackendQdrant, config.VectorBackend, "Expected qdrant vector backend by default")
		assert.Equal(t, "neo4j", config.Neo4j.Database, "Expected default neo4j database")
		assert.Equal(t, "gpt-4", config.OpenAI.ChatModel, "Expected default chat model")
		assert.Equal(t, "text-embedding-ada-002", config.OpenAI.EmbeddingModel, "Expected default embedding model")
		assert.Equal(t, 1536, config.OpenAI.EmbeddingDimension, "Expected ada-002 dimension")
		assert.Equal(t, "meeting-analysis", config.Index.Name, "Expected default index name")
		assert.Equal(t, "meeting_analysis", config.OutputDir, "Expected default output directory")
		assert.Equal(t, slog.LevelInfo, config.SlogLevel(), "Expected info log level")
	})

	t.Run("Local embeddings default to 384 dimensions", func(t *testing.T) {
		setRequiredEnvs(t)
		t.Setenv("EMBEDDING_PROVIDER", EmbeddingProviderLocal)

		config, err := LoadConfiguration("", "")
		require.NoError(t, err, "Expected LoadConfiguration to not return an error")
		assert.Equal(t, 384, config.OpenAI.EmbeddingDimension, "Expected MiniLM dimension")
	})

	t.Run("Env file is loaded", func(t *testing.T) {
		dir := t.TempDir()
		envFile := filepath.Join(dir, ".env")
		err := os.WriteFile(envFile, []byte("MEETGRAPH_TEST_ENV_FILE=loaded\n"), 0600)
		require.NoError(t, err)
		t.Cleanup(func() { os.Unsetenv("MEETGRAPH_TEST_ENV_FILE") })
		setRequiredEnvs(t)

		_, err = LoadConfiguration(envFile, "")
		require.NoError(t, err, "Expected LoadConfiguration to not return an error")
		assert.Equal(t, "loaded", os.Getenv("MEETGRAPH_TEST_ENV_FILE"), "Expected env file variable to be set")
	})

	t.Run("Missing env file is ignored", func(t *testing.T) {
		setRequiredEnvs(t)

		_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.env"), "")
		assert.NoError(t, err, "Expected missing env file to be ignored")
	})

	t.Run("YAML overlay expands environment variables", func(t *testing.T) {
		setRequiredEnvs(t)
		t.Setenv("MEETGRAPH_TEST_DB_HOST", "db.internal")

		yamlFile := filepath.Join(t.TempDir(), "config.yaml")
		content := `
graph_backend: postgres
vector_backend: pgvector
database:
  host: ${MEETGRAPH_TEST_DB_HOST}
  database: meetings
  username: meetgraph
index:
  name: weekly-notes
`
		err := os.WriteFile(yamlFile, []byte(content), 0600)
		require.NoError(t, err)

		config, err := LoadConfiguration("", yamlFile)
		require.NoError(t, err, "Expected LoadConfiguration to not return an error")
		assert.Equal(t, GraphBackendPostgres, config.GraphBackend, "Expected graph backend from yaml")
		assert.Equal(t, "db.internal", config.Database.Host, "Expected expanded host")
		assert.Equal(t, "5432", config.Database.Port, "Expected env default to survive the overlay")
		assert.Equal(t, "weekly-notes", config.Index.Name, "Expected index name from yaml")
	})

	t.Run("Missing API key fails validation", func(t *testing.T) {
		setRequiredEnvs(t)
		t.Setenv("OPENAI_API_KEY", "")

		_, err := LoadConfiguration("", "")
		require.Error(t, err, "Expected validation error")
		assert.Contains(t, err.Error(), "APIKey", "Expected error to name the missing field")
	})

	t.Run("Unknown graph backend fails validation", func(t *testing.T) {
		setRequiredEnvs(t)
		t.Setenv("GRAPH_BACKEND", "sqlite")

		_, err := LoadConfiguration("", "")
		assert.Error(t, err, "Expected validation error for unknown backend")
	})

	t.Run("Postgres backend requires database settings", func(t *testing.T) {
		setRequiredEnvs(t)
		t.Setenv("GRAPH_BACKEND", GraphBackendPostgres)
		t.Setenv("DB_HOST", "")

		_, err := LoadConfiguration("", "")
		assert.Error(t, err, "Expected validation error for missing database host")
	})

	t.Run("Invalid integer variable is reported", func(t *testing.T) {
		setRequiredEnvs(t)
		t.Setenv("QDRANT_PORT", "not-a-port")

		_, err := LoadConfiguration("", "")
		require.Error(t, err, "Expected parse error")
		assert.Contains(t, err.Error(), "QDRANT_PORT", "Expected error to name the variable")
	})
}

func TestNewDatabaseConfiguration(t *testing.T) {
	t.Run("Valid configuration builds connection string", func(t *testing.T) {
		SetTestDatabaseConfigEnvs(t, "15432")

		config, err := NewDatabaseConfiguration()
		require.NoError(t, err, "Expected NewDatabaseConfiguration to not return an error")
		assert.Contains(t, config.ConnectionString(), "localhost:15432", "Expected host and port in connection string")
		assert.Contains(t, config.ConnectionString(), "sslmode=disable", "Expected sslmode in connection string")
	})

	t.Run("Missing host fails", func(t *testing.T) {
		SetTestDatabaseConfigEnvs(t, "15432")
		t.Setenv("DB_HOST", "")

		_, err := NewDatabaseConfiguration()
		assert.Error(t, err, "Expected error for missing host")
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  base_url: "http://localhost:11434"
  model: "mistral"
  embed_model: "nomic-embed-text:latest"
  max_tokens: 1000
  temperature: 0.5

database:
  url: "postgres://localhost:5432/test"
  table_name: "test_docs"
  vector_dim: 768
  batch_size: 50

graph:
  uri: "bolt://localhost:7687"
  username: "neo4j"
  password: "password"
  allow_dangerous_queries: true

processor:
  chunk_size: 500
  chunk_overlap: 100

retrieval:
  top_k: 4

ingest:
  upload_dir: "tmp/uploads"
  static_dir: "tmp/static"
  extract_concurrency: 2
  extract_rate_limit: 1.5

server:
  addr: ":9090"
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "mistral", config.LLM.Model)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "test_docs", config.Database.TableName)
	assert.Equal(t, 50, config.Database.BatchSize)
	assert.Equal(t, "bolt://localhost:7687", config.Graph.URI)
	assert.True(t, config.Graph.AllowDangerousQueries)
	assert.Equal(t, 500, config.Processor.ChunkSize)
	assert.Equal(t, 100, config.Processor.ChunkOverlap)
	assert.Equal(t, 4, config.Retrieval.TopK)
	assert.Equal(t, "tmp/uploads", config.Ingest.UploadDir)
	assert.Equal(t, 2, config.Ingest.ExtractConcurrency)
	assert.Equal(t, ":9090", config.Server.Addr)
}

func TestLoadConfigDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("llm:\n  model: mistral\n"), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", config.LLM.BaseURL)
	assert.Equal(t, "nomic-embed-text:latest", config.LLM.EmbedModel)
	assert.Equal(t, 2000, config.LLM.MaxTokens)
	assert.Equal(t, "rag_docs", config.Database.TableName)
	assert.Equal(t, 768, config.Database.VectorDim)
	assert.Equal(t, "bolt://localhost:7687", config.Graph.URI)
	assert.Equal(t, "neo4j", config.Graph.Username)
	assert.False(t, config.Graph.AllowDangerousQueries)
	assert.Equal(t, 1000, config.Processor.ChunkSize)
	assert.Equal(t, 200, config.Processor.ChunkOverlap)
	assert.Equal(t, 2, config.Retrieval.TopK)
	assert.Equal(t, "uploads", config.Ingest.UploadDir)
	assert.Equal(t, "static", config.Ingest.StaticDir)
	assert.Equal(t, ":8080", config.Server.Addr)
}

func TestLoadConfigEnvMerge(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://graph.example.com:7687")
	t.Setenv("NEO4J_USERNAME", "svc")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("DATABASE_URL", "postgres://db.example.com:5432/rag")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configPath, []byte("server:\n  addr: \":8081\"\n"), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "bolt://graph.example.com:7687", config.Graph.URI)
	assert.Equal(t, "svc", config.Graph.Username)
	assert.Equal(t, "secret", config.Graph.Password)
	assert.Equal(t, "postgres://db.example.com:5432/rag", config.Database.URL)
}

func TestValidate(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)
	assert.Empty(t, config.Validate())

	config.Processor.ChunkOverlap = config.Processor.ChunkSize
	config.Retrieval.TopK = 0
	config.LLM.Temperature = 3

	errs := config.Validate()
	require.Len(t, errs, 3)

	fields := make([]string, 0, len(errs))
	for _, verr := range errs {
		fields = append(fields, verr.Field)
		assert.NotEmpty(t, verr.Error())
	}
	assert.Contains(t, fields, "processor.chunk_overlap")
	assert.Contains(t, fields, "retrieval.top_k")
	assert.Contains(t, fields, "llm.temperature")
}

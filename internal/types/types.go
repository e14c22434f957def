package types

import (
	"context"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
)

// Gateway is the single call contract the core needs from a hosted
// text-generation model.
type Gateway interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Embedder turns text into vectors for the vector index.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore stores embedded chunks tagged with tenant identity and
// supports similarity search filtered by tenant.
type VectorStore interface {
	Store(ctx context.Context, chunks []models.Chunk) error
	Search(ctx context.Context, userID string, embedding []float32, limit int) ([]models.Chunk, error)
	DeleteUser(ctx context.Context, userID string) error
	Close()
}

// GraphStore stores labeled nodes and typed edges tagged with tenant
// identity, executes structured queries, and bulk-merges extracted
// graphs.
type GraphStore interface {
	MergeDocumentUpload(ctx context.Context, userID, filename string) error
	MergeGraph(ctx context.Context, userID string, graph models.KnowledgeGraph) error
	Run(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error)
	Subgraph(ctx context.Context, userID string, limit int) (models.KnowledgeGraph, error)
	DeleteUser(ctx context.Context, userID string) error
	Close(ctx context.Context) error
}

// Extractor infers a small knowledge graph from a span of text.
type Extractor interface {
	Extract(ctx context.Context, userID, text string) (models.KnowledgeGraph, error)
}

// StatusStore tracks per-tenant ingestion progress. Set is an atomic
// per-key replace; Get returns the idle status for unseen tenants.
type StatusStore interface {
	Get(userID string) string
	Set(userID, status string)
	Reset(userID string)
}

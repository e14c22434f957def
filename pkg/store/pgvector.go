package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/types"
)

type VectorStoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
	BatchSize  int
}

// VectorStore keeps embedded chunks in Postgres/pgvector. Every row
// carries the owning tenant; every search filters by it.
type VectorStore struct {
	config   VectorStoreConfig
	pool     *pgxpool.Pool
	embedder types.Embedder
}

func NewWithConfig(ctx context.Context, config VectorStoreConfig, embedder types.Embedder) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "rag_docs"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vs := &VectorStore{
		config:   config,
		pool:     pool,
		embedder: embedder,
	}

	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *VectorStore) initialize(ctx context.Context) error {
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			source TEXT NOT NULL,
			content TEXT,
			chunk_index INTEGER,
			embedding vector(%d)
		)`, vs.config.TableName, vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	createUserIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_user_idx ON %s (user_id)`,
		vs.config.TableName, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createUserIndex)
	if err != nil {
		return fmt.Errorf("failed to create user index: %w", err)
	}

	return nil
}

// Store embeds and upserts chunks. Re-ingesting the same chunk ID
// overwrites content and embedding rather than duplicating the row.
func (vs *VectorStore) Store(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, source, content, chunk_index, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`,
		vs.config.TableName)

	for start := 0; start < len(chunks); start += vs.config.BatchSize {
		end := start + vs.config.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		embeddings, err := vs.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunks: %w", err)
		}

		for i, chunk := range batch {
			_, err = tx.Exec(ctx, stmt,
				chunk.ID,
				chunk.UserID,
				chunk.Source,
				chunk.Content,
				chunk.Index,
				pgvector.NewVector(embeddings[i]),
			)
			if err != nil {
				return fmt.Errorf("failed to insert chunk: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Search returns the closest chunks to embedding owned by userID.
// Rows tagged with any other tenant are never visible to the query.
func (vs *VectorStore) Search(ctx context.Context, userID string, embedding []float32, limit int) ([]models.Chunk, error) {
	if limit <= 0 {
		limit = 2
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, source, content, chunk_index
		FROM %s
		WHERE user_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3`,
		vs.config.TableName)

	rows, err := vs.pool.Query(ctx, query, userID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.UserID,
			&chunk.Source,
			&chunk.Content,
			&chunk.Index,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// DeleteUser purges every chunk owned by a tenant.
func (vs *VectorStore) DeleteUser(ctx context.Context, userID string) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", vs.config.TableName)
	if _, err := vs.pool.Exec(ctx, stmt, userID); err != nil {
		return fmt.Errorf("failed to delete tenant chunks: %w", err)
	}
	return nil
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

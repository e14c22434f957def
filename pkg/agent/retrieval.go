package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/graph"
)

// vectorRetrieval fills the state context from a tenant-filtered
// similarity search. It never fails the pipeline: store and embedding
// errors degrade to an empty context.
func (a *Agent) vectorRetrieval(ctx context.Context, state *models.AgentState) {
	state.Tool = models.ToolVectorSearch

	embedding, err := a.embedder.EmbedQuery(ctx, state.Question)
	if err != nil {
		a.logger.Warn("query embedding failed", zap.Error(err))
		return
	}

	chunks, err := a.vectors.Search(ctx, state.UserID, embedding, a.config.TopK)
	if err != nil {
		a.logger.Warn("vector search failed", zap.Error(err))
		return
	}

	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Content)
	}
	state.Context = strings.Join(texts, "\n")
}

const cypherSystem = `You translate questions into Cypher queries for Neo4j. ` +
	`Node labels: User, Document, Person, Organization, Concept, Location. ` +
	`Nodes carry "name" and "user_id" properties; relationships are typed ` +
	`(e.g. UPLOADED, MENTIONS). Respond with a single Cypher query and nothing else.`

// graphRetrieval fills the state context from a generated Cypher query.
// Any failure along the chain is caught here and substituted with the
// sentinel context; nothing propagates to the caller.
func (a *Agent) graphRetrieval(ctx context.Context, state *models.AgentState) {
	answer, err := a.queryGraph(ctx, state.Question, state.UserID)
	if err != nil {
		a.logger.Warn("graph retrieval failed",
			zap.String("user_id", state.UserID),
			zap.Error(err))
		state.Context = "No graph data found."
		state.Tool = models.ToolGraphFailed
		return
	}

	state.Context = answer
	state.Tool = models.ToolGraphCypher
}

func (a *Agent) queryGraph(ctx context.Context, question, userID string) (string, error) {
	prompt := fmt.Sprintf("%s (Limit to nodes with user_id='%s')", question, userID)

	raw, err := a.gateway.Generate(ctx, cypherSystem, prompt)
	if err != nil {
		return "", fmt.Errorf("cypher generation failed: %w", err)
	}

	query := graph.CleanQuery(raw)
	if query == "" {
		return "", fmt.Errorf("empty generated query")
	}

	if !a.config.AllowDangerousQueries {
		if err := graph.ValidateReadOnly(query); err != nil {
			return "", err
		}
	}

	rows, err := a.graph.Run(ctx, query, nil)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", graph.ErrNoGraphData
	}

	encoded, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to encode query results: %w", err)
	}

	summary, err := a.gateway.Generate(ctx, "", fmt.Sprintf(
		"Summarize these graph query results as a direct answer to the question.\nQuestion: %s\nResults: %s",
		question, encoded))
	if err != nil {
		return "", fmt.Errorf("result summarization failed: %w", err)
	}

	return summary, nil
}

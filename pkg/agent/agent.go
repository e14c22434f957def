// Package agent runs the query pipeline: classify the question, fetch
// context from the graph or the vector index, then synthesize an
// answer. The whole pipeline executes synchronously within one request.
package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/types"
)

type Config struct {
	TopK int // vector matches pulled into context

	// AllowDangerousQueries disables the read-only guard on generated
	// Cypher. Off unless explicitly opted into.
	AllowDangerousQueries bool
}

type Agent struct {
	config   Config
	gateway  types.Gateway
	embedder types.Embedder
	vectors  types.VectorStore
	graph    types.GraphStore
	logger   *zap.Logger
}

func New(config Config, gateway types.Gateway, embedder types.Embedder,
	vectors types.VectorStore, graphStore types.GraphStore, logger *zap.Logger) *Agent {
	if config.TopK <= 0 {
		config.TopK = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Agent{
		config:   config,
		gateway:  gateway,
		embedder: embedder,
		vectors:  vectors,
		graph:    graphStore,
		logger:   logger,
	}
}

// Run executes the two-branch pipeline for one question. Retrieval
// failures degrade to empty or sentinel context; only a synthesis
// failure is returned as an error.
func (a *Agent) Run(ctx context.Context, question, userID string) (models.AgentState, error) {
	state := models.AgentState{
		Question: question,
		UserID:   userID,
		Tool:     models.ToolUnknown,
	}

	switch a.route(ctx, question) {
	case models.RouteGraph:
		a.graphRetrieval(ctx, &state)
	default:
		a.vectorRetrieval(ctx, &state)
	}

	answer, err := a.generate(ctx, state)
	if err != nil {
		return state, fmt.Errorf("answer generation failed: %w", err)
	}
	state.Answer = answer

	return state, nil
}

func (a *Agent) generate(ctx context.Context, state models.AgentState) (string, error) {
	prompt := fmt.Sprintf("Context: %s\nQuestion: %s\nAnswer:", state.Context, state.Question)
	return a.gateway.Generate(ctx, "", prompt)
}

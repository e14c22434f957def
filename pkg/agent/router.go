package agent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
)

const classifySystem = "Classify: 'GRAPH' for relationships/connections, 'VECTOR' for content/summary."

// route classifies the question with a single gateway call. The
// decision rule is a substring test: any "GRAPH" in the reply selects
// the graph route, everything else falls through to vector. A gateway
// failure also defaults to vector so the pipeline stays non-fatal.
func (a *Agent) route(ctx context.Context, question string) models.Route {
	classification, err := a.gateway.Generate(ctx, classifySystem, question)
	if err != nil {
		a.logger.Warn("classification failed, defaulting to vector route",
			zap.Error(err))
		return models.RouteVector
	}

	if strings.Contains(strings.ToUpper(classification), "GRAPH") {
		return models.RouteGraph
	}
	return models.RouteVector
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/types"
)

const extractSystem = `You extract knowledge graphs from text. ` +
	`Identify the entities and the relationships between them. ` +
	`Respond with JSON only, no prose, in this shape: ` +
	`{"nodes":[{"name":"...","label":"Person|Organization|Concept|Location"}],` +
	`"edges":[{"source":"...","target":"...","type":"RELATES_TO"}]}`

// allowedLabels is the closed set of node labels extraction may emit.
// Anything else collapses to Concept so model output can never invent
// labels that reach the graph store.
var allowedLabels = map[string]bool{
	"Person":       true,
	"Organization": true,
	"Concept":      true,
	"Location":     true,
}

// GraphExtractor infers a small knowledge graph from a chunk of text
// via the language-model gateway. Extraction is best-effort and
// non-deterministic.
type GraphExtractor struct {
	gateway types.Gateway
}

func NewGraphExtractor(gateway types.Gateway) *GraphExtractor {
	return &GraphExtractor{gateway: gateway}
}

// Extract asks the model for entities and relations in text. Every
// returned node is tagged with the tenant identity.
func (x *GraphExtractor) Extract(ctx context.Context, userID, text string) (models.KnowledgeGraph, error) {
	var graph models.KnowledgeGraph

	prompt := fmt.Sprintf("Text:\n%s", text)
	out, err := x.gateway.Generate(ctx, extractSystem, prompt)
	if err != nil {
		return graph, fmt.Errorf("extraction call failed: %w", err)
	}

	payload := extractJSON(out)
	if payload == "" {
		return graph, fmt.Errorf("no JSON object in extraction output")
	}

	var raw struct {
		Nodes []struct {
			Name  string `json:"name"`
			Label string `json:"label"`
		} `json:"nodes"`
		Edges []struct {
			Source string `json:"source"`
			Target string `json:"target"`
			Type   string `json:"type"`
		} `json:"edges"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return graph, fmt.Errorf("unparsable extraction output: %w", err)
	}

	for _, n := range raw.Nodes {
		name := strings.TrimSpace(n.Name)
		if name == "" {
			continue
		}
		label := strings.TrimSpace(n.Label)
		if !allowedLabels[label] {
			label = "Concept"
		}
		graph.Nodes = append(graph.Nodes, models.GraphNode{
			Name:  name,
			Label: label,
			Props: map[string]interface{}{"user_id": userID},
		})
	}

	for _, e := range raw.Edges {
		source := strings.TrimSpace(e.Source)
		target := strings.TrimSpace(e.Target)
		if source == "" || target == "" {
			continue
		}
		relType := strings.TrimSpace(e.Type)
		if relType == "" {
			relType = "RELATES_TO"
		}
		graph.Edges = append(graph.Edges, models.GraphEdge{
			Source: source,
			Target: target,
			Type:   relType,
		})
	}

	return graph, nil
}

// extractJSON pulls the outermost JSON object out of model output,
// tolerating markdown fences and surrounding prose.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

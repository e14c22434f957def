// Package viz renders a tenant's knowledge graph into static,
// self-contained HTML files, one per tenant per mode, overwritten on
// each regeneration.
package viz

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/types"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/graph"
)

const subgraphLimit = 200

var colorMap = map[string]string{
	"Person":       "#00FFFF",
	"Organization": "#FF00FF",
	"Document":     "#00FF00",
	"Concept":      "#FFFF00",
	"Location":     "#FF4500",
	"User":         "#FFFFFF",
}

const defaultColor = "#AAAAAA"

type Renderer struct {
	graph     types.GraphStore
	staticDir string
	logger    *zap.Logger
}

func NewRenderer(graphStore types.GraphStore, staticDir string, logger *zap.Logger) *Renderer {
	if staticDir == "" {
		staticDir = "static"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		graph:     graphStore,
		staticDir: staticDir,
		logger:    logger,
	}
}

type vizNode struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
	Color string `json:"color"`
}

type vizLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

type vizData struct {
	Nodes []vizNode `json:"nodes"`
	Links []vizLink `json:"links"`
}

// Render fetches the tenant's subgraph and writes the static HTML file
// for mode ("2d" or "3d"), returning the generated filename. A tenant
// with no graph data gets graph.ErrNoGraphData.
func (r *Renderer) Render(ctx context.Context, userID, mode string) (string, error) {
	tmpl, ok := templates[mode]
	if !ok {
		return "", fmt.Errorf("unknown visualization mode %q", mode)
	}

	g, err := r.graph.Subgraph(ctx, userID, subgraphLimit)
	if err != nil {
		return "", err
	}
	if len(g.Nodes) == 0 {
		return "", graph.ErrNoGraphData
	}

	data := vizData{
		Nodes: make([]vizNode, 0, len(g.Nodes)),
		Links: make([]vizLink, 0, len(g.Edges)),
	}
	for _, node := range g.Nodes {
		color, ok := colorMap[node.Label]
		if !ok {
			color = defaultColor
		}
		data.Nodes = append(data.Nodes, vizNode{
			ID:    node.ID,
			Name:  node.Name,
			Group: node.Label,
			Color: color,
		})
	}
	for _, edge := range g.Edges {
		data.Links = append(data.Links, vizLink{
			Source: edge.Source,
			Target: edge.Target,
			Label:  edge.Type,
		})
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode graph data: %w", err)
	}

	if err := os.MkdirAll(r.staticDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create static dir: %w", err)
	}

	filename := fmt.Sprintf("graph_%s_%s.html", mode, safeID(userID))
	path := filepath.Join(r.staticDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create visualization file: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, map[string]interface{}{
		"Data": template.JS(encoded),
	}); err != nil {
		return "", fmt.Errorf("failed to render visualization: %w", err)
	}

	r.logger.Info("visualization rendered",
		zap.String("user_id", userID),
		zap.String("mode", mode),
		zap.Int("nodes", len(data.Nodes)),
		zap.Int("edges", len(data.Links)))

	return filename, nil
}

var unsafeID = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// safeID keeps tenant identifiers from smuggling path characters into
// the generated filename.
func safeID(userID string) string {
	return unsafeID.ReplaceAllString(userID, "_")
}

package viz_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/graph"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/viz"
)

type fakeGraphStore struct {
	subgraph  models.KnowledgeGraph
	err       error
	lastLimit int
}

func (f *fakeGraphStore) MergeDocumentUpload(ctx context.Context, userID, filename string) error {
	return nil
}

func (f *fakeGraphStore) MergeGraph(ctx context.Context, userID string, g models.KnowledgeGraph) error {
	return nil
}

func (f *fakeGraphStore) Run(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	return nil, nil
}

func (f *fakeGraphStore) Subgraph(ctx context.Context, userID string, limit int) (models.KnowledgeGraph, error) {
	f.lastLimit = limit
	return f.subgraph, f.err
}

func (f *fakeGraphStore) DeleteUser(ctx context.Context, userID string) error { return nil }
func (f *fakeGraphStore) Close(ctx context.Context) error                     { return nil }

func sampleGraph() models.KnowledgeGraph {
	return models.KnowledgeGraph{
		Nodes: []models.GraphNode{
			{ID: "1", Name: "Alice", Label: "Person"},
			{ID: "2", Name: "Acme", Label: "Organization"},
			{ID: "3", Name: "Widget", Label: "Gadget"},
		},
		Edges: []models.GraphEdge{
			{Source: "1", Target: "2", Type: "WORKS_AT"},
		},
	}
}

func TestRender(t *testing.T) {
	for _, mode := range []string{"2d", "3d"} {
		t.Run(mode, func(t *testing.T) {
			dir := t.TempDir()
			store := &fakeGraphStore{subgraph: sampleGraph()}
			r := viz.NewRenderer(store, dir, nil)

			filename, err := r.Render(context.Background(), "u1", mode)
			require.NoError(t, err)
			assert.Equal(t, "graph_"+mode+"_u1.html", filename)
			assert.Equal(t, 200, store.lastLimit)

			raw, err := os.ReadFile(filepath.Join(dir, filename))
			require.NoError(t, err)
			html := string(raw)

			assert.Contains(t, html, "Alice")
			assert.Contains(t, html, "WORKS_AT")
			// Person color from the palette, unknown label falls back
			assert.Contains(t, html, "#00FFFF")
			assert.Contains(t, html, "#AAAAAA")
		})
	}
}

func TestRenderNoData(t *testing.T) {
	r := viz.NewRenderer(&fakeGraphStore{}, t.TempDir(), nil)

	_, err := r.Render(context.Background(), "u1", "2d")
	assert.ErrorIs(t, err, graph.ErrNoGraphData)
}

func TestRenderUnknownMode(t *testing.T) {
	r := viz.NewRenderer(&fakeGraphStore{subgraph: sampleGraph()}, t.TempDir(), nil)

	_, err := r.Render(context.Background(), "u1", "4d")
	assert.Error(t, err)
}

func TestRenderSanitizesUserID(t *testing.T) {
	dir := t.TempDir()
	r := viz.NewRenderer(&fakeGraphStore{subgraph: sampleGraph()}, dir, nil)

	filename, err := r.Render(context.Background(), "../evil/user", "2d")
	require.NoError(t, err)
	assert.Equal(t, "graph_2d____evil_user.html", filename)

	_, err = os.Stat(filepath.Join(dir, filename))
	assert.NoError(t, err)
}

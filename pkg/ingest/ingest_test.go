package ingest_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/ingest"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/processor"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/status"
)

type fakeVectorStore struct {
	mu      sync.Mutex
	stored  []models.Chunk
	err     error
	deleted []string
}

func (f *fakeVectorStore) Store(ctx context.Context, chunks []models.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, chunks...)
	return nil
}

func (f *fakeVectorStore) Search(ctx context.Context, userID string, embedding []float32, limit int) ([]models.Chunk, error) {
	return nil, nil
}

func (f *fakeVectorStore) DeleteUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeVectorStore) Close() {}

type fakeGraphStore struct {
	mu       sync.Mutex
	uploads  []string
	merged   []models.KnowledgeGraph
	mergeErr error
	deleted  []string
}

func (f *fakeGraphStore) MergeDocumentUpload(ctx context.Context, userID, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, userID+"/"+filename)
	return nil
}

func (f *fakeGraphStore) MergeGraph(ctx context.Context, userID string, g models.KnowledgeGraph) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.merged = append(f.merged, g)
	return nil
}

func (f *fakeGraphStore) Run(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	return nil, nil
}

func (f *fakeGraphStore) Subgraph(ctx context.Context, userID string, limit int) (models.KnowledgeGraph, error) {
	return models.KnowledgeGraph{}, nil
}

func (f *fakeGraphStore) DeleteUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeGraphStore) Close(ctx context.Context) error { return nil }

func (f *fakeGraphStore) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

type fakeExtractor struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeExtractor) Extract(ctx context.Context, userID, text string) (models.KnowledgeGraph, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return models.KnowledgeGraph{}, f.err
	}
	return models.KnowledgeGraph{
		Nodes: []models.GraphNode{{Name: "Entity", Label: "Concept",
			Props: map[string]interface{}{"user_id": userID}}},
		Edges: []models.GraphEdge{{Source: "Entity", Target: "Entity", Type: "RELATES_TO"}},
	}, nil
}

func newPipeline(t *testing.T, vectors *fakeVectorStore, graphStore *fakeGraphStore,
	extractor *fakeExtractor, statusStore *status.Store) *ingest.Pipeline {
	t.Helper()
	proc := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 100, ChunkOverlap: 20})
	return ingest.NewPipeline(ingest.PipelineConfig{
		UploadDir:          t.TempDir(),
		ExtractConcurrency: 2,
		ExtractRateLimit:   1000,
	}, &proc, vectors, graphStore, extractor, statusStore, nil)
}

func waitTask(t *testing.T, task *ingest.Task) {
	t.Helper()
	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("extraction task did not finish")
	}
}

func TestIngestFile(t *testing.T) {
	vectors := &fakeVectorStore{}
	graphStore := &fakeGraphStore{}
	extractor := &fakeExtractor{}
	statusStore := status.NewStore()

	p := newPipeline(t, vectors, graphStore, extractor, statusStore)

	content := strings.Repeat("Knowledge graphs connect entities. ", 20)
	task, err := p.IngestFile(context.Background(), "u1", "notes.txt", strings.NewReader(content))
	require.NoError(t, err)
	require.NotNil(t, task)

	// chunks reach the vector store before IngestFile returns
	assert.NotEmpty(t, vectors.stored)
	for _, chunk := range vectors.stored {
		assert.Equal(t, "u1", chunk.UserID)
		assert.Equal(t, "notes.txt", chunk.Source)
	}

	waitTask(t, task)
	require.NoError(t, task.Err())

	assert.Equal(t, []string{"u1/notes.txt"}, graphStore.uploads)
	assert.Equal(t, len(vectors.stored), extractor.calls)
	require.Len(t, graphStore.merged, 1)
	assert.NotEmpty(t, graphStore.merged[0].Nodes)
	assert.Equal(t, status.GraphReady, statusStore.Get("u1"))
}

func TestIngestFileRejectsUnsafeNames(t *testing.T) {
	p := newPipeline(t, &fakeVectorStore{}, &fakeGraphStore{}, &fakeExtractor{}, status.NewStore())

	for _, name := range []string{"", "  ", "..", "a..b.txt", "."} {
		_, err := p.IngestFile(context.Background(), "u1", name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ingest.ErrUnsafeFilename, "name %q", name)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "report.pdf", want: "report.pdf"},
		{in: "dir/report.pdf", want: "report.pdf"},
		{in: `C:\Users\me\report.pdf`, want: "report.pdf"},
		{in: "/etc/passwd", want: "passwd"},
	}
	for _, tt := range tests {
		got, err := ingest.SanitizeFilename(tt.in)
		require.NoError(t, err, "name %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestIngestFileVectorStoreFailure(t *testing.T) {
	vectors := &fakeVectorStore{err: fmt.Errorf("pg down")}
	graphStore := &fakeGraphStore{}
	statusStore := status.NewStore()

	p := newPipeline(t, vectors, graphStore, &fakeExtractor{}, statusStore)

	_, err := p.IngestFile(context.Background(), "u1", "notes.txt", strings.NewReader("some text"))
	require.Error(t, err)
	assert.Equal(t, "Error: pg down", statusStore.Get("u1"))
	assert.Zero(t, graphStore.uploadCount())
}

func TestExtractionFailureKeepsUploadEdge(t *testing.T) {
	vectors := &fakeVectorStore{}
	graphStore := &fakeGraphStore{}
	extractor := &fakeExtractor{err: fmt.Errorf("model refused")}
	statusStore := status.NewStore()

	p := newPipeline(t, vectors, graphStore, extractor, statusStore)

	task, err := p.IngestFile(context.Background(), "u1", "notes.txt", strings.NewReader("some text"))
	require.NoError(t, err)

	waitTask(t, task)
	require.Error(t, task.Err())

	// document node merged before extraction, so it survives the failure
	assert.Equal(t, []string{"u1/notes.txt"}, graphStore.uploads)
	assert.Empty(t, graphStore.merged)
	assert.True(t, strings.HasPrefix(statusStore.Get("u1"), "Error: "), "got %q", statusStore.Get("u1"))
}

func TestReset(t *testing.T) {
	vectors := &fakeVectorStore{}
	graphStore := &fakeGraphStore{}
	statusStore := status.NewStore()
	statusStore.Set("u1", status.GraphReady)

	p := newPipeline(t, vectors, graphStore, &fakeExtractor{}, statusStore)

	require.NoError(t, p.Reset(context.Background(), "u1"))
	assert.Equal(t, []string{"u1"}, graphStore.deleted)
	assert.Equal(t, []string{"u1"}, vectors.deleted)
	assert.Equal(t, status.Idle, statusStore.Get("u1"))
}

func TestRunnerTracksTasks(t *testing.T) {
	r := ingest.NewRunner(nil)

	release := make(chan struct{})
	task := r.Go("test-task", func(ctx context.Context) error {
		<-release
		return nil
	})

	assert.Equal(t, 1, r.Running())
	assert.NotEmpty(t, task.ID)

	close(release)
	waitTask(t, task)
	r.Wait()

	assert.Zero(t, r.Running())
	assert.NoError(t, task.Err())
}

func TestRunnerRecoversPanic(t *testing.T) {
	r := ingest.NewRunner(nil)

	task := r.Go("panicky", func(ctx context.Context) error {
		panic("boom")
	})

	waitTask(t, task)
	require.Error(t, task.Err())
	assert.Contains(t, task.Err().Error(), "boom")
}

func TestRunnerCancel(t *testing.T) {
	r := ingest.NewRunner(nil)

	task := r.Go("cancellable", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	task.Cancel()
	waitTask(t, task)
	assert.ErrorIs(t, task.Err(), context.Canceled)
}

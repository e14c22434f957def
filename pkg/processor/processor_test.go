package processor_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/processor"
)

func TestProcessorChunk(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    50,
		ChunkOverlap: 10,
	})

	content := strings.Repeat("This is a test sentence about graphs. ", 10)
	chunks, err := p.Chunk("u1", "notes.txt", content)

	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.Equal(t, "u1", chunk.UserID)
		assert.Equal(t, "notes.txt", chunk.Source)
		assert.NotEmpty(t, chunk.ID)
		assert.NotEmpty(t, strings.TrimSpace(chunk.Content))
	}
}

func TestProcessorChunkStripsNulBytes(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	chunks, err := p.Chunk("u1", "notes.txt", "before\x00after")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "beforeafter", chunks[0].Content)
}

func TestProcessorChunkDropsEmptyParts(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	chunks, err := p.Chunk("u1", "notes.txt", "   \n\n  ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestLoadPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text content"), 0644))

	p := processor.NewWithConfig(processor.ProcessorConfig{})
	content, err := p.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "plain text content", content)
}

func TestLoadHTMLStripsMarkup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	html := `<html><head><style>body { color: red; }</style></head>
<body><h1>Title</h1><p>Alice   works with Bob.</p>
<script>alert("nope")</script></body></html>`
	require.NoError(t, os.WriteFile(path, []byte(html), 0644))

	p := processor.NewWithConfig(processor.ProcessorConfig{})
	content, err := p.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Contains(t, content, "Title")
	assert.Contains(t, content, "Alice works with Bob.")
	assert.NotContains(t, content, "alert")
	assert.NotContains(t, content, "color: red")
}

func TestLoadMissingFile(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})
	_, err := p.Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

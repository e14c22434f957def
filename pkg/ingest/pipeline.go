// Package ingest turns uploaded files into vector-store chunks
// synchronously, then mines them for a knowledge graph in a tracked
// background task.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/types"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/processor"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/status"
)

// ErrUnsafeFilename rejects uploads whose name would escape the upload
// area.
var ErrUnsafeFilename = errors.New("unsafe filename")

type PipelineConfig struct {
	UploadDir          string
	ExtractConcurrency int     // concurrent extraction calls per task
	ExtractRateLimit   float64 // extraction LLM calls per second
}

type Pipeline struct {
	config    PipelineConfig
	processor *processor.Processor
	vectors   types.VectorStore
	graph     types.GraphStore
	extractor types.Extractor
	status    types.StatusStore
	runner    *Runner
	limiter   *rate.Limiter
	logger    *zap.Logger
}

func NewPipeline(config PipelineConfig, proc *processor.Processor,
	vectors types.VectorStore, graphStore types.GraphStore,
	extractor types.Extractor, statusStore types.StatusStore,
	logger *zap.Logger) *Pipeline {
	if config.UploadDir == "" {
		config.UploadDir = "uploads"
	}
	if config.ExtractConcurrency <= 0 {
		config.ExtractConcurrency = 4
	}
	if config.ExtractRateLimit <= 0 {
		config.ExtractRateLimit = 2.0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		config:    config,
		processor: proc,
		vectors:   vectors,
		graph:     graphStore,
		extractor: extractor,
		status:    statusStore,
		runner:    NewRunner(logger),
		limiter:   rate.NewLimiter(rate.Limit(config.ExtractRateLimit), 1),
		logger:    logger,
	}
}

// SanitizeFilename reduces an uploaded filename to a safe basename.
func SanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrUnsafeFilename
	}
	// Strip any client-supplied directory part, whichever separator.
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	name = filepath.Base(name)
	if name == "" || name == "." || name == ".." || strings.Contains(name, "..") {
		return "", ErrUnsafeFilename
	}
	return name, nil
}

// IngestFile persists the upload, chunks it, and stores the chunks in
// the vector index before returning. Graph extraction continues in the
// returned background task; callers that need it finished wait on the
// handle.
func (p *Pipeline) IngestFile(ctx context.Context, userID, filename string, r io.Reader) (*Task, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return nil, err
	}

	p.status.Set(userID, status.Reading)

	dir := filepath.Join(p.config.UploadDir, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, p.fail(userID, fmt.Errorf("failed to create upload dir: %w", err))
	}

	path := filepath.Join(dir, name)
	if err := p.saveUpload(path, r); err != nil {
		return nil, p.fail(userID, err)
	}

	content, err := p.processor.Load(ctx, path)
	if err != nil {
		return nil, p.fail(userID, err)
	}

	p.status.Set(userID, status.Chunking)
	chunks, err := p.processor.Chunk(userID, name, content)
	if err != nil {
		return nil, p.fail(userID, err)
	}

	p.status.Set(userID, status.Embedding)
	if err := p.vectors.Store(ctx, chunks); err != nil {
		return nil, p.fail(userID, err)
	}

	task := p.runner.Go("graph-extract", func(taskCtx context.Context) error {
		return p.extract(taskCtx, userID, name, chunks)
	})

	p.logger.Info("upload ingested, extraction started",
		zap.String("user_id", userID),
		zap.String("source", name),
		zap.Int("chunks", len(chunks)),
		zap.String("task_id", task.ID))

	return task, nil
}

func (p *Pipeline) saveUpload(path string, r io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	return nil
}

// extract runs the background half of the pipeline. The deterministic
// upload edge is merged before extraction so every document has a
// connected entry point even when the model yields nothing.
func (p *Pipeline) extract(ctx context.Context, userID, name string, chunks []models.Chunk) error {
	p.status.Set(userID, status.Extracting)

	if err := p.graph.MergeDocumentUpload(ctx, userID, name); err != nil {
		return p.fail(userID, err)
	}

	var mu sync.Mutex
	var combined models.KnowledgeGraph

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.ExtractConcurrency)

	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			if err := p.limiter.Wait(gctx); err != nil {
				return err
			}
			kg, err := p.extractor.Extract(gctx, userID, chunk.Content)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", chunk.Index, err)
			}
			mu.Lock()
			combined.Merge(kg)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return p.fail(userID, err)
	}

	p.status.Set(userID, status.Ingesting)
	if err := p.graph.MergeGraph(ctx, userID, combined); err != nil {
		return p.fail(userID, err)
	}

	p.status.Set(userID, status.GraphReady)
	return nil
}

// Reset purges everything the tenant owns. In-flight extraction tasks
// are not cancelled; one finishing after the purge re-populates the
// graph.
func (p *Pipeline) Reset(ctx context.Context, userID string) error {
	if err := p.graph.DeleteUser(ctx, userID); err != nil {
		return err
	}
	if err := p.vectors.DeleteUser(ctx, userID); err != nil {
		return err
	}
	p.status.Reset(userID)
	return nil
}

func (p *Pipeline) fail(userID string, err error) error {
	p.status.Set(userID, status.FromError(err))
	return err
}

// Wait blocks until all background extraction tasks have finished.
func (p *Pipeline) Wait() {
	p.runner.Wait()
}

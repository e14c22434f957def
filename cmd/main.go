package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/agent"
	cfgPkg "github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/config"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/graph"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/ingest"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/llm"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/processor"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/status"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/store"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/viz"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/server"
)

func main() {
	_ = godotenv.Load()

	var configPath, addr, filePath, userID string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	flag.StringVar(&filePath, "file", "", "Ingest a local file instead of serving")
	flag.StringVar(&userID, "user", "", "Tenant identity for -file ingestion")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		color.Red("failed to initialize logger: %v", err)
		os.Exit(1)
	}
	defer logger.Sync()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if errs := config.Validate(); len(errs) > 0 {
		for _, verr := range errs {
			logger.Error("invalid config", zap.String("field", verr.Field), zap.String("message", verr.Message))
		}
		logger.Fatal("configuration is invalid")
	}
	if addr != "" {
		config.Server.Addr = addr
	}

	ctx := context.Background()

	gateway, err := llm.NewWithConfig(llm.GatewayConfig{
		Model:       config.LLM.Model,
		Temperature: config.LLM.Temperature,
		MaxTokens:   config.LLM.MaxTokens,
		BaseURL:     config.LLM.BaseURL,
	})
	if err != nil {
		logger.Fatal("failed to initialize gateway", zap.Error(err))
	}

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:   config.LLM.EmbedModel,
		BaseURL: config.LLM.BaseURL,
	})
	if err != nil {
		logger.Fatal("failed to initialize embedder", zap.Error(err))
	}

	vectors, err := store.NewWithConfig(ctx, store.VectorStoreConfig{
		ConnString: config.Database.URL,
		TableName:  config.Database.TableName,
		VectorDim:  config.Database.VectorDim,
		BatchSize:  config.Database.BatchSize,
	}, embedder)
	if err != nil {
		logger.Fatal("failed to initialize vector store", zap.Error(err))
	}
	defer vectors.Close()

	graphStore, err := graph.NewWithConfig(ctx, graph.Config{
		URI:      config.Graph.URI,
		Username: config.Graph.Username,
		Password: config.Graph.Password,
		Database: config.Graph.Database,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize graph store", zap.Error(err))
	}
	defer graphStore.Close(ctx)

	proc := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    config.Processor.ChunkSize,
		ChunkOverlap: config.Processor.ChunkOverlap,
	})

	statusStore := status.NewStore()
	extractor := llm.NewGraphExtractor(gateway)

	pipeline := ingest.NewPipeline(ingest.PipelineConfig{
		UploadDir:          config.Ingest.UploadDir,
		ExtractConcurrency: config.Ingest.ExtractConcurrency,
		ExtractRateLimit:   config.Ingest.ExtractRateLimit,
	}, &proc, vectors, graphStore, extractor, statusStore, logger)

	if filePath != "" {
		if err := runIngest(ctx, pipeline, statusStore, filePath, userID); err != nil {
			color.Red("Ingestion failed: %v", err)
			os.Exit(1)
		}
		return
	}

	queryAgent := agent.New(agent.Config{
		TopK:                  config.Retrieval.TopK,
		AllowDangerousQueries: config.Graph.AllowDangerousQueries,
	}, gateway, embedder, vectors, graphStore, logger)

	renderer := viz.NewRenderer(graphStore, config.Ingest.StaticDir, logger)

	srv := server.New(server.Config{
		Addr:      config.Server.Addr,
		StaticDir: config.Ingest.StaticDir,
	}, queryAgent, pipeline, statusStore, renderer, logger)

	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// runIngest pushes a local file through the full pipeline and waits for
// graph extraction, showing progress from the status store.
func runIngest(ctx context.Context, pipeline *ingest.Pipeline, statusStore *status.Store, filePath, userID string) error {
	if userID == "" {
		color.Red("a -user tenant identity is required for ingestion")
		os.Exit(1)
	}

	color.Cyan("\nIngesting %s for tenant %s", filePath, userID)

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	task, err := pipeline.IngestFile(ctx, userID, filepath.Base(filePath), f)
	if err != nil {
		return err
	}

	spinner := getSpinner(" " + statusStore.Get(userID))

	for {
		select {
		case <-task.Done():
			spinner.Finish()
			if err := task.Err(); err != nil {
				return err
			}
			color.Green("✓ %s", statusStore.Get(userID))
			return nil
		case <-time.After(200 * time.Millisecond):
			spinner.Describe(color.CyanString(" " + statusStore.Get(userID)))
		}
	}
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

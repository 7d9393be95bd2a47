package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/coursechat-ai/coursechat/agent"
	"github.com/coursechat-ai/coursechat/appconfig"
	"github.com/coursechat-ai/coursechat/docproc"
	"github.com/coursechat-ai/coursechat/llm"
	"github.com/coursechat-ai/coursechat/memory"
	"github.com/coursechat-ai/coursechat/server"
	"github.com/coursechat-ai/coursechat/vectorstore"
)

func main() {
	dotenv.LoadEnv()

	cfg := appconfig.Defaults()
	if err := config.LoadConfig("config.ini", cfg); err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	claude := llm.NewAnthropicClient(cfg.AnthropicModel)

	ollamaClient, err := api.ClientFromEnvironment()
	if err != nil {
		logger.Fatal("Failed to create Ollama client", zap.Error(err))
	}
	embedder := llm.NewOllamaEmbedder(ollamaClient, cfg.EmbeddingModel)

	store := vectorstore.NewInMemoryStore(embedder, cfg.MaxResults, cfg.TitleMatchThreshold)
	sessions := memory.NewSessionStore(cfg.MaxHistory)
	processor := docproc.NewProcessor(cfg.ChunkSize, cfg.ChunkOverlap)

	rag := agent.NewRAGSystem(cfg, claude, store, sessions, processor)

	ctx := getCancellableContext()

	courses, chunks, err := rag.AddCourseFolder(ctx, cfg.DocsFolder, false)
	if err != nil {
		logger.Error("Document ingestion failed", zap.Error(err))
	} else {
		logger.Info("Ingestion complete", zap.Int("courses", courses), zap.Int("chunks", chunks))
	}

	srv := server.New(rag)
	go func() {
		if err := srv.Start(cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	logger.Info("Serving", zap.String("addr", cfg.HTTPPort))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}

func getCancellableContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		cancel()
	}()

	return ctx
}

package main

import (
	"context"
	"log"

	openai "github.com/sashabaranov/go-openai"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/aihub/pdfchat-go/internal/config"
	"github.com/aihub/pdfchat-go/internal/knowledge"
	"github.com/aihub/pdfchat-go/internal/logger"
	"github.com/aihub/pdfchat-go/internal/store"
)

func main() {
	// .env不存在不算错误
	godotenv.Load()

	if err := config.LoadConfig(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.AppConfig

	if err := logger.InitLogger(cfg.Debug); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	st, err := store.NewFromConfig(cfg.Store)
	if err != nil {
		logger.Fatal("failed to init store", zap.Error(err))
	}

	ctx := context.Background()
	if err := st.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure store schema", zap.Error(err))
	}
	logger.Info("store ready", zap.String("provider", cfg.Store.Provider), zap.String("collection", cfg.Store.Collection))

	embedder := knowledge.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	client := openai.NewClient(cfg.OpenAI.APIKey)
	describer := knowledge.NewOpenAIDescriber(
		client,
		cfg.OpenAI.ChatModel,
		cfg.OpenAI.MaxImageDescriptionTokens,
		float32(cfg.OpenAI.ImageDescriptionTemperature),
	)
	chunker := knowledge.NewChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)

	ingestor := knowledge.NewIngestor(st, embedder, describer, chunker, knowledge.IngestorOptions{
		MinChunkChars: cfg.Ingest.MinChunkChars,
		ContextWindow: cfg.Ingest.ContextWindow,
	})

	if err := ingestor.ProcessDirectory(ctx, cfg.Ingest.PDFDir); err != nil {
		logger.Fatal("ingestion failed", zap.Error(err))
	}
	logger.Info("ingestion finished", zap.String("dir", cfg.Ingest.PDFDir))
}

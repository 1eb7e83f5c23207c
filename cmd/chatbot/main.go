package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/aihub/pdfchat-go/internal/config"
	"github.com/aihub/pdfchat-go/internal/knowledge"
	"github.com/aihub/pdfchat-go/internal/logger"
	"github.com/aihub/pdfchat-go/internal/store"
)

// 终端配色
const (
	green = "\033[92m"
	reset = "\033[0m"
)

func main() {
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

	embedder := knowledge.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	engine := knowledge.NewHybridSearchEngine(st, embedder, knowledge.NewPOSKeywordExtractor())

	client := openai.NewClient(cfg.OpenAI.APIKey)
	answerer := knowledge.NewOpenAIAnswerer(
		client,
		cfg.OpenAI.AnswerModel,
		cfg.OpenAI.AnswerMaxTokens,
		float32(cfg.OpenAI.AnswerTemperature),
	)

	chat := knowledge.NewChatService(engine, answerer, cfg.Search.Alpha, cfg.Search.Limit)

	fmt.Println("\nWelcome to the PDF Data Chatbot!")
	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("Ask a question ('exit' quits): ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") {
			fmt.Println("Goodbye!")
			break
		}

		response, err := chat.Query(ctx, question)
		if err != nil {
			fmt.Printf("Query failed: %v\n", err)
			continue
		}

		fmt.Printf("\nAnswer:\n%s%s%s\n", green, response.Answer, reset)
		if len(response.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, source := range response.Sources {
				fmt.Println(source.Text)
			}
		}
		fmt.Println()
	}
}

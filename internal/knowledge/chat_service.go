package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/aihub/pdfchat-go/internal/logger"
	"go.uber.org/zap"
)

// NoResultsMessage 检索不到任何内容时的提示
const NoResultsMessage = "No relevant documents found."

// RankedResult 去重后的最终检索结果，Text为上下文摘要行
type RankedResult struct {
	Text         string
	DocumentName string
	PageNumber   int
	ContentType  string
	Score        float64
}

// QueryResponse 一次提问的完整响应
type QueryResponse struct {
	Answer  string
	Sources []RankedResult
}

// ChatService 问答服务：检索、去重、生成回答
type ChatService struct {
	engine   *HybridSearchEngine
	answerer Answerer
	alpha    float64
	limit    int
}

// NewChatService 创建问答服务
func NewChatService(engine *HybridSearchEngine, answerer Answerer, alpha float64, limit int) *ChatService {
	if limit <= 0 {
		limit = 3
	}
	return &ChatService{
		engine:   engine,
		answerer: answerer,
		alpha:    alpha,
		limit:    limit,
	}
}

// Query 处理一次提问
// 内容完全相同的记录只保留排名靠前的一条
func (s *ChatService) Query(ctx context.Context, question string) (*QueryResponse, error) {
	results, err := s.engine.Search(ctx, question, s.alpha, s.limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &QueryResponse{Answer: NoResultsMessage}, nil
	}

	seen := make(map[string]struct{}, len(results))
	sources := make([]RankedResult, 0, len(results))
	for _, result := range results {
		if _, ok := seen[result.Content]; ok {
			continue
		}
		seen[result.Content] = struct{}{}

		sources = append(sources, RankedResult{
			Text: fmt.Sprintf("Page %d (Document: %s, Type: %s, Score: %.4f)",
				result.PageNumber, result.DocumentName, result.ContentType, result.Score),
			DocumentName: result.DocumentName,
			PageNumber:   result.PageNumber,
			ContentType:  result.ContentType,
			Score:        result.Score,
		})
	}

	contextLines := make([]string, 0, len(sources))
	for _, source := range sources {
		contextLines = append(contextLines, source.Text)
	}
	contextText := strings.Join(contextLines, "\n")
	logger.Debug("retrieved context", zap.String("context", contextText))

	answer := s.answerer.Answer(ctx, question, contextText)

	return &QueryResponse{
		Answer:  answer,
		Sources: sources,
	}, nil
}

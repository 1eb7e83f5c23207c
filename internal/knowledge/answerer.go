package knowledge

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aihub/pdfchat-go/internal/logger"
	"go.uber.org/zap"
)

// AnswerFallback 生成失败时返回的兜底回答
const AnswerFallback = "I'm sorry, I couldn't generate an answer."

const answerPromptTemplate = `
You are a skilled technical assistant. Use the following document context to answer the question concisely and clearly. Focus on the most relevant information. Avoid redundancy, but provide a full explanation. Include references to figures or images if mentioned:

Context:
%s

Question:
%s
`

// Answerer 基于检索上下文生成回答，失败时返回兜底文案而非错误
type Answerer interface {
	Answer(ctx context.Context, question, context string) string
}

// OpenAIAnswerer 使用ChatCompletion生成回答
// 低temperature偏向确定性输出
type OpenAIAnswerer struct {
	client      ChatCompleter
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIAnswerer 创建回答生成器
func NewOpenAIAnswerer(client ChatCompleter, model string, maxTokens int, temperature float32) *OpenAIAnswerer {
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &OpenAIAnswerer{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (a *OpenAIAnswerer) Answer(ctx context.Context, question, contextText string) string {
	if a.client == nil {
		return AnswerFallback
	}

	prompt := fmt.Sprintf(answerPromptTemplate, contextText, question)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		logger.Warn("answer generation failed", zap.Error(err))
		return AnswerFallback
	}
	if len(resp.Choices) == 0 {
		logger.Warn("answer generation returned no choices")
		return AnswerFallback
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

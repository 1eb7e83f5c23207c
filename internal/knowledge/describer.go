package knowledge

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ChatCompleter 文本生成协作方，*openai.Client直接满足该接口
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const describerSystemPrompt = "You are an expert at describing images in detail. " +
	"Provide rich and concise descriptions of the key visual elements of any image."

// Describer 图片描述接口
type Describer interface {
	Describe(ctx context.Context, imageBytes []byte) (string, error)
	Ready() bool
}

// OpenAIDescriber 使用支持视觉的GPT模型生成图片描述
type OpenAIDescriber struct {
	client      ChatCompleter
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIDescriber 创建图片描述生成器
func NewOpenAIDescriber(client ChatCompleter, model string, maxTokens int, temperature float32) *OpenAIDescriber {
	if model == "" {
		model = "gpt-4-turbo"
	}
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &OpenAIDescriber{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (d *OpenAIDescriber) Describe(ctx context.Context, imageBytes []byte) (string, error) {
	if d.client == nil {
		return "", errors.New("openai client not initialized")
	}
	if len(imageBytes) == 0 {
		return "", errors.New("image is empty")
	}

	encoded := base64.StdEncoding.EncodeToString(imageBytes)

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: describerSystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Describe this image in detail.",
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: fmt.Sprintf("data:image/png;base64,%s", encoded),
						},
					},
				},
			},
		},
		MaxTokens:   d.maxTokens,
		Temperature: d.temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("image description response empty")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (d *OpenAIDescriber) Ready() bool {
	return d.client != nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ayush6624/go-chatgpt"
	"github.com/mingdom/folio/internal/domain"
)

// GptRepository answers ad-hoc questions about the loaded portfolio.
type GptRepository interface {
	AskPortfolioQuestion(ctx context.Context, summary domain.PortfolioSummary, question string) (string, error)
}

type gptRepositoryHandler struct {
	GptClient *chatgpt.Client
}

func NewGptRepository(apiKey string) (GptRepository, error) {
	client, err := chatgpt.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to construct gpt client: %w", err)
	}

	return gptRepositoryHandler{
		GptClient: client,
	}, nil
}

const systemPrompt = `
You are a portfolio analysis assistant. The user has loaded a brokerage
portfolio; its computed summary is provided below as JSON. Exposure
conventions: short exposure is a negative number, net = long + short,
gross = long - short. Beta-adjusted figures are dollar exposures scaled
by each position's beta against the market index. Cash-like value is
money-market holdings excluded from directional exposure.

Answer the user's question using only the data provided. If the summary
does not contain the information needed, say so instead of guessing.

Portfolio summary:
%s
`

func (h gptRepositoryHandler) AskPortfolioQuestion(ctx context.Context, summary domain.PortfolioSummary, question string) (string, error) {
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize summary: %w", err)
	}

	res, err := h.GptClient.Send(ctx, &chatgpt.ChatCompletionRequest{
		Model: chatgpt.GPT35Turbo,
		Messages: []chatgpt.ChatMessage{
			{
				Role:    chatgpt.ChatGPTModelRoleSystem,
				Content: fmt.Sprintf(systemPrompt, string(summaryJSON)),
			},
			{
				Role:    chatgpt.ChatGPTModelRoleUser,
				Content: question,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("chat response contained no choices")
	}

	return res.Choices[0].Message.Content, nil
}

package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/requestcontext"
)

const (
	openAITimeout   = 60 * time.Second
	openAIMaxTokens = 4096
)

// OpenAI drafts documents through the chat completions API.
type OpenAI struct {
	client *resty.Client
	model  string
	logger *slog.Logger
}

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger) *OpenAI {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(openAITimeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		}).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &OpenAI{client: client, model: cfg.Model, logger: logger}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (g *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	body := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req)},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens: openAIMaxTokens,
	}

	var (
		result chatResponse
		failed apiError
	)
	start := time.Now()
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&failed).
		Post("/chat/completions")
	if err != nil {
		g.logger.ErrorContext(ctx, "document generation request failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "document generation failed")
	}
	if resp.IsError() {
		g.logger.ErrorContext(ctx, "document generation rejected",
			"request_id", requestcontext.RequestID(ctx),
			"status", resp.StatusCode(),
			"error_type", failed.Error.Type,
			"error", failed.Error.Message,
		)
		return "", dErrors.New(dErrors.CodeInternal, "document generation failed")
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", dErrors.New(dErrors.CodeInternal, "document generation returned no content")
	}

	g.logger.InfoContext(ctx, "document generated",
		"request_id", requestcontext.RequestID(ctx),
		"model", g.model,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result.Choices[0].Message.Content, nil
}

func systemPrompt(req Request) string {
	jurisdiction := JurisdictionLabel(req.Jurisdiction)
	return fmt.Sprintf(`You are an expert in Australian healthcare compliance and policy writing for General Practice clinics.

Generate a comprehensive %s document for %s that complies with:
- RACGP Standards for General Practices 5th Edition
- National Vaccine Storage Guidelines (Strive for 5)
- Regulations specific to %s

Format the response as markdown with a level one heading for the title and these sections:
Purpose and Scope, Policy Statement, Procedures (numbered steps), Responsibilities, References, Review.`,
		strings.ToLower(categoryLabel(req.Category)), jurisdiction, jurisdiction)
}

package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	baseMaxOutputTokens  int64 = 512
	limitMaxOutputTokens int64 = 2048

	incompleteReasonMaxOutputTokens = "max_output_tokens"

	systemPrompt = `Describe the social media post in one short plain-text sentence.

Rules:
- ≤25 words (hard limit 40).
- The sentence is used as image alt text and page description.
- Keep only the core statement and critical context (names, numbers, places).
- Neutral tone, no quotes around the output.
- Remove emojis, hashtags, mentions and links.
- Output exactly one line in the same language as the input.`
)

type OpenAIConfig struct {
	APIKey string
	// Model defaults to GPT-5 mini.
	Model openai.ChatModel
}

// OpenAISummarizer describes posts through OpenAI's Responses API.
type OpenAISummarizer struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAISummarizer(cfg OpenAIConfig) (*OpenAISummarizer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT5Mini2025_08_07
	}

	return &OpenAISummarizer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Summarize produces a single-sentence description of a post. Responses cut
// off by the token limit are retried with a doubled limit up to
// limitMaxOutputTokens.
func (s *OpenAISummarizer) Summarize(ctx context.Context, input Input) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", errors.New("input is empty")
	}

	prompt := userPrompt(text, input.SourceURL)

	for maxOutputTokens := baseMaxOutputTokens; ; maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens) {
		resp, err := s.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           s.model,
			ServiceTier:     responses.ResponseNewParamsServiceTierFlex,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Reasoning: responses.ReasoningParam{
				Effort: openai.ReasoningEffortLow,
			},
			Instructions: openai.String(systemPrompt),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(prompt),
			},
		})
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == incompleteReasonMaxOutputTokens &&
				maxOutputTokens < limitMaxOutputTokens {
				continue
			}

			return "", fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxOutputTokens,
			)
		}

		summary := strings.TrimSpace(resp.OutputText())
		if summary == "" {
			return "", fmt.Errorf("output text is missing (status = %s)", resp.Status)
		}

		return summary, nil
	}
}

func userPrompt(text string, sourceURL string) string {
	var b strings.Builder

	if sourceURL = strings.TrimSpace(sourceURL); sourceURL != "" {
		b.WriteString("Post URL:\n")
		b.WriteString(sourceURL)
		b.WriteString("\n")
	}

	b.WriteString("Post text:\n")
	b.WriteString(text)

	return b.String()
}

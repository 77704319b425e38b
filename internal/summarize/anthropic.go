// anthropic.go — Claude-backed Summarizer.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/logsieve/logsieve/internal/types"
)

// DefaultModel is used when the caller does not pin one.
const DefaultModel = "claude-sonnet-4-20250514"

const systemPrompt = "You are an SRE assistant. You receive clustered " +
	"application log anomalies and write short, factual summaries for an " +
	"on-call engineer. Lead with the most likely root cause. Two to three " +
	"sentences, no preamble."

// AnthropicSummarizer summarizes clusters with the Anthropic Messages API.
type AnthropicSummarizer struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicSummarizer builds a summarizer for the given API key. An
// empty model selects DefaultModel.
func NewAnthropicSummarizer(apiKey, model string) *AnthropicSummarizer {
	if model == "" {
		model = DefaultModel
	}
	return &AnthropicSummarizer{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: 1024,
	}
}

// Summarize implements Summarizer.
func (s *AnthropicSummarizer) Summarize(ctx context.Context, clusters []types.Cluster, totalLogs int) (string, error) {
	if len(clusters) == 0 {
		return FallbackSummary(clusters, totalLogs), nil
	}
	prompt := fmt.Sprintf(
		"Analyzed %d log events. The following anomalous error clusters were detected:\n\n%s\nSummarize the situation.",
		totalLogs, clusterDigest(clusters))
	return s.complete(ctx, prompt)
}

// Synthesize implements Summarizer.
func (s *AnthropicSummarizer) Synthesize(ctx context.Context, summaries []string) (string, error) {
	if len(summaries) == 0 {
		return "", nil
	}
	prompt := "The following summaries each cover one analysis window. " +
		"Merge them into a single summary, deduplicating repeated findings:\n\n" +
		FallbackSynthesis(summaries)
	return s.complete(ctx, prompt)
}

func (s *AnthropicSummarizer) complete(ctx context.Context, prompt string) (string, error) {
	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic summarize: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("anthropic summarize: empty completion")
	}
	return text, nil
}

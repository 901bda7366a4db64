// Package insights produces an optional analyst-style narrative for the
// executive summary page using OpenAI's API.
package insights

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/vandash/vandash/internal/models"
)

// Generator wraps the OpenAI client. Construction fails without an API
// key and the dashboard simply runs without narratives.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator reads OPENAI_API_KEY for authentication.
func NewGenerator() (*Generator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Generator{
		client: client,
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

// Digest is the compact snapshot view handed to the model.
type Digest struct {
	Year         int
	BaselineYear int
	National     models.NationalRecord
	Baseline     *models.NationalRecord
	TopGainers   []models.RankingEntry
	TopLosers    []models.RankingEntry
}

// Summarize asks the model for a short analyst note on the snapshot.
func (g *Generator) Summarize(ctx context.Context, d Digest) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a forestry data analyst. Write a factual three-sentence summary of the figures you are given. No speculation beyond the numbers."),
			openai.UserMessage(BuildPrompt(d)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildPrompt flattens the digest into the user message.
func BuildPrompt(d Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "India State of Forest Report snapshot, %d edition.\n", d.Year)
	fmt.Fprintf(&b, "Recorded forest area: %.0f sq km across %d reporting states/UTs.\n",
		d.National.ForestArea, d.National.ReportingStates)
	if d.National.TreeCover > 0 {
		fmt.Fprintf(&b, "Tree cover outside forests: %.0f sq km.\n", d.National.TreeCover)
	}
	if d.Baseline != nil && d.Baseline.ForestArea > 0 {
		change := (d.National.ForestArea - d.Baseline.ForestArea) / d.Baseline.ForestArea * 100
		fmt.Fprintf(&b, "Change vs %d baseline: %+.2f%%.\n", d.BaselineYear, change)
	}
	if len(d.TopGainers) > 0 {
		b.WriteString("Largest gainers since baseline:")
		for _, e := range d.TopGainers {
			fmt.Fprintf(&b, " %s (%+.0f sq km)", e.State, e.Delta)
		}
		b.WriteString(".\n")
	}
	if len(d.TopLosers) > 0 {
		b.WriteString("Largest losses since baseline:")
		for _, e := range d.TopLosers {
			fmt.Fprintf(&b, " %s (%+.0f sq km)", e.State, e.Delta)
		}
		b.WriteString(".\n")
	}
	return b.String()
}

// Package review runs the second-model pass over the exported dataset: a
// larger model receives the whole table, removes out-of-scope rows, fixes
// fields, and reports every change it made.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"strikewatch/internal/model"
	"strikewatch/internal/store"
)

const reviewPrompt = `You are a senior data analyst reviewing and CORRECTING a dataset of Ukrainian strikes on Russian territory (including Crimea) extracted from Telegram channels.

You will receive the dataset as a pipe-delimited table. Your job is to:

1. **FIX** any issues and return a corrected version of the full dataset.
2. Provide a brief report of what you changed.

Specific checks and fixes to apply:

**REMOVE rows that are:**
- NOT Ukrainian strikes on Russian territory (e.g. Russian strikes on Ukraine, frontline combat, generic "X drones shot down" with no target)
- Duplicates of another row (same incident reported twice - keep the more detailed one)

**FIX fields:**
- Dates: must be YYYY-MM-DD format
- Target Type: must accurately match the Damage Summary description
- Maritime: true for tanker/vessel/platform attacks at sea, false for everything else
- Coordinates: if they clearly don't match the stated city/region, correct them or leave empty
- City/Region: standardize to English, fix obvious typos or inconsistencies
- Merge Source Channel lists if you identify duplicates being merged

**SORT** all rows chronologically by date.

Return your response in this exact format (IMPORTANT - use pipe '|' as delimiter, NOT commas):

` + "```csv" + `
[the full corrected pipe-delimited table here, with header row, using | as separator]
` + "```" + `

CHANGES:
- [bullet list of every change you made, referencing original row numbers]

QUALITY SCORE: [1-10]`

const (
	charsPerToken           = 3
	outputInflation         = 1.2
	inputCostPerMillionUSD  = 1.25
	outputCostPerMillionUSD = 10.0
)

// Generator is the plain-text LLM surface the review depends on.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	gen    Generator
	logger zerolog.Logger
}

func NewService(gen Generator, logger zerolog.Logger) *Service {
	return &Service{gen: gen, logger: logger}
}

// CostEstimate for the review call; the whole dataset goes out and roughly
// the whole dataset comes back.
type CostEstimate struct {
	Rows         int
	InputTokens  int
	OutputTokens int
	TotalUSD     float64
}

// Result of one review pass. Corrected is nil when the returned table could
// not be parsed; the caller then keeps the original dataset.
type Result struct {
	Report    string
	Corrected []model.CanonicalIncident
}

// Estimate computes the pre-run cost estimate for reviewing the dataset.
func (s *Service) Estimate(incidents []model.CanonicalIncident) (CostEstimate, error) {
	table, err := store.RenderPipeDelimited(incidents)
	if err != nil {
		return CostEstimate{}, err
	}

	inputTokens := (len(reviewPrompt) + len(table)) / charsPerToken
	outputTokens := int(float64(inputTokens) * outputInflation)
	cost := float64(inputTokens)/1e6*inputCostPerMillionUSD +
		float64(outputTokens)/1e6*outputCostPerMillionUSD

	return CostEstimate{
		Rows:         len(incidents),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalUSD:     cost,
	}, nil
}

// Run sends the dataset for review and parses the corrected table out of
// the response.
func (s *Service) Run(ctx context.Context, incidents []model.CanonicalIncident) (*Result, error) {
	table, err := store.RenderPipeDelimited(incidents)
	if err != nil {
		return nil, fmt.Errorf("render dataset: %w", err)
	}

	prompt := fmt.Sprintf("%s\n\nDataset (%d rows):\n```\n%s\n```", reviewPrompt, len(incidents), table)
	response, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("review call: %w", err)
	}

	result := &Result{Report: response}
	block := extractTableBlock(response)
	if block == "" {
		s.logger.Warn().Msg("review response contains no table block, keeping original dataset")
		return result, nil
	}

	corrected, err := store.ParsePipeDelimited(strings.NewReader(block))
	if err != nil {
		s.logger.Warn().Err(err).Msg("corrected table unparseable, keeping original dataset")
		return result, nil
	}

	s.logger.Info().
		Int("rows_before", len(incidents)).
		Int("rows_after", len(corrected)).
		Msg("review pass complete")
	result.Corrected = corrected
	return result, nil
}

// extractTableBlock pulls the first fenced block out of the response,
// preferring an explicit csv fence.
func extractTableBlock(response string) string {
	for _, marker := range []string{"```csv", "```"} {
		start := strings.Index(response, marker)
		if start < 0 {
			continue
		}
		rest := response[start+len(marker):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		return strings.TrimSpace(rest[:end])
	}
	return ""
}

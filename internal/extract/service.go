// Package extract turns pre-filtered channel messages into structured
// incident records with an LLM. Messages go out in batches through a small
// worker pool; every returned entry is schema-validated before it counts.
package extract

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"strikewatch/internal/model"
)

const (
	DefaultBatchSize     = 25
	DefaultMaxConcurrent = 4

	// Flat-rate cost model for the pre-run estimate: roughly 3 characters
	// per token on mixed Cyrillic/Latin text, a fixed per-batch prompt
	// overhead, and current per-million-token pricing.
	charsPerToken           = 3
	promptOverheadTokens    = 800
	outputTokensPerHit      = 200
	incidentRate            = 0.3
	inputCostPerMillionUSD  = 1.25
	outputCostPerMillionUSD = 10.0
)

type Options struct {
	BatchSize     int
	MaxConcurrent int
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = DefaultMaxConcurrent
	}
	return o
}

type Service struct {
	gen    Generator
	logger zerolog.Logger
	opts   Options
}

func NewService(gen Generator, logger zerolog.Logger, opts Options) *Service {
	return &Service{gen: gen, logger: logger, opts: opts.withDefaults()}
}

// Stats summarize one extraction run.
type Stats struct {
	Messages      int `json:"messages"`
	Batches       int `json:"batches"`
	FailedBatches int `json:"failed_batches"`
	Incidents     int `json:"incidents"`
	Skipped       int `json:"skipped"`
}

// CostEstimate is shown to the operator before an extraction run; LLM calls
// cost real money and a mistake in batch composition multiplies.
type CostEstimate struct {
	Messages     int
	Batches      int
	InputTokens  int
	OutputTokens int
	TotalUSD     float64
}

// Estimate computes the pre-run cost estimate for the given messages.
func (s *Service) Estimate(messages []model.RawMessage) CostEstimate {
	totalChars := 0
	for _, msg := range messages {
		totalChars += len(msg.Text)
	}
	batches := (len(messages) + s.opts.BatchSize - 1) / s.opts.BatchSize

	inputTokens := totalChars/charsPerToken + batches*promptOverheadTokens
	outputTokens := int(float64(len(messages)) * outputTokensPerHit * incidentRate)
	cost := float64(inputTokens)/1e6*inputCostPerMillionUSD +
		float64(outputTokens)/1e6*outputCostPerMillionUSD

	return CostEstimate{
		Messages:     len(messages),
		Batches:      batches,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalUSD:     cost,
	}
}

// Extract runs the full batched extraction. Batches are processed
// concurrently; a batch that fails after retries is logged and skipped
// rather than aborting the run. Output order follows batch order.
func (s *Service) Extract(ctx context.Context, messages []model.RawMessage) ([]model.Incident, Stats, error) {
	stats := Stats{Messages: len(messages)}
	if len(messages) == 0 {
		return nil, stats, nil
	}

	var batches [][]model.RawMessage
	for start := 0; start < len(messages); start += s.opts.BatchSize {
		end := start + s.opts.BatchSize
		if end > len(messages) {
			end = len(messages)
		}
		batches = append(batches, messages[start:end])
	}
	stats.Batches = len(batches)

	perBatch := make([][]model.Incident, len(batches))

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan int)
	)
	workers := s.opts.MaxConcurrent
	if workers > len(batches) {
		workers = len(batches)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				incidents, skipped, err := s.processBatch(ctx, batches[idx], idx, len(batches))
				mu.Lock()
				if err != nil {
					stats.FailedBatches++
				} else {
					perBatch[idx] = incidents
					stats.Incidents += len(incidents)
					stats.Skipped += skipped
				}
				mu.Unlock()
			}
		}()
	}

	for idx := range batches {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, stats, ctx.Err()
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	var all []model.Incident
	for _, incidents := range perBatch {
		all = append(all, incidents...)
	}
	return all, stats, nil
}

func (s *Service) processBatch(ctx context.Context, batch []model.RawMessage, idx, total int) ([]model.Incident, int, error) {
	raw, err := s.gen.GenerateJSON(ctx, buildBatchPrompt(batch))
	if err != nil {
		s.logger.Error().Err(err).
			Int("batch", idx+1).
			Int("batches", total).
			Msg("extraction batch failed")
		return nil, 0, err
	}

	incidents, skipped, err := parseBatchResponse(raw, batch)
	if err != nil {
		s.logger.Error().Err(err).
			Int("batch", idx+1).
			Int("batches", total).
			Msg("extraction response unparseable")
		return nil, 0, err
	}

	s.logger.Info().
		Int("batch", idx+1).
		Int("batches", total).
		Int("incidents", len(incidents)).
		Int("skipped", skipped).
		Msg("extraction batch complete")
	return incidents, skipped, nil
}

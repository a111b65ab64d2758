// Package filter holds the keyword pre-filter that runs before LLM
// extraction. It is deliberately cheap: lowercase substring checks over
// static stem tables, no tokenization. The point is to discard the bulk of
// channel chatter so only plausible strike reports are paid for downstream.
package filter

import (
	"strings"

	"strikewatch/internal/langdetect"
	"strikewatch/internal/model"
)

// Stats summarize one pre-filter pass.
type Stats struct {
	Input   int `json:"input"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

// Relevant reports whether the text plausibly describes a strike on
// Russian-controlled territory. It requires an action term AND at least one
// of (Russian location, infrastructure term, damage term). Messages that
// name Ukrainian targets without any Russian location are about strikes on
// Ukraine and are excluded.
func Relevant(text string) bool {
	lower := strings.ToLower(text)

	if !hasAny(lower, actionKeywords) {
		return false
	}

	hasLocation := hasAny(lower, russianLocationKeywords)
	hasInfra := hasAny(lower, infrastructureKeywords)
	hasDamage := hasAny(lower, damageKeywords)
	if !hasLocation && !hasInfra && !hasDamage {
		return false
	}

	if hasAny(lower, ukrainianTargetKeywords) && !hasLocation {
		return false
	}

	return true
}

// Apply keeps the relevant messages, annotating each kept message with its
// detected language. Input order is preserved.
func Apply(messages []model.RawMessage) ([]model.RawMessage, Stats) {
	stats := Stats{Input: len(messages)}
	kept := make([]model.RawMessage, 0, len(messages))
	for _, msg := range messages {
		if !Relevant(msg.Text) {
			stats.Dropped++
			continue
		}
		if msg.Language == "" {
			msg.Language = langdetect.DetectISO6391(msg.Text)
		}
		kept = append(kept, msg)
		stats.Kept++
	}
	return kept, stats
}

func hasAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

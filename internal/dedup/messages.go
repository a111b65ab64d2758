// Package dedup implements the two-stage record-linkage engine: stage 1
// collapses near-duplicate raw reports of the same post across channels,
// stage 2 clusters structured incident records that describe the same
// physical event and merges each cluster into one canonical record.
//
// Both stages are pure functions of their input batch; nothing is shared
// between invocations, so callers may re-run them freely.
package dedup

import (
	"sort"

	"strikewatch/internal/model"
	"strikewatch/internal/translit"
)

const (
	DefaultSimilarityThreshold = 0.7
	DefaultTokenPrefixLen      = 5
	DefaultMinTokenLen         = 3
)

// MessageClusterOptions tune stage-1 similarity clustering. Zero values
// select the defaults.
type MessageClusterOptions struct {
	SimilarityThreshold float64
	TokenPrefixLen      int
	MinTokenLen         int
}

func (o MessageClusterOptions) withDefaults() MessageClusterOptions {
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.TokenPrefixLen <= 0 {
		o.TokenPrefixLen = DefaultTokenPrefixLen
	}
	if o.MinTokenLen <= 0 {
		o.MinTokenLen = DefaultMinTokenLen
	}
	return o
}

// ClusterMessages removes near-duplicate reports of the same post published
// by different channels on the same calendar day. Each cluster is replaced
// by its longest member, annotated with the union of contributing channels.
// Same-channel pairs never merge: those are assumed to be distinct posts.
// Input order need not be sorted; it is preserved within each day partition.
func ClusterMessages(messages []model.RawMessage, opts MessageClusterOptions) []model.RawMessage {
	if len(messages) == 0 {
		return nil
	}
	opts = opts.withDefaults()

	byDay := make(map[string][]model.RawMessage)
	var dayOrder []string
	for _, msg := range messages {
		day := msg.Day()
		if _, seen := byDay[day]; !seen {
			dayOrder = append(dayOrder, day)
		}
		byDay[day] = append(byDay[day], msg)
	}
	sort.Strings(dayOrder)

	var result []model.RawMessage
	for _, day := range dayOrder {
		result = append(result, clusterDay(byDay[day], opts)...)
	}
	return result
}

func clusterDay(msgs []model.RawMessage, opts MessageClusterOptions) []model.RawMessage {
	used := make([]bool, len(msgs))
	tokens := make([]map[string]struct{}, len(msgs))
	tokensOf := func(i int) map[string]struct{} {
		if tokens[i] == nil {
			tokens[i] = translit.Tokens(msgs[i].Text, opts.TokenPrefixLen, opts.MinTokenLen)
		}
		return tokens[i]
	}

	var result []model.RawMessage
	for i := range msgs {
		if used[i] {
			continue
		}
		used[i] = true
		cluster := []int{i}

		for j := i + 1; j < len(msgs); j++ {
			if used[j] {
				continue
			}
			if msgs[j].Channel == msgs[i].Channel {
				continue
			}
			if translit.Jaccard(tokensOf(i), tokensOf(j)) >= opts.SimilarityThreshold {
				cluster = append(cluster, j)
				used[j] = true
			}
		}

		result = append(result, mergeMessageCluster(msgs, cluster))
	}
	return result
}

func mergeMessageCluster(msgs []model.RawMessage, cluster []int) model.RawMessage {
	best := cluster[0]
	channels := make(map[string]struct{})
	for _, idx := range cluster {
		if len(msgs[idx].Text) > len(msgs[best].Text) {
			best = idx
		}
		for _, ch := range msgs[idx].SourceChannels() {
			channels[ch] = struct{}{}
		}
	}

	merged := msgs[best]
	merged.Channels = sortedKeys(channels)
	return merged
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package dedup

import (
	"sort"
	"strings"

	"strikewatch/internal/model"
)

// WeakClusterNote annotates merged records whose members were linked only by
// shared-region evidence.
const WeakClusterNote = "region-only match; needs manual review"

// Options tune stage-2 incident clustering.
type Options struct {
	Matcher MatcherOptions
}

// Stats summarizes one Deduplicate invocation.
type Stats struct {
	Input        int
	DroppedLow   int
	Clusters     int
	WeakClusters int
}

type clusterState struct {
	weak   bool
	strong bool
}

// Deduplicate clusters incident records that describe the same physical
// event and merges each cluster into one canonical record, sorted by primary
// event date. Records below medium confidence are dropped before clustering;
// records with unparseable dates or no location evidence survive as
// singletons. Pure function of its input; an empty batch yields an empty
// result.
func Deduplicate(incidents []model.Incident, opts Options) ([]model.CanonicalIncident, Stats) {
	stats := Stats{Input: len(incidents)}
	if len(incidents) == 0 {
		return nil, stats
	}

	kept := make([]model.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if inc.ConfidenceLevel() <= model.ConfidenceLow {
			stats.DroppedLow++
			continue
		}
		kept = append(kept, inc)
	}
	if len(kept) == 0 {
		return nil, stats
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date < kept[j].Date
	})

	matcher := NewMatcher(opts.Matcher)
	uf := newUnionFind(len(kept))
	state := make(map[int]*clusterState)

	for i := 0; i < len(kept); i++ {
		di, okI := kept[i].EventDate()
		for j := i + 1; j < len(kept); j++ {
			// Records are date-sorted: once j is past the window for i,
			// no later j can match i either.
			if okI {
				if dj, okJ := kept[j].EventDate(); okJ {
					if int(dj.Sub(di).Hours()/24) > matcher.opts.DateWindowDays {
						break
					}
				}
			}

			kind := matcher.Match(kept[i], kept[j])
			if kind == MatchNone {
				continue
			}

			merged := mergeState(state, uf.find(i), uf.find(j))
			root := uf.union(i, j)
			if kind == MatchWeak {
				merged.weak = true
			} else {
				merged.strong = true
			}
			state[root] = merged
		}
	}

	clusters := make(map[int][]model.Incident)
	var rootOrder []int
	for i, inc := range kept {
		root := uf.find(i)
		if _, seen := clusters[root]; !seen {
			rootOrder = append(rootOrder, root)
		}
		clusters[root] = append(clusters[root], inc)
	}

	result := make([]model.CanonicalIncident, 0, len(rootOrder))
	for _, root := range rootOrder {
		members := clusters[root]
		merged := mergeCluster(members)

		// Only clusters held together exclusively by weak region evidence
		// get flagged; a single strong edge is considered real linkage.
		if st := state[root]; st != nil && st.weak && !st.strong && len(members) > 1 {
			merged.ReviewNote = WeakClusterNote
			stats.WeakClusters++
		}
		result = append(result, merged)
	}
	stats.Clusters = len(result)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result, stats
}

func mergeState(state map[int]*clusterState, rootA, rootB int) *clusterState {
	merged := &clusterState{}
	if st := state[rootA]; st != nil {
		merged.weak = merged.weak || st.weak
		merged.strong = merged.strong || st.strong
		delete(state, rootA)
	}
	if st := state[rootB]; st != nil {
		merged.weak = merged.weak || st.weak
		merged.strong = merged.strong || st.strong
		delete(state, rootB)
	}
	return merged
}

// mergeCluster applies the field-resolution policy as an explicit rule list
// over the member set rather than mutating a chosen base record.
func mergeCluster(members []model.Incident) model.CanonicalIncident {
	// Rule 1: descriptive fields come from the most detailed member, the
	// one with the longest damage summary.
	detailed := members[0]
	for _, inc := range members[1:] {
		if len(inc.DamageSummary) > len(detailed.DamageSummary) {
			detailed = inc
		}
	}

	merged := model.CanonicalIncident{Incident: detailed}
	merged.SourceMessageID = ""
	merged.MessageDate = ""

	// Rule 2: earliest event date is primary, latest is retained.
	eventDates := collectSorted(members, func(in model.Incident) string { return in.Date })
	if len(eventDates) > 0 {
		merged.Date = eventDates[0]
		merged.LastEventDate = eventDates[len(eventDates)-1]
	}

	// Rule 3: first and last message timestamps.
	msgDates := collectSorted(members, func(in model.Incident) string { return in.MessageDate })
	if len(msgDates) > 0 {
		merged.FirstMessageDate = msgDates[0]
		merged.LastMessageDate = msgDates[len(msgDates)-1]
	}

	// Rule 4: deduplicated sorted union of source channels.
	channels := make(map[string]struct{})
	for _, inc := range members {
		for _, ch := range strings.Split(inc.SourceChannel, ",") {
			if ch = strings.TrimSpace(ch); ch != "" {
				channels[ch] = struct{}{}
			}
		}
	}
	merged.SourceChannel = strings.Join(sortedKeys(channels), ", ")

	// Rule 5: highest confidence wins.
	best := members[0]
	for _, inc := range members[1:] {
		if inc.ConfidenceLevel() > best.ConfidenceLevel() {
			best = inc
		}
	}
	merged.Confidence = best.ConfidenceLevel().String()

	// Rule 6: coordinates from the highest-confidence member that has them.
	merged.Latitude, merged.Longitude = nil, nil
	for level := model.ConfidenceHigh; level >= model.ConfidenceLow && merged.Latitude == nil; level-- {
		for _, inc := range members {
			if inc.ConfidenceLevel() == level && inc.HasCoordinates() {
				merged.Latitude = inc.Latitude
				merged.Longitude = inc.Longitude
				break
			}
		}
	}

	// Rule 7: maritime if any member is maritime.
	merged.Maritime = false
	for _, inc := range members {
		if inc.Maritime {
			merged.Maritime = true
			break
		}
	}

	return merged
}

func collectSorted(members []model.Incident, pick func(model.Incident) string) []string {
	var values []string
	for _, inc := range members {
		if v := pick(inc); v != "" {
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values
}

package extract

import (
	"fmt"
	"strings"

	"strikewatch/internal/model"
)

const extractionPrompt = `You are extracting structured data about Ukrainian strikes on Russian-controlled territory.

SCOPE - Include:
- Strikes on Russian Federation territory (any region)
- Strikes on Russian-occupied Crimea
- Strikes on identifiable Russian military/infrastructure targets in other occupied areas
- Attacks on maritime targets (tankers, vessels, oil platforms) linked to Russia - tag these as maritime: true

SCOPE - Exclude:
- Russian strikes on Ukrainian cities - this is NOT what we want
- Generic "X drones shot down" Ministry of Defense summaries with no specific target hit or damage
- Frontline battlefield tactical actions (FPV drone combat, infantry clashes)
- Incidents with no identifiable target or location

CRITICAL RULES:
1. DATE: Extract the actual date the strike HAPPENED, not the date the message was posted. If the text says "on January 28" or "last night" (relative to message date), use that actual date. Only fall back to the message date if no specific date is mentioned or inferable. However, IGNORE dates from long retrospective summaries (e.g. "since the start of the war..." or "over the past year...").
2. MULTIPLE INCIDENTS: If one message describes strikes on 3 different targets, return 3 separate objects.
3. LANGUAGE: All output fields (city, region, facility_name, damage_summary) must be in English.
4. COORDINATES: Only provide if you are reasonably sure of the location. Use null otherwise.

For each incident extract:
- date: the actual date the strike happened (YYYY-MM-DD). Use context clues from the text ("last night", "on January 28", "yesterday"). Use message date only as fallback.
- city: city or settlement name in English
- region: region/oblast name in English
- target_type: one of [military_base, airfield, ammunition_depot, fuel_depot, oil_refinery, power_infrastructure, naval, radar, command_post, transport, industrial, residential, other]
- facility_name: specific facility name in English transliteration, or null
- damage_summary: concise English description of what was hit and what happened
- latitude: float or null
- longitude: float or null
- confidence: high (confirmed strike with details) / medium (likely strike, some details) / low (unconfirmed, vague)
- maritime: true if this is an attack on a maritime target (tanker, vessel, oil platform at sea), false otherwise

Return a JSON array matching the input message order.
- For a message with no relevant incidents: null
- For a message with 1 incident: one object
- For a message with N incidents: N objects in a nested array

Return ONLY valid JSON, no other text.`

// buildBatchPrompt renders one batch of pre-filtered messages into the user
// portion of the prompt. Message order defines the expected response order.
func buildBatchPrompt(batch []model.RawMessage) string {
	blocks := make([]string, 0, len(batch))
	for i, msg := range batch {
		channels := make([]string, 0, len(msg.SourceChannels()))
		for _, ch := range msg.SourceChannels() {
			channels = append(channels, "@"+ch)
		}
		blocks = append(blocks, fmt.Sprintf("[Message %d] Channels: %s | Date: %s\n%s",
			i+1, strings.Join(channels, ", "), msg.Day(), msg.Text))
	}
	return extractionPrompt + "\n\n" + strings.Join(blocks, "\n\n---\n\n")
}

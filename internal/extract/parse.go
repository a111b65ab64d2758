package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"strikewatch/internal/model"
	incidentschema "strikewatch/schema"
)

// parseBatchResponse decodes one model response for a batch. The response is
// a JSON array aligned with the batch: null for an irrelevant message, an
// object for one incident, a nested array for several. Entries that fail
// schema validation are dropped and counted, never persisted.
func parseBatchResponse(raw json.RawMessage, batch []model.RawMessage) ([]model.Incident, int, error) {
	text := stripCodeFence(raw)

	var results []json.RawMessage
	if err := json.Unmarshal(text, &results); err != nil {
		return nil, 0, fmt.Errorf("response is not a JSON array: %w", err)
	}

	var incidents []model.Incident
	skipped := 0
	for i, result := range results {
		if i >= len(batch) {
			break
		}
		if isJSONNull(result) {
			continue
		}

		entries := []json.RawMessage{result}
		if bytes.HasPrefix(bytes.TrimSpace(result), []byte("[")) {
			if err := json.Unmarshal(result, &entries); err != nil {
				skipped++
				continue
			}
		}

		for _, entry := range entries {
			if isJSONNull(entry) {
				continue
			}
			incident, err := decodeEntry(entry, batch[i])
			if err != nil {
				skipped++
				continue
			}
			incidents = append(incidents, *incident)
		}
	}
	return incidents, skipped, nil
}

// decodeEntry attributes the entry to its source message, repairs a missing
// or unparseable event date with the message date, and runs the result
// through schema validation.
func decodeEntry(entry json.RawMessage, msg model.RawMessage) (*model.Incident, error) {
	var fields map[string]any
	if err := json.Unmarshal(entry, &fields); err != nil {
		return nil, err
	}

	channels := append([]string(nil), msg.SourceChannels()...)
	sort.Strings(channels)
	fields["source_channel"] = strings.Join(channels, ", ")
	fields["source_message_id"] = strconv.FormatInt(msg.MessageID, 10)
	fields["message_date"] = msg.Day()

	if date, ok := fields["date"].(string); !ok || date == "" {
		fields["date"] = msg.Day()
	} else if _, ok := model.ParseDay(date); !ok {
		fields["date"] = msg.Day()
	}

	normalized, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return incidentschema.ValidateIncidentPayload(normalized)
}

// stripCodeFence removes a surrounding markdown fence when the model wraps
// its JSON despite being asked not to.
func stripCodeFence(raw json.RawMessage) json.RawMessage {
	text := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(text, []byte("```")) {
		return text
	}
	if idx := bytes.IndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = text[3:]
	}
	text = bytes.TrimSpace(text)
	text = bytes.TrimSuffix(text, []byte("```"))
	return bytes.TrimSpace(text)
}

func isJSONNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

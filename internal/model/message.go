package model

import "time"

// RawMessage is one scraped channel post. Channels starts as the posting
// channel alone and grows when the message absorbs near-duplicates from
// other channels during stage-1 clustering.
type RawMessage struct {
	Channel   string    `json:"channel"`
	MessageID int64     `json:"message_id"`
	Date      time.Time `json:"date"`
	Text      string    `json:"text"`
	Channels  []string  `json:"source_channels,omitempty"`
	Language  string    `json:"language,omitempty"`
}

// SourceChannels returns the contributing channel set, falling back to the
// posting channel when the message was never merged.
func (m RawMessage) SourceChannels() []string {
	if len(m.Channels) > 0 {
		return m.Channels
	}
	if m.Channel == "" {
		return nil
	}
	return []string{m.Channel}
}

// Day returns the calendar day portion of the publication timestamp.
func (m RawMessage) Day() string {
	if m.Date.IsZero() {
		return ""
	}
	return m.Date.UTC().Format("2006-01-02")
}

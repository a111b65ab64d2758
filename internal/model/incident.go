package model

import (
	"strings"
	"time"
)

// Confidence is the extraction confidence level, ordered low < medium < high.
type Confidence int

const (
	ConfidenceLow Confidence = iota + 1
	ConfidenceMedium
	ConfidenceHigh
)

// ParseConfidence is lenient: unrecognized values degrade to low rather
// than failing, since extraction output is inherently noisy.
func ParseConfidence(raw string) Confidence {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return ConfidenceHigh
	case "medium":
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// Target types form a fixed closed set; TargetOther is the wildcard.
const (
	TargetMilitaryBase   = "military_base"
	TargetAirfield       = "airfield"
	TargetAmmunitionDepo = "ammunition_depot"
	TargetFuelDepot      = "fuel_depot"
	TargetOilRefinery    = "oil_refinery"
	TargetPowerInfra     = "power_infrastructure"
	TargetNaval          = "naval"
	TargetRadar          = "radar"
	TargetCommandPost    = "command_post"
	TargetTransport      = "transport"
	TargetIndustrial     = "industrial"
	TargetResidential    = "residential"
	TargetOther          = "other"
)

var knownTargetTypes = map[string]struct{}{
	TargetMilitaryBase:   {},
	TargetAirfield:       {},
	TargetAmmunitionDepo: {},
	TargetFuelDepot:      {},
	TargetOilRefinery:    {},
	TargetPowerInfra:     {},
	TargetNaval:          {},
	TargetRadar:          {},
	TargetCommandPost:    {},
	TargetTransport:      {},
	TargetIndustrial:     {},
	TargetResidential:    {},
	TargetOther:          {},
}

// NormalizeTargetType maps unrecognized category strings to the wildcard
// category instead of rejecting them.
func NormalizeTargetType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := knownTargetTypes[t]; ok {
		return t
	}
	return TargetOther
}

// Incident is one structured strike record produced by the extraction
// collaborator. Optional fields are pointers so that absence stays
// distinguishable from an empty value; weak location matching branches on
// the absence of a city, not on its emptiness.
type Incident struct {
	Date            string   `json:"date"`
	City            *string  `json:"city"`
	Region          *string  `json:"region"`
	FacilityName    *string  `json:"facility_name"`
	TargetType      string   `json:"target_type"`
	DamageSummary   string   `json:"damage_summary"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Confidence      string   `json:"confidence"`
	Maritime        bool     `json:"maritime"`
	SourceChannel   string   `json:"source_channel"`
	SourceMessageID string   `json:"source_message_id,omitempty"`
	MessageDate     string   `json:"message_date,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (in Incident) HasCoordinates() bool {
	return in.Latitude != nil && in.Longitude != nil
}

// EventDate parses the incident's event date. The boolean is false for
// missing or unparseable dates; such records never match anything.
func (in Incident) EventDate() (time.Time, bool) {
	return ParseDay(in.Date)
}

// ConfidenceLevel returns the parsed, ordered confidence.
func (in Incident) ConfidenceLevel() Confidence {
	return ParseConfidence(in.Confidence)
}

// ParseDay parses the calendar-day prefix of an ISO date or timestamp.
func ParseDay(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if len(s) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CanonicalIncident is the single merged representation of a cluster of
// incidents judged to describe the same physical event.
type CanonicalIncident struct {
	Incident

	LastEventDate    string `json:"last_event_date,omitempty"`
	FirstMessageDate string `json:"first_message_date,omitempty"`
	LastMessageDate  string `json:"last_message_date,omitempty"`

	// ReviewNote flags clusters whose members were linked only by weak
	// region-level evidence; downstream consumers should review them.
	ReviewNote string `json:"review_note,omitempty"`
}

// StringPtr returns a pointer to s, or nil when s is empty. Convenience for
// constructing records with optional fields.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 {
	p := new(float64)
	*p = v
	return p
}

// Deref returns the pointed-to string or "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

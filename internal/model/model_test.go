package model

import (
	"testing"
	"time"
)

func TestParseConfidence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Confidence
	}{
		{"high", ConfidenceHigh},
		{" HIGH ", ConfidenceHigh},
		{"medium", ConfidenceMedium},
		{"low", ConfidenceLow},
		{"certain", ConfidenceLow},
		{"", ConfidenceLow},
	}
	for _, tc := range cases {
		if got := ParseConfidence(tc.raw); got != tc.want {
			t.Errorf("ParseConfidence(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestConfidenceOrdering(t *testing.T) {
	t.Parallel()

	if !(ConfidenceLow < ConfidenceMedium && ConfidenceMedium < ConfidenceHigh) {
		t.Fatal("confidence levels are not ordered low < medium < high")
	}
	if ConfidenceHigh.String() != "high" || ConfidenceLow.String() != "low" {
		t.Fatal("confidence String round trip broken")
	}
}

func TestNormalizeTargetType(t *testing.T) {
	t.Parallel()

	if got := NormalizeTargetType(" Oil_Refinery "); got != TargetOilRefinery {
		t.Errorf("got %q, want %q", got, TargetOilRefinery)
	}
	if got := NormalizeTargetType("space station"); got != TargetOther {
		t.Errorf("unknown type: got %q, want %q", got, TargetOther)
	}
	if got := NormalizeTargetType(""); got != TargetOther {
		t.Errorf("empty type: got %q, want %q", got, TargetOther)
	}
}

func TestParseDay(t *testing.T) {
	t.Parallel()

	day, ok := ParseDay("2026-02-05T13:45:00Z")
	if !ok {
		t.Fatal("timestamp prefix should parse")
	}
	if got := day.Format("2006-01-02"); got != "2026-02-05" {
		t.Errorf("got %s, want 2026-02-05", got)
	}

	if _, ok := ParseDay("2026-02-31"); ok {
		t.Error("impossible calendar date should not parse")
	}
	if _, ok := ParseDay("last night"); ok {
		t.Error("free-text date should not parse")
	}
	if _, ok := ParseDay(""); ok {
		t.Error("empty date should not parse")
	}
}

func TestIncidentEventDate(t *testing.T) {
	t.Parallel()

	in := Incident{Date: "2026-02-05"}
	got, ok := in.EventDate()
	if !ok || !got.Equal(time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("EventDate() = %v, %v", got, ok)
	}

	if _, ok := (Incident{Date: "unknown"}).EventDate(); ok {
		t.Error("unparseable date should report false")
	}
}

func TestIncidentHasCoordinates(t *testing.T) {
	t.Parallel()

	in := Incident{Latitude: FloatPtr(45.0)}
	if in.HasCoordinates() {
		t.Error("lone latitude should not count as coordinates")
	}
	in.Longitude = FloatPtr(37.0)
	if !in.HasCoordinates() {
		t.Error("both coordinates present should count")
	}
}

func TestRawMessageSourceChannels(t *testing.T) {
	t.Parallel()

	m := RawMessage{Channel: "astrapress"}
	if got := m.SourceChannels(); len(got) != 1 || got[0] != "astrapress" {
		t.Errorf("fallback channels = %v", got)
	}

	m.Channels = []string{"astrapress", "exilenova_plus"}
	if got := m.SourceChannels(); len(got) != 2 || got[1] != "exilenova_plus" {
		t.Errorf("merged channels = %v", got)
	}

	if got := (RawMessage{}).SourceChannels(); got != nil {
		t.Errorf("empty message channels = %v, want nil", got)
	}
}

func TestRawMessageDay(t *testing.T) {
	t.Parallel()

	m := RawMessage{Date: time.Date(2026, 2, 5, 23, 59, 0, 0, time.UTC)}
	if got := m.Day(); got != "2026-02-05" {
		t.Errorf("Day() = %q", got)
	}
	if got := (RawMessage{}).Day(); got != "" {
		t.Errorf("zero date Day() = %q, want empty", got)
	}
}

func TestStringPtr(t *testing.T) {
	t.Parallel()

	if StringPtr("") != nil {
		t.Error("empty string should map to nil")
	}
	if p := StringPtr("Ryazan"); p == nil || *p != "Ryazan" {
		t.Errorf("StringPtr = %v", p)
	}
	if Deref(nil) != "" {
		t.Error("Deref(nil) should be empty")
	}
	if Deref(StringPtr("x")) != "x" {
		t.Error("Deref round trip broken")
	}
}

package dedup

import (
	"strings"
	"testing"

	"strikewatch/internal/model"
)

func TestDeduplicate_MergesSameEvent(t *testing.T) {
	t.Parallel()

	a := withCoords(incident("2026-02-03", "Krasnodar", "Krasnodar", "Krasnodar Oil Refinery", model.TargetOilRefinery, "high"), 45.04, 38.97)
	a.DamageSummary = "Oil refinery hit by drones, fire reported"
	a.SourceChannel = "astrapress"
	a.MessageDate = "2026-02-03"

	b := withCoords(incident("2026-02-03", "Krasnodar", "Krasnodar", "", model.TargetOilRefinery, "medium"), 45.04, 38.97)
	b.DamageSummary = "Drone strike on refinery"
	b.SourceChannel = "oper_ZSU"
	b.MessageDate = "2026-02-03"

	out, stats := Deduplicate([]model.Incident{a, b}, Options{})
	if len(out) != 1 {
		t.Fatalf("expected two reports of the same strike to merge, got %d records", len(out))
	}
	if stats.Clusters != 1 || stats.DroppedLow != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if out[0].SourceChannel != "astrapress, oper_ZSU" {
		t.Fatalf("expected sorted channel union, got %q", out[0].SourceChannel)
	}
	if out[0].Confidence != "high" {
		t.Fatalf("expected highest confidence to win, got %q", out[0].Confidence)
	}
}

func TestDeduplicate_TransitiveClosure(t *testing.T) {
	t.Parallel()

	// A matches B (city), B matches C (coordinates), but A and C share
	// nothing directly: no coords on A, no city on C.
	a := incident("2026-02-03", "Bryansk", "Bryansk", "", model.TargetAmmunitionDepo, "high")
	a.DamageSummary = "Ammo depot hit"

	b := withCoords(incident("2026-02-03", "Bryansk", "Bryansk", "", model.TargetAmmunitionDepo, "high"), 53.25, 34.37)
	b.DamageSummary = "Explosions at ammunition storage near Bryansk"

	c := withCoords(incident("2026-02-04", "", "", "", model.TargetAmmunitionDepo, "medium"), 53.30, 34.40)
	c.DamageSummary = "Secondary detonations at the depot"

	m := NewMatcher(MatcherOptions{})
	if m.Match(a, c) != MatchNone {
		t.Fatalf("precondition failed: A and C must not match directly")
	}
	if m.Match(a, b) == MatchNone || m.Match(b, c) == MatchNone {
		t.Fatalf("precondition failed: A-B and B-C must match")
	}

	out, _ := Deduplicate([]model.Incident{a, b, c}, Options{})
	if len(out) != 1 {
		t.Fatalf("expected transitive closure to place all three in one cluster, got %d records", len(out))
	}
}

func TestDeduplicate_DistanceGuard(t *testing.T) {
	t.Parallel()

	a := incident("2026-02-04", "Krasnodar", "Krasnodar", "", model.TargetFuelDepot, "medium")
	a.DamageSummary = "Fuel depot hit in Krasnodar"
	b := incident("2026-02-04", "Krasnoyarsk", "Krasnoyarsk", "", model.TargetFuelDepot, "medium")
	b.DamageSummary = "Fuel depot hit in Krasnoyarsk"

	out, _ := Deduplicate([]model.Incident{a, b}, Options{})
	if len(out) != 2 {
		t.Fatalf("incidents thousands of km apart must never merge, got %d records", len(out))
	}
}

func TestDeduplicate_SameCityDifferentTargetGuard(t *testing.T) {
	t.Parallel()

	a := withCoords(incident("2026-02-09", "Ryazan", "Ryazan", "Ryazan Oil Refinery", model.TargetOilRefinery, "high"), 54.62, 39.70)
	a.DamageSummary = "Oil refinery struck, large fire"
	b := withCoords(incident("2026-02-09", "Ryazan", "Ryazan", "Dyagilevo airfield", model.TargetAirfield, "high"), 54.63, 39.57)
	b.DamageSummary = "Military airfield struck, runway damaged"

	out, _ := Deduplicate([]model.Incident{a, b}, Options{})
	if len(out) != 2 {
		t.Fatalf("incompatible target types in the same city must stay separate, got %d records", len(out))
	}
}

func TestDeduplicate_WeakMatchAnnotation(t *testing.T) {
	t.Parallel()

	a := incident("2026-02-05", "", "Black Sea", "", model.TargetNaval, "medium")
	a.DamageSummary = "Tanker struck by naval drones"
	a.Maritime = true
	a.SourceChannel = "supernova_plus"

	b := incident("2026-02-05", "", "Black Sea", "", model.TargetNaval, "high")
	b.DamageSummary = "Vessel on fire after drone attack in the Black Sea"
	b.SourceChannel = "Crimeanwind"

	out, stats := Deduplicate([]model.Incident{a, b}, Options{})
	if len(out) != 1 {
		t.Fatalf("region-only records must merge through the weak path, got %d records", len(out))
	}
	if out[0].ReviewNote != WeakClusterNote {
		t.Fatalf("weak-formed cluster must carry the review annotation, got %q", out[0].ReviewNote)
	}
	if !out[0].Maritime {
		t.Fatalf("maritime flag must survive the merge when any member is maritime")
	}
	if stats.WeakClusters != 1 {
		t.Fatalf("expected one weak cluster in stats, got %d", stats.WeakClusters)
	}
}

func TestDeduplicate_StrongEdgeSuppressesWeakAnnotation(t *testing.T) {
	t.Parallel()

	a := withCoords(incident("2026-02-05", "Sevastopol", "Crimea", "", model.TargetRadar, "high"), 44.60, 33.52)
	a.DamageSummary = "Radar installation destroyed near Sevastopol"
	b := withCoords(incident("2026-02-05", "Sevastopol", "Crimea", "", model.TargetRadar, "medium"), 44.58, 33.53)
	b.DamageSummary = "Strike on radar site"

	out, stats := Deduplicate([]model.Incident{a, b}, Options{})
	if len(out) != 1 {
		t.Fatalf("expected one merged record, got %d", len(out))
	}
	if out[0].ReviewNote != "" {
		t.Fatalf("strongly linked cluster must not carry the weak annotation, got %q", out[0].ReviewNote)
	}
	if stats.WeakClusters != 0 {
		t.Fatalf("expected no weak clusters, got %d", stats.WeakClusters)
	}
}

func TestDeduplicate_FieldResolution(t *testing.T) {
	t.Parallel()

	short := incident("2026-02-06", "Kerch", "Crimea", "", model.TargetNaval, "low")
	short.DamageSummary = strings.Repeat("x", 10)

	detailed := withCoords(incident("2026-02-05", "Kerch", "Crimea", "Kerch shipyard", model.TargetNaval, "medium"), 45.35, 36.47)
	detailed.DamageSummary = strings.Repeat("d", 50)
	detailed.SourceChannel = "Crimeanwind"
	detailed.MessageDate = "2026-02-05"

	other := withCoords(incident("2026-02-04", "Kerch", "Crimea", "Kerch shipyard", model.TargetNaval, "high"), 45.36, 36.48)
	other.DamageSummary = strings.Repeat("o", 30)
	other.SourceChannel = "oper_ZSU, Crimeanwind"
	other.MessageDate = "2026-02-06"

	out, stats := Deduplicate([]model.Incident{short, detailed, other}, Options{})
	if stats.DroppedLow != 1 {
		t.Fatalf("expected the low-confidence record to be dropped, got %+v", stats)
	}
	if len(out) != 1 {
		t.Fatalf("expected one merged record, got %d", len(out))
	}

	got := out[0]
	if got.DamageSummary != strings.Repeat("d", 50) {
		t.Fatalf("descriptive fields must come from the longest damage summary")
	}
	if got.Date != "2026-02-04" {
		t.Fatalf("primary date must be the earliest, got %q", got.Date)
	}
	if got.LastEventDate != "2026-02-05" {
		t.Fatalf("last event date must be the latest, got %q", got.LastEventDate)
	}
	if got.FirstMessageDate != "2026-02-05" || got.LastMessageDate != "2026-02-06" {
		t.Fatalf("message timestamp range wrong: %q .. %q", got.FirstMessageDate, got.LastMessageDate)
	}
	if got.Confidence != "high" {
		t.Fatalf("merged confidence must be the highest present, got %q", got.Confidence)
	}
	if got.SourceChannel != "Crimeanwind, oper_ZSU" {
		t.Fatalf("expected deduplicated sorted channel union, got %q", got.SourceChannel)
	}
	if got.Latitude == nil || *got.Latitude != 45.36 {
		t.Fatalf("coordinates must come from the highest-confidence member that has them")
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	t.Parallel()

	batch := []model.Incident{
		withCoords(incident("2026-02-03", "Krasnodar", "Krasnodar", "", model.TargetOilRefinery, "high"), 45.04, 38.97),
		withCoords(incident("2026-02-03", "Krasnodar", "Krasnodar", "", model.TargetOilRefinery, "medium"), 45.05, 38.96),
		incident("2026-02-06", "Belgorod", "Belgorod", "", model.TargetFuelDepot, "high"),
		incident("2026-02-09", "Ryazan", "Ryazan", "Dyagilevo airfield", model.TargetAirfield, "high"),
	}
	for i := range batch {
		batch[i].DamageSummary = "strike report"
		batch[i].SourceChannel = "astrapress"
	}

	first, _ := Deduplicate(batch, Options{})

	again := make([]model.Incident, len(first))
	for i, c := range first {
		again[i] = c.Incident
	}
	second, _ := Deduplicate(again, Options{})

	if len(second) != len(first) {
		t.Fatalf("re-running on own output must not merge further: %d -> %d", len(first), len(second))
	}
	for i := range second {
		if second[i].Date != first[i].Date || second[i].SourceChannel != first[i].SourceChannel {
			t.Fatalf("record %d changed across re-run: %+v vs %+v", i, second[i], first[i])
		}
	}
}

func TestDeduplicate_UnparseableDateStaysSingleton(t *testing.T) {
	t.Parallel()

	a := incident("unknown", "Kursk", "Kursk", "", model.TargetPowerInfra, "high")
	a.DamageSummary = "Substation damaged"
	b := incident("2026-02-05", "Kursk", "Kursk", "", model.TargetPowerInfra, "high")
	b.DamageSummary = "Power substation hit by drones"

	out, _ := Deduplicate([]model.Incident{a, b}, Options{})
	if len(out) != 2 {
		t.Fatalf("a record with an unparseable date must survive as its own singleton, got %d records", len(out))
	}
}

func TestDeduplicate_NoLocationEvidenceStaysSingleton(t *testing.T) {
	t.Parallel()

	a := incident("2026-02-05", "", "", "", model.TargetOther, "medium")
	a.DamageSummary = "Unspecified target struck"
	b := incident("2026-02-05", "", "Rostov", "", model.TargetOther, "medium")
	b.DamageSummary = "Target hit somewhere in Rostov region"

	out, _ := Deduplicate([]model.Incident{a, b}, Options{})
	if len(out) != 2 {
		t.Fatalf("a record without any location evidence must stay a singleton, got %d records", len(out))
	}
}

func TestDeduplicate_EmptyBatch(t *testing.T) {
	t.Parallel()

	out, stats := Deduplicate(nil, Options{})
	if len(out) != 0 || stats.Input != 0 {
		t.Fatalf("empty input must produce an empty result, got %d records", len(out))
	}
}

func TestDeduplicate_OutputSortedByDate(t *testing.T) {
	t.Parallel()

	batch := []model.Incident{
		incident("2026-02-09", "Ryazan", "Ryazan", "", model.TargetOilRefinery, "high"),
		incident("2026-02-03", "Krasnodar", "Krasnodar", "", model.TargetOilRefinery, "high"),
		incident("2026-02-06", "Belgorod", "Belgorod", "", model.TargetFuelDepot, "high"),
	}
	for i := range batch {
		batch[i].DamageSummary = "strike"
	}

	out, _ := Deduplicate(batch, Options{})
	for i := 1; i < len(out); i++ {
		if out[i-1].Date > out[i].Date {
			t.Fatalf("output must be sorted by primary event date: %q after %q", out[i].Date, out[i-1].Date)
		}
	}
}

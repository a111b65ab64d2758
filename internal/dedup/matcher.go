package dedup

import (
	"strings"

	"strikewatch/internal/geo"
	"strikewatch/internal/model"
	"strikewatch/internal/translit"
)

const (
	DefaultDateWindowDays   = 2
	DefaultCoordRadiusKM    = 30.0
	DefaultMinCitySubstrLen = 6
)

// MatcherOptions hold the empirically tuned thresholds of the pairwise
// predicates. They are configuration, not fixed truths; callers should keep
// them validated against labeled data.
type MatcherOptions struct {
	DateWindowDays   int
	CoordRadiusKM    float64
	MinCitySubstrLen int
}

func (o MatcherOptions) withDefaults() MatcherOptions {
	if o.DateWindowDays <= 0 {
		o.DateWindowDays = DefaultDateWindowDays
	}
	if o.CoordRadiusKM <= 0 {
		o.CoordRadiusKM = DefaultCoordRadiusKM
	}
	if o.MinCitySubstrLen <= 0 {
		o.MinCitySubstrLen = DefaultMinCitySubstrLen
	}
	return o
}

// Near-synonym target categories that in practice describe the same kind of
// facility; mutually compatible during matching.
var synonymTargetPairs = map[[2]string]struct{}{
	{model.TargetFuelDepot, model.TargetOilRefinery}:    {},
	{model.TargetMilitaryBase, model.TargetCommandPost}: {},
}

// Matcher decides whether two incident records may describe the same
// physical event. All predicates are symmetric in their arguments.
type Matcher struct {
	opts MatcherOptions
}

// NewMatcher builds a matcher with the given thresholds; zero values select
// the defaults.
func NewMatcher(opts MatcherOptions) *Matcher {
	return &Matcher{opts: opts.withDefaults()}
}

// MatchKind classifies the strength of the location evidence behind a
// same-event judgment.
type MatchKind int

const (
	MatchNone MatchKind = iota
	// MatchWeak links region-only records with no city or coordinate
	// evidence; materially lower certainty, flagged for review downstream.
	MatchWeak
	// MatchStrong is backed by coordinates, city names, or region+facility.
	MatchStrong
)

// Match evaluates the full same-event relation: date proximity AND
// target-type compatibility AND (strong OR weak) location evidence.
func (m *Matcher) Match(a, b model.Incident) MatchKind {
	if !m.DatesClose(a, b) {
		return MatchNone
	}
	if !m.TypesCompatible(a, b) {
		return MatchNone
	}
	if m.LocationsMatch(a, b) {
		return MatchStrong
	}
	if m.WeakLocationMatch(a, b) {
		return MatchWeak
	}
	return MatchNone
}

// DatesClose requires both event dates to parse and differ by at most the
// clustering window. Unparseable dates never match.
func (m *Matcher) DatesClose(a, b model.Incident) bool {
	da, okA := a.EventDate()
	db, okB := b.EventDate()
	if !okA || !okB {
		return false
	}
	days := int(db.Sub(da).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days <= m.opts.DateWindowDays
}

// LocationsMatch is the strong location predicate.
func (m *Matcher) LocationsMatch(a, b model.Incident) bool {
	if a.HasCoordinates() && b.HasCoordinates() {
		dist := geo.HaversineKM(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
		if dist < m.opts.CoordRadiusKM {
			return true
		}
	}

	cityA := translit.Normalize(model.Deref(a.City))
	cityB := translit.Normalize(model.Deref(b.City))
	if cityA != "" && cityB != "" {
		if translit.Equivalent(cityA, cityB) {
			return true
		}
		// Substring containment only counts when the shorter name is long
		// enough to be meaningful ("kov" inside "kharkov" proves nothing).
		shorter := len(cityA)
		if len(cityB) < shorter {
			shorter = len(cityB)
		}
		if shorter >= m.opts.MinCitySubstrLen &&
			(strings.Contains(cityA, cityB) || strings.Contains(cityB, cityA)) {
			return true
		}
	}

	regionA := translit.Normalize(model.Deref(a.Region))
	regionB := translit.Normalize(model.Deref(b.Region))
	facilityA := translit.Normalize(model.Deref(a.FacilityName))
	facilityB := translit.Normalize(model.Deref(b.FacilityName))
	if regionA != "" && regionA == regionB &&
		facilityA != "" && facilityB != "" && substringCompatible(facilityA, facilityB) {
		return true
	}

	return false
}

// WeakLocationMatch links vague region-only reports: neither record names a
// city, both share a non-empty region, and their facility names do not
// contradict each other. Two records that name incompatible facilities in
// the same region are refused; they are plausibly two distinct sites.
func (m *Matcher) WeakLocationMatch(a, b model.Incident) bool {
	cityA := translit.Normalize(model.Deref(a.City))
	cityB := translit.Normalize(model.Deref(b.City))
	if cityA != "" || cityB != "" {
		return false
	}

	regionA := translit.Normalize(model.Deref(a.Region))
	regionB := translit.Normalize(model.Deref(b.Region))
	if regionA == "" || regionA != regionB {
		return false
	}

	facilityA := translit.Normalize(model.Deref(a.FacilityName))
	facilityB := translit.Normalize(model.Deref(b.FacilityName))
	if facilityA == "" || facilityB == "" {
		return true
	}
	return substringCompatible(facilityA, facilityB)
}

// TypesCompatible implements target-category compatibility: identical
// categories, the wildcard category against anything, and the fixed
// near-synonym pairs.
func (m *Matcher) TypesCompatible(a, b model.Incident) bool {
	ta := model.NormalizeTargetType(a.TargetType)
	tb := model.NormalizeTargetType(b.TargetType)
	if ta == tb {
		return true
	}
	if ta == model.TargetOther || tb == model.TargetOther {
		return true
	}
	if _, ok := synonymTargetPairs[[2]string{ta, tb}]; ok {
		return true
	}
	if _, ok := synonymTargetPairs[[2]string{tb, ta}]; ok {
		return true
	}
	return false
}

func substringCompatible(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

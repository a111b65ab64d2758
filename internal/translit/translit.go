// Package translit normalizes mixed Cyrillic/Latin free text into a
// canonical Latin form so that location and facility names extracted from
// different languages can be compared for equality and containment.
package translit

import (
	"strings"
	"unicode"
)

// One-to-one character transliteration; multi-letter outputs are allowed
// (ж → zh). Covers Russian plus the Ukrainian extras і/ї/є/ґ. Apostrophe
// variants map to nothing so that "Запорiжжя's" and bare spellings meet.
var translitTable = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	'і': "i", 'ї': "yi", 'є': "ye", 'ґ': "g",
	'\'': "", '’': "", 'ʼ': "", '`': "",
}

// Alias groups for place names whose romanizations diverge beyond what
// character-level transliteration can reconcile. The first entry of each
// group is the canonical spelling.
var aliasGroups = [][]string{
	{"voronezh", "voronizh"},
	{"sevastopol", "sevastopil"},
	{"zaporizhzhia", "zaporizhzhya", "zaporozhye", "zaporozhe"},
	{"dnipro", "dnepr"},
	{"kharkiv", "kharkov", "kharkow"},
	{"kyiv", "kiev", "kiyev"},
	{"odesa", "odessa"},
	{"mykolaiv", "nikolaev", "mikolayiv"},
	{"dzhankoi", "dzhankoy"},
	{"feodosia", "feodosiya", "feodosija"},
	{"yevpatoria", "yevpatoriya", "evpatoria"},
	{"simferopol", "simferopil"},
	{"bryansk", "briansk"},
	{"yekaterinburg", "ekaterinburg"},
}

var aliases = buildAliases()

func buildAliases() map[string]string {
	m := make(map[string]string)
	for _, group := range aliasGroups {
		canonical := group[0]
		for _, name := range group {
			m[name] = canonical
		}
	}
	return m
}

// Normalize lowercases, transliterates Cyrillic to Latin, strips everything
// that is not alphanumeric or whitespace, and collapses whitespace runs.
// Empty input normalizes to the empty string. Pure and deterministic.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if mapped, ok := translitTable[r]; ok {
			b.WriteString(mapped)
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Equivalent reports whether two already-normalized names refer to the same
// place: identical, or both resolve to the same alias-table canonical entry.
func Equivalent(a, b string) bool {
	if a == b {
		return a != ""
	}
	ca, ok := aliases[a]
	if !ok {
		ca = a
	}
	cb, ok := aliases[b]
	if !ok {
		cb = b
	}
	return ca != "" && ca == cb
}

// Tokens extracts the normalized word-token set of a text. Tokens are
// truncated to prefixLen runes to neutralize grammatical suffix variation in
// inflected languages, and tokens shorter than minLen are dropped as noise.
func Tokens(s string, prefixLen, minLen int) map[string]struct{} {
	normalized := Normalize(s)
	if normalized == "" {
		return nil
	}

	set := make(map[string]struct{})
	for _, word := range strings.Fields(normalized) {
		runes := []rune(word)
		if len(runes) < minLen {
			continue
		}
		if prefixLen > 0 && len(runes) > prefixLen {
			runes = runes[:prefixLen]
		}
		set[string(runes)] = struct{}{}
	}
	return set
}

// Jaccard is the token-set similarity |A∩B| / |A∪B|. Empty sets score 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union <= 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

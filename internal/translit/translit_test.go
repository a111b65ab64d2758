package translit

import "testing"

func TestNormalize_Transliterates(t *testing.T) {
	t.Parallel()

	if got := Normalize("Белгород"); got != "belgorod" {
		t.Fatalf("unexpected normalization: %q", got)
	}
	if got := Normalize("Запоріжжя"); got != "zaporizhzhya" {
		t.Fatalf("unexpected normalization: %q", got)
	}
	if got := Normalize("  Хар'ків!!  "); got != "kharkiv" {
		t.Fatalf("expected punctuation and apostrophes stripped, got %q", got)
	}
}

func TestNormalize_CollapsesWhitespaceAndMixedScript(t *testing.T) {
	t.Parallel()

	if got := Normalize("НПЗ  in   Krasnodar"); got != "npz in krasnodar" {
		t.Fatalf("unexpected normalization: %q", got)
	}
	if got := Normalize(""); got != "" {
		t.Fatalf("expected empty output for empty input, got %q", got)
	}
	if got := Normalize("?!—…"); got != "" {
		t.Fatalf("expected empty output for punctuation-only input, got %q", got)
	}
}

func TestEquivalent(t *testing.T) {
	t.Parallel()

	if !Equivalent("kharkiv", "kharkov") {
		t.Fatalf("expected alias-equivalent city names to match")
	}
	if !Equivalent(Normalize("Воронiж"), Normalize("Voronezh")) {
		t.Fatalf("expected Ukrainian romanization to match English spelling via alias")
	}
	if Equivalent("krasnodar", "krasnoyarsk") {
		t.Fatalf("distinct cities must not be equivalent")
	}
	if Equivalent("", "") {
		t.Fatalf("empty names must not be equivalent")
	}
	if !Equivalent("saratov", "saratov") {
		t.Fatalf("identical names must be equivalent")
	}
}

func TestTokens_PrefixAndMinLength(t *testing.T) {
	t.Parallel()

	set := Tokens("Атакован нефтеперерабатывающий завод", 5, 3)
	if _, ok := set["atako"]; !ok {
		t.Fatalf("expected prefix-truncated token %q in %v", "atako", set)
	}
	if _, ok := set["nefte"]; !ok {
		t.Fatalf("expected prefix-truncated token %q in %v", "nefte", set)
	}

	// Inflected variants converge on the same prefix.
	a := Tokens("удар по нефтебазе", 5, 3)
	b := Tokens("удары по нефтебазам", 5, 3)
	if Jaccard(a, b) < 0.5 {
		t.Fatalf("expected inflected variants to overlap heavily, got %f", Jaccard(a, b))
	}

	short := Tokens("по на у в", 5, 3)
	if len(short) != 0 {
		t.Fatalf("expected short tokens to be dropped, got %v", short)
	}
}

func TestJaccard(t *testing.T) {
	t.Parallel()

	a := Tokens("drone strike on oil refinery", 5, 3)
	b := Tokens("oil refinery hit by drone", 5, 3)
	score := Jaccard(a, b)
	if score <= 0.5 || score > 1 {
		t.Fatalf("expected high overlap, got %f", score)
	}

	if got := Jaccard(nil, a); got != 0 {
		t.Fatalf("expected 0 for empty set, got %f", got)
	}
	if got := Jaccard(a, a); got != 1 {
		t.Fatalf("expected 1 for identical sets, got %f", got)
	}
}

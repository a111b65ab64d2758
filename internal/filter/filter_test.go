package filter

import (
	"testing"

	"strikewatch/internal/model"
)

func TestRelevant_StrikeReportsPass(t *testing.T) {
	t.Parallel()

	texts := []string{
		"Ночью дроны ВСУ атаковали НПЗ в Краснодарском крае. Сообщается о сильном пожаре на территории нефтеперерабатывающего завода.",
		"Удар по военной базе в Крыму. Сообщается о серии взрывов в районе Джанкоя.",
		"ВСУ нанесли удар по топливному складу в Белгородской области. Горит нефтебаза.",
		"В Черном море атакован российский танкер. Удар морскими дронами.",
		"Вибухи на складі боєприпасів у Брянській області. Удар дронами ВСУ вночі.",
		"Ukrainian drone strike hit an oil refinery in Saratov region. Massive fire reported.",
		"Атака дронов ВСУ на энергообъект в Курской области. Подстанция повреждена.",
		"Ракетный удар по РЛС в Крыму. Радар уничтожен, пожар на объекте.",
	}
	for _, text := range texts {
		if !Relevant(text) {
			t.Errorf("strike report rejected: %q", text)
		}
	}
}

func TestRelevant_RequiresActionTerm(t *testing.T) {
	t.Parallel()

	text := "Пожар на нефтебазе в Белгородской области. Причины выясняются."
	if Relevant(text) {
		t.Fatalf("message without an action term must be rejected")
	}
}

func TestRelevant_RequiresSecondCategory(t *testing.T) {
	t.Parallel()

	// Action term present but no location, infrastructure, or damage term.
	text := "Информация о тарифных изменениях в сфере энергетики. Удар по кошельку потребителей."
	if Relevant(text) {
		t.Fatalf("action term alone must not pass the filter")
	}
}

func TestRelevant_ExcludesStrikesOnUkraine(t *testing.T) {
	t.Parallel()

	// Names a Ukrainian city, no Russian location anywhere.
	text := "Россия нанесла ракетный удар по Харькову. Повреждены жилые дома, есть пострадавшие."
	if Relevant(text) {
		t.Fatalf("strike on a Ukrainian city must be excluded")
	}

	// But a Russian location in the same message keeps it: the LLM stage
	// decides scope, the pre-filter only needs a plausible signal.
	mixed := "Россия нанесла ракетный удар по Харькову. Ракеты запущены из Белгородской области."
	if !Relevant(mixed) {
		t.Fatalf("message naming a Russian location must survive the pre-filter")
	}
}

func TestApply_FiltersAndAnnotates(t *testing.T) {
	t.Parallel()

	messages := []model.RawMessage{
		{Channel: "astrapress", MessageID: 1, Text: "Ночью дроны ВСУ атаковали НПЗ в Краснодарском крае. Сильный пожар на заводе."},
		{Channel: "astrapress", MessageID: 2, Text: "Подборка мемов за неделю."},
		{Channel: "oper_ZSU", MessageID: 3, Text: "Ukrainian drone strike hit an oil refinery in Saratov region. Massive fire reported."},
	}

	kept, stats := Apply(messages)
	if stats.Input != 3 || stats.Kept != 2 || stats.Dropped != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(kept) != 2 || kept[0].MessageID != 1 || kept[1].MessageID != 3 {
		t.Fatalf("expected messages 1 and 3 in order, got %+v", kept)
	}
	if kept[0].Language != "ru" {
		t.Errorf("expected Russian detected, got %q", kept[0].Language)
	}
	if kept[1].Language != "en" {
		t.Errorf("expected English detected, got %q", kept[1].Language)
	}
}

func TestApply_Empty(t *testing.T) {
	t.Parallel()

	kept, stats := Apply(nil)
	if len(kept) != 0 || stats.Input != 0 {
		t.Fatalf("empty input must produce empty output, got %+v", stats)
	}
}

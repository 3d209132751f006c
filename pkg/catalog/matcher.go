package catalog

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/garage61-tools/garage61-mcp/pkg/config"
)

// Весовые константы текстовой близости. Точное равенство всегда 1.0,
// остальные ветки замкнуты ниже, чтобы exact совпадение нельзя было
// перебить ни одним бонусом.
const (
	substringWeight = 0.9  // Запрос — подстрока имени
	containsWeight  = 0.8  // Имя — подстрока запроса
	allWordsWeight  = 0.65 // Все слова запроса встречаются в имени
	editDistanceCap = 0.6  // Потолок скора по расстоянию Левенштейна
	variantOverride = 2.0  // Множитель бонуса при явном варианте в запросе
)

// Matcher ранжирует записи каталога по текстовой близости к запросу
// с доменными tie-break правилами.
type Matcher struct {
	opts Options
}

// Options — пороги и веса матчера. Zero value не годится,
// используйте OptionsFromConfig.
type Options struct {
	AcceptThreshold  float64 // Минимальный скор, чтобы кандидат считался найденным
	MaxAlternatives  int     // Сколько альтернатив отдавать для подсказок
	GenerationWeight float64 // Вес бонуса поколения (машины)
	VariantWeight    float64 // Вес бонуса варианта (трассы)
}

// OptionsFromConfig переводит YAML секцию matcher в Options с дефолтами.
func OptionsFromConfig(cfg config.MatcherConfig) Options {
	cfg = cfg.GetDefaults()
	return Options{
		AcceptThreshold:  cfg.AcceptThreshold,
		MaxAlternatives:  cfg.MaxAlternatives,
		GenerationWeight: cfg.GenerationWeight,
		VariantWeight:    cfg.VariantWeight,
	}
}

// NewMatcher создает матчер с заданными опциями.
func NewMatcher(opts Options) *Matcher {
	return &Matcher{opts: opts}
}

// Normalize приводит строку к канонической форме для сравнения:
// lowercase, пунктуация → пробелы, схлопнутые пробелы.
// "Porsche 911 GT3 R (992)" → "porsche 911 gt3 r 992".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// textScore — базовая текстовая близость двух нормализованных строк, 0..1.
//
// Каскад: равенство > вхождение подстроки (со штрафом за лишние
// символы, как в поиске по справочнику цветов) > обратное вхождение >
// пословное вхождение > расстояние Левенштейна, плавно затухающее
// с дистанцией относительно длины имени.
func textScore(query, name string) float64 {
	if query == name {
		return 1.0
	}

	if strings.Contains(name, query) {
		// Штраф за лишние символы: "gt3" в "porsche 911 gt3 r 992"
		// скорит ниже, чем "gt3" в "bmw m4 gt3"
		return substringWeight * float64(len(query)) / float64(len(name))
	}

	if strings.Contains(query, name) {
		return containsWeight * float64(len(name)) / float64(len(query))
	}

	if containsAllWords(name, query) {
		return allWordsWeight
	}

	// Опечатки: скор затухает с расстоянием относительно длины
	dist := levenshtein.ComputeDistance(query, name)
	longest := len([]rune(name))
	if l := len([]rune(query)); l > longest {
		longest = l
	}
	if longest == 0 || dist >= longest {
		return 0
	}
	return editDistanceCap * (1.0 - float64(dist)/float64(longest))
}

// containsAllWords — все слова query встречаются в haystack как целые слова.
func containsAllWords(haystack, query string) bool {
	words := strings.Fields(query)
	if len(words) == 0 {
		return false
	}
	padded := " " + haystack + " "
	for _, w := range words {
		if !strings.Contains(padded, " "+w+" ") {
			return false
		}
	}
	return true
}

// RankOptions — флаги одного запроса ранжирования.
type RankOptions struct {
	IncludeLegacy bool // Не исключать устаревшие машины
}

// Rank считает скор каждой записи и возвращает всех кандидатов,
// отсортированных по убыванию скора (tie-break: ID по возрастанию).
//
// Floor не применяется: отфильтровывать слабых кандидатов — дело
// вызывающего, здесь же должны быть видны даже плохие совпадения
// (для "did you mean" подсказок). Единственное исключение — legacy
// машины: без IncludeLegacy они не попадают в выдачу вовсе,
// какой бы хорошей ни была текстовая близость.
func (m *Matcher) Rank(kind Kind, query string, entries []Entry, opts RankOptions) []Match {
	normQuery := Normalize(query)

	if kind == KindCar && queryWantsLegacy(normQuery) {
		opts.IncludeLegacy = true
	}
	variantKw := ""
	if kind == KindTrack {
		variantKw = queryVariantKeyword(normQuery)
		// Слово варианта, которое живет только в базовых именах трасс
		// ("Okayama International Circuit"), не является запросом
		// конфигурации: без реального варианта-кандидата работает
		// таблица предпочтений
		if variantKw != "" && !anyVariantMatches(entries, variantKw) {
			variantKw = ""
		}
	}

	matches := make([]Match, 0, len(entries))
	for _, e := range entries {
		if kind == KindCar && !opts.IncludeLegacy && IsLegacyCar(e.Name) {
			continue
		}

		var br ScoreBreakdown
		br.Text = m.entryTextScore(normQuery, e)

		switch kind {
		case KindCar:
			br.Generation = m.opts.GenerationWeight * float64(CarGenerationScore(e.Name)) / 100.0
		case KindTrack:
			br.Variant = m.variantBonus(variantKw, e)
		}

		br.Final = br.Text + br.Generation + br.Variant
		matches = append(matches, Match{Entry: e, Score: br.Final, Breakdown: br})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return idLess(matches[i].Entry.ID, matches[j].Entry.ID)
	})

	return matches
}

// entryTextScore — близость запроса к записи. Для трасс берется максимум
// из базового имени и полного имени с вариантом: запрос может быть
// и "spa", и "spa endurance".
func (m *Matcher) entryTextScore(normQuery string, e Entry) float64 {
	score := textScore(normQuery, Normalize(e.Name))
	if e.Variant != "" {
		if full := textScore(normQuery, Normalize(e.DisplayName())); full > score {
			score = full
		}
	}
	return score
}

// anyVariantMatches — хотя бы у одной записи вариант содержит ключевое слово.
func anyVariantMatches(entries []Entry, kw string) bool {
	for _, e := range entries {
		if e.Variant != "" && containsAllWords(Normalize(e.Variant), kw) {
			return true
		}
	}
	return false
}

// variantBonus — бонус за вариант конфигурации трассы.
//
// Явное ключевое слово в запросе ("suzuka short") перекрывает
// дефолтные предпочтения: бонус получают только совпадающие варианты.
// Без ключевого слова работает таблица предпочтений (grand prix выше
// short и т.д.).
func (m *Matcher) variantBonus(variantKw string, e Entry) float64 {
	if variantKw != "" {
		if containsAllWords(Normalize(e.Variant), variantKw) {
			return m.opts.VariantWeight * variantOverride
		}
		return 0
	}
	return m.opts.VariantWeight * float64(TrackVariantScore(e.Variant)) / 100.0
}

// ExactMatch ищет точное (case-insensitive) совпадение имени.
//
// Сравнивается и базовое имя, и полное имя с вариантом. Если точных
// совпадений несколько (запрос по базовому имени трассы с несколькими
// конфигурациями) — выбирается предпочтительный вариант.
func (m *Matcher) ExactMatch(kind Kind, name string, entries []Entry) (Entry, bool) {
	normName := Normalize(name)
	if normName == "" {
		return Entry{}, false
	}

	var found []Entry
	for _, e := range entries {
		if Normalize(e.Name) == normName || (e.Variant != "" && Normalize(e.DisplayName()) == normName) {
			found = append(found, e)
		}
	}

	switch len(found) {
	case 0:
		return Entry{}, false
	case 1:
		return found[0], true
	}

	best := found[0]
	for _, e := range found[1:] {
		if TrackVariantScore(e.Variant) > TrackVariantScore(best.Variant) {
			best = e
		}
	}
	return best, true
}

// Package catalog реализует in-memory кэш справочников машин и трасс
// с нечетким поиском по именам.
//
// Кэш наполняется целиком из внешнего API (через интерфейс Fetcher)
// и освежается по TTL. Поиск делает Matcher: текстовая близость плюс
// доменные tie-break правила (новые поколения машин выше старых,
// предпочитаемые варианты трасс выше остальных).
package catalog

import "strconv"

// Kind — вид справочника.
type Kind string

const (
	KindCar   Kind = "car"
	KindTrack Kind = "track"
)

// Entry — одна запись каталога. Immutable после загрузки,
// идентичность — по ID (внутри одного каталога ID уникальны).
//
// Имена уникальными не являются: одна трасса встречается несколько раз
// с разными вариантами конфигурации. Такие коллизии разруливает скоринг,
// а не ID.
type Entry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`              // "Nürburgring", "Porsche 911 GT3 R (992)"
	Variant string `json:"variant,omitempty"` // Вариант конфигурации трассы, у машин пустой
}

// DisplayName возвращает имя для показа пользователю:
// "Nürburgring - Grand Prix" либо просто базовое имя.
func (e Entry) DisplayName() string {
	if e.Variant != "" {
		return e.Name + " - " + e.Variant
	}
	return e.Name
}

// ScoreBreakdown — разбивка итогового скора для диагностики.
type ScoreBreakdown struct {
	Text       float64 `json:"text"`       // Текстовая близость 0..1
	Generation float64 `json:"generation"` // Бонус за поколение машины
	Variant    float64 `json:"variant"`    // Бонус за вариант трассы
	Final      float64 `json:"final"`
}

// Match — один кандидат с его скором.
type Match struct {
	Entry     Entry          `json:"entry"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// MatchResult — результат ResolveExactOrSuggest.
//
// "Не нашли" — это нормальный исход, не ошибка: Matched == nil,
// а Alternatives всё равно заполнены ближайшими именами для
// "did you mean" подсказки.
type MatchResult struct {
	Matched      *Entry  `json:"matched,omitempty"`
	Confidence   float64 `json:"confidence"`
	Exact        bool    `json:"exact"`
	Alternatives []Match `json:"alternatives"`
}

// idLess сравнивает ID численно, когда оба — числа (ID Garage 61 числовые),
// иначе лексикографически. Стабильный tie-break при равных скорах.
func idLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

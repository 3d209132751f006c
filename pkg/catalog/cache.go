package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/garage61-tools/garage61-mcp/pkg/utils"
)

// ErrUpstreamUnavailable — загрузка каталога из API не удалась.
//
// Кэш при этом НЕ очищается: предыдущий каталог (если был) продолжает
// обслуживать запросы. Transient сбой деградирует до stale данных,
// а не до пустой выдачи. Retry/backoff — зона ответственности API
// клиента, кэш внутри себя не ретраит.
var ErrUpstreamUnavailable = errors.New("catalog: upstream unavailable")

// Fetcher — внешний коллаборатор, загружающий полный каталог.
type Fetcher interface {
	FetchAll(ctx context.Context, kind Kind) ([]Entry, error)
}

// Cache владеет каталогами машин и трасс и следит за их свежестью.
//
// Жизненный цикл каждого каталога:
// Empty → Loading → Loaded → Stale (по TTL) → Loading → Loaded.
// Loading реентерабельна: конкурентные вызовы EnsureLoaded
// коалесцируются в один запрос к API (fetchMu), читатели при этом
// видят либо старый каталог целиком, либо новый целиком.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	matcher *Matcher

	mu       sync.RWMutex
	catalogs map[Kind]*catalogState
}

type catalogState struct {
	fetchMu sync.Mutex // Сериализует загрузки одного kind

	mu        sync.RWMutex
	entries   []Entry // Заменяется wholesale, никогда не мутируется
	loaded    bool
	fetchedAt time.Time
}

// NewCache создает пустой кэш.
//
// Один экземпляр на процесс, владеет им слой tools — никаких
// package-level глобалов, чтобы staleness и coalescing были
// тестируемы в изоляции.
func NewCache(fetcher Fetcher, ttl time.Duration, matcher *Matcher) *Cache {
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		matcher: matcher,
		catalogs: map[Kind]*catalogState{
			KindCar:   {},
			KindTrack: {},
		},
	}
}

func (c *Cache) state(kind Kind) *catalogState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalogs[kind]
}

// EnsureLoaded загружает каталог, если он пуст или устарел.
//
// При неудаче возвращает ошибку, обернутую в ErrUpstreamUnavailable,
// и оставляет прежнее состояние нетронутым. Конкурентные вызовы для
// одного kind ждут общий in-flight запрос вместо дублирования.
func (c *Cache) EnsureLoaded(ctx context.Context, kind Kind) error {
	st := c.state(kind)
	if st == nil {
		return fmt.Errorf("unknown catalog kind: %q", kind)
	}

	if c.isFresh(st) {
		return nil
	}

	st.fetchMu.Lock()
	defer st.fetchMu.Unlock()

	// Пока ждали fetchMu, другой вызов мог уже обновить каталог
	if c.isFresh(st) {
		return nil
	}

	entries, err := c.fetcher.FetchAll(ctx, kind)
	if err != nil {
		utils.Warn("Catalog fetch failed, keeping previous data",
			"kind", kind, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, kind, err)
	}

	st.mu.Lock()
	st.entries = entries
	st.loaded = true
	st.fetchedAt = time.Now()
	st.mu.Unlock()

	utils.Info("Catalog loaded", "kind", kind, "entries", len(entries))
	return nil
}

func (c *Cache) isFresh(st *catalogState) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.loaded && time.Since(st.fetchedAt) < c.ttl
}

// Refresh принудительно перезагружает каталог, игнорируя TTL.
func (c *Cache) Refresh(ctx context.Context, kind Kind) error {
	st := c.state(kind)
	if st == nil {
		return fmt.Errorf("unknown catalog kind: %q", kind)
	}
	st.mu.Lock()
	st.loaded = false
	st.mu.Unlock()
	return c.EnsureLoaded(ctx, kind)
}

// Reset очищает все каталоги. Teardown для тестов и перечитки конфига.
func (c *Cache) Reset() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, st := range c.catalogs {
		st.mu.Lock()
		st.entries = nil
		st.loaded = false
		st.fetchedAt = time.Time{}
		st.mu.Unlock()
	}
}

// Snapshot возвращает текущий каталог в порядке загрузки.
// Слайс после загрузки не мутируется, копия не нужна.
func (c *Cache) Snapshot(kind Kind) []Entry {
	st := c.state(kind)
	if st == nil {
		return nil
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.entries
}

// Len возвращает размер каталога.
func (c *Cache) Len(kind Kind) int {
	return len(c.Snapshot(kind))
}

// SearchOptions — флаги Search.
type SearchOptions struct {
	IncludeLegacy bool // Включить устаревшие машины
	Limit         int  // 0 = без лимита
}

// Search ищет записи по свободному тексту.
//
// Пустой запрос возвращает весь каталог в исходном порядке без
// скоринга (legacy машины всё равно отфильтрованы, если не попросили).
// Непустой — кандидатов с ненулевым скором, по убыванию скора.
func (c *Cache) Search(kind Kind, query string, opts SearchOptions) []Match {
	entries := c.Snapshot(kind)

	if Normalize(query) == "" {
		matches := make([]Match, 0, len(entries))
		for _, e := range entries {
			if kind == KindCar && !opts.IncludeLegacy && IsLegacyCar(e.Name) {
				continue
			}
			matches = append(matches, Match{Entry: e})
		}
		return limitMatches(matches, opts.Limit)
	}

	ranked := c.matcher.Rank(kind, query, entries, RankOptions{IncludeLegacy: opts.IncludeLegacy})

	// Нулевой скор = текстом не зацепился вообще, в выдаче не нужен
	filtered := ranked[:0:len(ranked)]
	for _, m := range ranked {
		if m.Breakdown.Text > 0 {
			filtered = append(filtered, m)
		}
	}
	return limitMatches(filtered, opts.Limit)
}

func limitMatches(matches []Match, limit int) []Match {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}

// ResolveExactOrSuggest резолвит имя в запись каталога.
//
// Сначала точное case-insensitive совпадение (Exact=true, максимальный
// скор). Иначе — лучший нечеткий кандидат, если его скор проходит
// порог принятия. Если не проходит — Matched отсутствует, но
// Alternatives всё равно несут ближайшие имена, какими бы слабыми
// они ни были: порог решает "нашли или нет", а не "что показать
// в подсказке". Принятый кандидат в свои же Alternatives не входит.
func (c *Cache) ResolveExactOrSuggest(kind Kind, name string) MatchResult {
	entries := c.Snapshot(kind)

	if exact, ok := c.matcher.ExactMatch(kind, name, entries); ok {
		return MatchResult{
			Matched:    &exact,
			Confidence: 1.0,
			Exact:      true,
		}
	}

	ranked := c.matcher.Rank(kind, name, entries, RankOptions{})

	if len(ranked) == 0 || ranked[0].Breakdown.Text < c.matcher.opts.AcceptThreshold {
		return MatchResult{Alternatives: limitMatches(ranked, c.matcher.opts.MaxAlternatives)}
	}

	best := ranked[0]
	// Бонусы могут перекинуть скор за 1.0; точное совпадение
	// остается максимумом шкалы
	confidence := best.Score
	if confidence > 1.0 {
		confidence = 1.0
	}
	return MatchResult{
		Matched:      &best.Entry,
		Confidence:   confidence,
		Exact:        false,
		Alternatives: limitMatches(ranked[1:], c.matcher.opts.MaxAlternatives),
	}
}

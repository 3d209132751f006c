// Package garage61 provides a reusable SDK for the Garage 61 API.
//
// Architecture:
//
// This is an **API SDK**, not just a "dumb" HTTP client. It provides:
//   - HTTP client with retry, rate limiting, and error classification
//   - High-level methods that handle the {"items": [...]} response wrapper
//   - Telemetry CSV download with plan-level fallbacks (403 = Pro plan)
//
// Usage pattern:
//   - pkg/garage61 - reusable SDK (can be used in any project)
//   - pkg/tools/std - thin wrappers for MCP tool calling
//
// Fuzzy car/track resolution lives in pkg/catalog, not here: the SDK
// speaks only in IDs.
package garage61

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/garage61-tools/garage61-mcp/pkg/config"
	"golang.org/x/time/rate"
)

// ErrorType представляет тип ошибки при работе с Garage 61 API.
type ErrorType int

const (
	ErrUnknown ErrorType = iota
	ErrAuthFailed
	ErrTimeout
	ErrNetwork
	ErrRateLimit
)

// String возвращает строковое представление типа ошибки.
func (e ErrorType) String() string {
	switch e {
	case ErrAuthFailed:
		return "authentication_failed"
	case ErrTimeout:
		return "timeout"
	case ErrNetwork:
		return "network_error"
	case ErrRateLimit:
		return "rate_limit"
	default:
		return "unknown"
	}
}

// HumanMessage возвращает человекочитаемое сообщение для типа ошибки.
func (e ErrorType) HumanMessage() string {
	switch e {
	case ErrAuthFailed:
		return "API token is invalid or missing. Check GARAGE61_TOKEN in your configuration."
	case ErrTimeout:
		return "Request timed out. Garage 61 is not responding or the network is slow."
	case ErrNetwork:
		return "Garage 61 is unreachable. Check your internet connection."
	case ErrRateLimit:
		return "Rate limit exceeded. Wait before the next request."
	default:
		return "Unknown error while talking to the Garage 61 API."
	}
}

// Сентинелы для телеметрии. 403 и 404 — ожидаемые исходы, не сбои:
// tools превращают их в пояснительный текст для пользователя.
var (
	// ErrProPlanRequired — телеметрия конкретного круга требует Pro план.
	ErrProPlanRequired = errors.New("garage61: pro plan required for telemetry")
	// ErrTelemetryNotFound — у круга нет телеметрии.
	ErrTelemetryNotFound = errors.New("garage61: telemetry not found")
)

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать HTTP клиент в тестах.
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client — клиент Garage 61 API с retry и rate limiting.
type Client struct {
	token         string
	baseURL       string
	rateLimit     int // запросов в минуту
	burst         int
	retryAttempts int
	httpClient    HTTPClient // Интерфейс вместо конкретного типа для testability

	mu       sync.Mutex
	limiters map[string]*rate.Limiter // endpoint ID → limiter
}

// NewFromConfig создает новый клиент из конфигурации.
//
// Поля с нулевыми значениями используют дефолты через GetDefaults().
func NewFromConfig(cfg config.Garage61Config) (*Client, error) {
	cfg = cfg.GetDefaults()

	if cfg.Token == "" {
		return nil, fmt.Errorf("garage61.token is required")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid garage61.timeout format: %w", err)
	}

	return &Client{
		token:         cfg.Token,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		rateLimit:     cfg.RateLimit,
		burst:         cfg.BurstLimit,
		retryAttempts: cfg.RetryAttempts,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiters: make(map[string]*rate.Limiter),
	}, nil
}

// ClassifyError классифицирует ошибку по типу для лучшей диагностики.
//
// Анализирует текст ошибки и возвращает соответствующий тип:
//   - ErrAuthFailed: ошибки 401, unauthorized, Forbidden
//   - ErrTimeout: timeout, deadline exceeded
//   - ErrNetwork: connection refused, no such host
//   - ErrRateLimit: ошибки 429, Too Many Requests
//   - ErrUnknown: все остальные ошибки
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrUnknown
	}

	errMsg := err.Error()
	errMsgLower := strings.ToLower(errMsg)

	if strings.Contains(errMsg, "401") ||
		strings.Contains(errMsgLower, "unauthorized") ||
		strings.Contains(errMsg, "Forbidden") {
		return ErrAuthFailed
	}

	if strings.Contains(errMsgLower, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded") {
		return ErrTimeout
	}

	if strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no such host") {
		return ErrNetwork
	}

	if strings.Contains(errMsg, "429") ||
		strings.Contains(errMsg, "Too Many Requests") {
		return ErrRateLimit
	}

	return ErrUnknown
}

// getOrCreateLimiter возвращает существующий limiter для endpointID или создаёт новый.
func (c *Client) getOrCreateLimiter(endpointID string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limiter, exists := c.limiters[endpointID]; exists {
		return limiter
	}

	// rateLimit в запросах/минуту → rate.Limit в запросах/секунду
	ratePerSec := float64(c.rateLimit) / 60.0
	limiter := rate.NewLimiter(rate.Limit(ratePerSec), c.burst)
	c.limiters[endpointID] = limiter

	return limiter
}

// get выполняет GET запрос с retry логикой и rate limiting,
// результат анмаршалится в dest.
func (c *Client) get(ctx context.Context, endpointID, path string, params url.Values, dest interface{}) error {
	body, _, err := c.do(ctx, endpointID, path, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}
	return nil
}

// do выполняет запрос и возвращает сырое тело ответа и статус код.
//
// Retry loop: сетевые ошибки ретраятся, 429 ждет Retry-After,
// остальные не-200 статусы возвращаются как codedError без ретрая.
func (c *Client) do(ctx context.Context, endpointID, path string, params url.Values) ([]byte, int, error) {
	limiter := c.getOrCreateLimiter(endpointID)

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid url: %w", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	var lastErr error

	for i := 0; i < c.retryAttempts; i++ {
		// Ждем разрешения от лимитера (блокирует горутину, если превысили лимит)
		if err := limiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("rate limiter wait: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
		if err != nil {
			return nil, 0, err
		}

		httpReq.Header.Set("Authorization", "Bearer "+c.token)
		httpReq.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue // Сетевая ошибка, пробуем еще
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		// Обработка 429 (Too Many Requests)
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := 1 * time.Second // Дефолт
			if s := resp.Header.Get("Retry-After"); s != "" {
				if sec, err := strconv.Atoi(s); err == nil {
					retryAfter = time.Duration(sec) * time.Second
				}
			}

			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(retryAfter):
				continue
			}
		}

		if resp.StatusCode != http.StatusOK {
			return nil, resp.StatusCode, fmt.Errorf("garage61 api error: status %d, body: %s", resp.StatusCode, string(body))
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, fmt.Errorf("max retries exceeded, last error: %v", lastErr)
}

// ListCars загружает полный справочник машин.
//
// Порядок элементов — как отдал API (важно для кэша: каталог
// сохраняется wholesale, без пересортировки).
func (c *Client) ListCars(ctx context.Context) ([]Car, error) {
	var resp ItemsResponse[Car]
	if err := c.get(ctx, "list_cars", "/cars", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch cars: %w", err)
	}
	return resp.Items, nil
}

// ListTracks загружает полный справочник трасс (все варианты конфигураций).
func (c *Client) ListTracks(ctx context.Context) ([]Track, error) {
	var resp ItemsResponse[Track]
	if err := c.get(ctx, "list_tracks", "/tracks", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch tracks: %w", err)
	}
	return resp.Items, nil
}

// Me возвращает аккаунт владельца токена. Используется для диагностики.
func (c *Client) Me(ctx context.Context) (*Account, error) {
	var acc Account
	if err := c.get(ctx, "me", "/me", nil, &acc); err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	return &acc, nil
}

// ListLaps загружает круги по фильтру, отсортированные по времени круга.
//
// Если SeeTelemetry выставлен и API вернул 403 (телеметрия требует
// Pro план), запрос автоматически повторяется без этого флага —
// то же поведение, что у веб-клиента Garage 61.
func (c *Client) ListLaps(ctx context.Context, filter LapFilter) ([]Lap, error) {
	laps, err := c.listLapsOnce(ctx, filter)
	if err != nil && filter.SeeTelemetry && isStatus(err, http.StatusForbidden) {
		filter.SeeTelemetry = false
		laps, err = c.listLapsOnce(ctx, filter)
	}
	if err != nil {
		return nil, err
	}

	sortLapsByTime(laps)
	return laps, nil
}

func (c *Client) listLapsOnce(ctx context.Context, filter LapFilter) ([]Lap, error) {
	params := url.Values{}
	for _, id := range filter.Cars {
		params.Add("cars", strconv.Itoa(id))
	}
	for _, id := range filter.Tracks {
		params.Add("tracks", strconv.Itoa(id))
	}
	for _, d := range filter.Drivers {
		params.Add("drivers", d)
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Group != "" {
		params.Set("group", filter.Group)
	}
	if filter.SeeTelemetry {
		params.Set("seeTelemetry", "true")
	}
	// Только полные круги (lapType 1): in/out лапы бесполезны для сравнения
	params.Set("lapTypes", "1")

	var resp ItemsResponse[Lap]
	body, status, err := c.do(ctx, "list_laps", "/laps", params)
	if err != nil {
		return nil, &statusError{status: status, err: err}
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal laps: %w", err)
	}
	return resp.Items, nil
}

// LapTelemetryCSV скачивает телеметрию круга в CSV.
//
// Возвращает ErrProPlanRequired на 403 и ErrTelemetryNotFound на 404 —
// оба случая ожидаемы, вызывающий решает как их показать.
func (c *Client) LapTelemetryCSV(ctx context.Context, lapID string) (string, error) {
	body, status, err := c.do(ctx, "lap_telemetry", "/laps/"+url.PathEscape(lapID)+"/csv", nil)
	if err != nil {
		switch status {
		case http.StatusForbidden:
			return "", ErrProPlanRequired
		case http.StatusNotFound:
			return "", ErrTelemetryNotFound
		}
		return "", err
	}
	return string(body), nil
}

// statusError сохраняет HTTP статус для isStatus проверок выше по стеку.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func isStatus(err error, status int) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == status
}

// sortLapsByTime сортирует круги по возрастанию времени (быстрейший первым).
func sortLapsByTime(laps []Lap) {
	sort.Slice(laps, func(i, j int) bool {
		return laps[i].LapTime < laps[j].LapTime
	})
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Garage61 Garage61Config        `yaml:"garage61"`
	Cache    CacheConfig           `yaml:"cache"`
	Matcher  MatcherConfig         `yaml:"matcher"`
	Tools    map[string]ToolConfig `yaml:"tools"`
	App      AppSpecific           `yaml:"app"`
}

// Garage61Config — настройки доступа к Garage 61 API.
type Garage61Config struct {
	Token         string `yaml:"token"`          // API токен, поддерживает ${GARAGE61_TOKEN}
	BaseURL       string `yaml:"base_url"`       // Базовый URL API
	RateLimit     int    `yaml:"rate_limit"`     // Запросов в минуту
	BurstLimit    int    `yaml:"burst_limit"`    // Burst для rate limiter
	RetryAttempts int    `yaml:"retry_attempts"` // Количество retry попыток
	Timeout       string `yaml:"timeout"`        // Timeout для HTTP запросов (например, "30s")
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *Garage61Config) GetDefaults() Garage61Config {
	result := *c // Копируем текущие значения

	if result.BaseURL == "" {
		result.BaseURL = "https://garage61.net/api/v1"
	}
	if result.RateLimit == 0 {
		result.RateLimit = 60 // запросов в минуту
	}
	if result.BurstLimit == 0 {
		result.BurstLimit = 5
	}
	if result.RetryAttempts == 0 {
		result.RetryAttempts = 3
	}
	if result.Timeout == "" {
		result.Timeout = "30s"
	}

	return result
}

// CacheConfig — настройки кэша справочников (машины и трассы).
type CacheConfig struct {
	StalenessTTL string `yaml:"staleness_ttl"` // Максимальный возраст каталога до рефреша
}

// TTL парсит staleness_ttl, возвращает дефолт 15m при пустом
// или невалидном значении.
func (c *CacheConfig) TTL() time.Duration {
	if c.StalenessTTL == "" {
		return 15 * time.Minute
	}
	d, err := time.ParseDuration(c.StalenessTTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// MatcherConfig — тюнинг нечеткого поиска.
//
// Все значения — policy constants: тесты проверяют относительный порядок
// кандидатов, а не конкретные величины.
type MatcherConfig struct {
	AcceptThreshold  float64 `yaml:"accept_threshold"`  // Минимальный скор для принятия лучшего кандидата
	MaxAlternatives  int     `yaml:"max_alternatives"`  // Сколько вариантов вернуть для "did you mean"
	GenerationWeight float64 `yaml:"generation_weight"` // Вес бонуса за новое поколение машины
	VariantWeight    float64 `yaml:"variant_weight"`    // Вес бонуса за предпочитаемый вариант трассы
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *MatcherConfig) GetDefaults() MatcherConfig {
	result := *c

	if result.AcceptThreshold == 0 {
		result.AcceptThreshold = 0.4
	}
	if result.MaxAlternatives == 0 {
		result.MaxAlternatives = 5
	}
	if result.GenerationWeight == 0 {
		result.GenerationWeight = 0.15
	}
	if result.VariantWeight == 0 {
		result.VariantWeight = 0.1
	}

	return result
}

// ToolConfig — настройки отдельного инструмента.
type ToolConfig struct {
	Enabled     *bool  `yaml:"enabled"`     // nil трактуется как true
	Description string `yaml:"description"` // Описание для LLM, перекрывает встроенное
	Limit       int    `yaml:"limit"`       // Лимит результатов (для list_* tools)
}

// IsEnabled — инструменты выключаются только явным enabled: false.
func (c ToolConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug bool `yaml:"debug"`
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 5. Валидируем критические настройки
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv собирает минимальную конфигурацию без YAML файла.
//
// Fallback для запуска через MCP хост, который передаёт только
// GARAGE61_TOKEN (и опционально GARAGE61_BASE_URL) в окружении.
func LoadFromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		Garage61: Garage61Config{
			Token:   os.Getenv("GARAGE61_TOKEN"),
			BaseURL: os.Getenv("GARAGE61_BASE_URL"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if c.Garage61.Token == "" {
		return fmt.Errorf("garage61.token is required (set GARAGE61_TOKEN)")
	}
	return nil
}

// GetTool возвращает конфигурацию инструмента по имени.
func (c *AppConfig) GetTool(name string) ToolConfig {
	if c.Tools == nil {
		return ToolConfig{}
	}
	return c.Tools[name]
}

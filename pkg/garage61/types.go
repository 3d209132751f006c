// Модели данных Garage 61 API

package garage61

import "fmt"

// ItemsResponse — стандартная обертка списковых ответов API.
type ItemsResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Car — машина из справочника /cars.
type Car struct {
	ID   int    `json:"id"`
	Name string `json:"name"` // "Porsche 911 GT3 R (992)"
}

// Track — трасса из справочника /tracks.
//
// Одно название может встречаться несколько раз с разными вариантами
// конфигурации (variant): "Grand Prix", "National" и т.д.
type Track struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`    // Базовое название: "Nürburgring"
	Variant string `json:"variant"` // Конфигурация: "Grand Prix" (может быть пустым)
}

// Driver — водитель круга.
type Driver struct {
	Slug      string `json:"slug"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FullName возвращает имя для отображения.
func (d Driver) FullName() string {
	return d.FirstName + " " + d.LastName
}

// Lap — запись круга из /laps.
type Lap struct {
	ID               string  `json:"id"`
	LapTime          float64 `json:"lapTime"` // Время круга в секундах
	LapNumber        int     `json:"lapNumber"`
	StartTime        string  `json:"startTime"`
	Driver           *Driver `json:"driver"`
	Car              Car     `json:"car"`
	Track            Track   `json:"track"`
	Clean            bool    `json:"clean"`
	CanViewTelemetry bool    `json:"canViewTelemetry"`
	SessionType      int     `json:"sessionType"`
}

// DriverName возвращает имя водителя или заглушку, если водитель скрыт.
func (l Lap) DriverName() string {
	if l.Driver == nil {
		return "Unknown"
	}
	return l.Driver.FullName()
}

// FormatLapTime форматирует время круга как M:SS.mmm.
func FormatLapTime(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	mins := int(seconds) / 60
	rest := seconds - float64(mins*60)
	return fmt.Sprintf("%d:%06.3f", mins, rest)
}

// Account — ответ /me, используется для диагностики токена.
type Account struct {
	Slug      string `json:"slug"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LapFilter — параметры запроса /laps.
type LapFilter struct {
	Cars         []int    // Фильтр по ID машин
	Tracks       []int    // Фильтр по ID трасс
	Drivers      []string // "me" = только свои круги; пусто = я + команды
	Limit        int
	Group        string // "none" = все круги, "driver" = личные рекорды
	SeeTelemetry bool   // Только круги с доступной телеметрией
}

// TelemetryChannel — сводка по одному каналу телеметрии.
type TelemetryChannel struct {
	Unit    string  `json:"unit"`
	Samples int     `json:"samples"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
}

// TelemetrySummary — сводная статистика телеметрии круга.
type TelemetrySummary struct {
	Speed    TelemetryChannel `json:"speed"`
	Throttle TelemetryChannel `json:"throttle"`
	Brake    TelemetryChannel `json:"brake"`
}

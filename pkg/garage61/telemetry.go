package garage61

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTelemetryCSV извлекает сводную статистику из CSV телеметрии.
//
// Формат CSV плавает между трассами, поэтому колонки ищутся по
// подстроке в заголовке (speed/throttle/brake). Строки с мусором
// пропускаются, а не валят разбор целиком.
func ParseTelemetryCSV(csvData string) (*TelemetrySummary, error) {
	lines := strings.Split(strings.TrimSpace(csvData), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("invalid telemetry csv: %d lines", len(lines))
	}

	speedIdx, throttleIdx, brakeIdx := -1, -1, -1
	for i, col := range strings.Split(lines[0], ",") {
		switch colLower := strings.ToLower(strings.TrimSpace(col)); {
		case strings.Contains(colLower, "speed"):
			speedIdx = i
		case strings.Contains(colLower, "throttle"):
			throttleIdx = i
		case strings.Contains(colLower, "brake"):
			brakeIdx = i
		}
	}

	var speed, throttle, brake []float64
	for _, line := range lines[1:] {
		values := strings.Split(line, ",")
		speed = appendColumn(speed, values, speedIdx)
		throttle = appendColumn(throttle, values, throttleIdx)
		brake = appendColumn(brake, values, brakeIdx)
	}

	return &TelemetrySummary{
		Speed:    makeChannel(speed, "km/h"),
		Throttle: makeChannel(throttle, "percentage"),
		Brake:    makeChannel(brake, "percentage"),
	}, nil
}

func appendColumn(dst []float64, values []string, idx int) []float64 {
	if idx < 0 || idx >= len(values) {
		return dst
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(values[idx]), 64)
	if err != nil {
		return dst
	}
	return append(dst, v)
}

func makeChannel(values []float64, unit string) TelemetryChannel {
	if len(values) == 0 {
		return TelemetryChannel{Unit: unit}
	}
	ch := TelemetryChannel{
		Unit:    unit,
		Samples: len(values),
		Max:     values[0],
		Min:     values[0],
	}
	for _, v := range values[1:] {
		if v > ch.Max {
			ch.Max = v
		}
		if v < ch.Min {
			ch.Min = v
		}
	}
	return ch
}

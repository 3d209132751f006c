package garage61

import "testing"

// TestParseTelemetryCSV тестирует разбор телеметрии.
func TestParseTelemetryCSV(t *testing.T) {
	csv := `Time,Speed,Throttle,Brake
0.0,120.5,0.80,0.00
0.1,145.2,1.00,0.00
0.2,98.7,0.20,0.95
0.3,110.1,0.50,0.30`

	summary, err := ParseTelemetryCSV(csv)
	if err != nil {
		t.Fatalf("ParseTelemetryCSV failed: %v", err)
	}

	if summary.Speed.Samples != 4 {
		t.Errorf("expected 4 speed samples, got %d", summary.Speed.Samples)
	}
	if summary.Speed.Max != 145.2 {
		t.Errorf("expected max speed 145.2, got %v", summary.Speed.Max)
	}
	if summary.Speed.Min != 98.7 {
		t.Errorf("expected min speed 98.7, got %v", summary.Speed.Min)
	}
	if summary.Throttle.Max != 1.00 {
		t.Errorf("expected max throttle 1.00, got %v", summary.Throttle.Max)
	}
	if summary.Brake.Max != 0.95 {
		t.Errorf("expected max brake 0.95, got %v", summary.Brake.Max)
	}
	if summary.Speed.Unit != "km/h" {
		t.Errorf("expected unit km/h, got %q", summary.Speed.Unit)
	}
}

// TestParseTelemetryCSVFuzzyColumns тестирует поиск колонок по подстроке.
func TestParseTelemetryCSVFuzzyColumns(t *testing.T) {
	csv := `GroundSpeed (km/h),ThrottlePos,BrakePressure
100.0,0.5,0.1
150.0,0.9,0.0`

	summary, err := ParseTelemetryCSV(csv)
	if err != nil {
		t.Fatalf("ParseTelemetryCSV failed: %v", err)
	}

	if summary.Speed.Max != 150.0 {
		t.Errorf("expected max speed 150.0, got %v", summary.Speed.Max)
	}
	if summary.Throttle.Samples != 2 {
		t.Errorf("expected 2 throttle samples, got %d", summary.Throttle.Samples)
	}
}

// TestParseTelemetryCSVSkipsBadRows тестирует пропуск битых строк.
func TestParseTelemetryCSVSkipsBadRows(t *testing.T) {
	csv := `Speed,Throttle,Brake
120.5,0.8,0.0
not-a-number,0.9,0.1
130.0,1.0,0.0
80.0`

	summary, err := ParseTelemetryCSV(csv)
	if err != nil {
		t.Fatalf("ParseTelemetryCSV failed: %v", err)
	}

	if summary.Speed.Samples != 3 {
		t.Errorf("expected 3 speed samples, got %d", summary.Speed.Samples)
	}
	if summary.Throttle.Samples != 3 {
		t.Errorf("expected 3 throttle samples, got %d", summary.Throttle.Samples)
	}
}

// TestParseTelemetryCSVInvalid тестирует ошибку на пустом вводе.
func TestParseTelemetryCSVInvalid(t *testing.T) {
	if _, err := ParseTelemetryCSV(""); err == nil {
		t.Error("expected error for empty csv")
	}
	if _, err := ParseTelemetryCSV("Speed,Throttle"); err == nil {
		t.Error("expected error for header-only csv")
	}
}

// TestParseTelemetryCSVMissingColumns тестирует частичный набор каналов.
func TestParseTelemetryCSVMissingColumns(t *testing.T) {
	csv := `Time,Speed
0.0,100.0
0.1,110.0`

	summary, err := ParseTelemetryCSV(csv)
	if err != nil {
		t.Fatalf("ParseTelemetryCSV failed: %v", err)
	}

	if summary.Speed.Samples != 2 {
		t.Errorf("expected 2 speed samples, got %d", summary.Speed.Samples)
	}
	if summary.Throttle.Samples != 0 {
		t.Errorf("expected 0 throttle samples, got %d", summary.Throttle.Samples)
	}
	if summary.Throttle.Unit != "percentage" {
		t.Errorf("expected unit on empty channel, got %q", summary.Throttle.Unit)
	}
}

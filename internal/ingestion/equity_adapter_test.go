package ingestion

import (
	"encoding/json"
	"testing"
)

func TestAdaptEquityPoints_KeyAliases(t *testing.T) {
	raw := []map[string]interface{}{
		{"date": float64(1704067200000), "value": float64(100)},
		{"day": float64(1704153600000), "equity": float64(110)},
		{"time": float64(1704240000000), "balance": float64(120)},
		{"timestamp": float64(1704326400000), "total_value": float64(130)},
	}

	points := AdaptEquityPoints(raw)
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}

	want := []float64{100, 110, 120, 130}
	for i, p := range points {
		if p.Value == nil || *p.Value != want[i] {
			t.Errorf("point %d: expected value %v, got %v", i, want[i], p.Value)
		}
	}
}

func TestAdaptEquityPoints_PnlAliases(t *testing.T) {
	raw := []map[string]interface{}{
		{"date": float64(1704067200000), "pnlPercentage": float64(5)},
		{"date": float64(1704153600000), "pnl_pct": float64(10)},
		{"date": float64(1704240000000), "pnl_percentage": float64(-3)},
	}

	points := AdaptEquityPoints(raw)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	want := []float64{5, 10, -3}
	for i, p := range points {
		if p.Value != nil {
			t.Errorf("point %d: expected nil value, got %v", i, *p.Value)
		}
		if p.PnlPct == nil || *p.PnlPct != want[i] {
			t.Errorf("point %d: expected pnl %v, got %v", i, want[i], p.PnlPct)
		}
	}
}

func TestAdaptEquityPoints_EpochSecondsScaled(t *testing.T) {
	raw := []map[string]interface{}{
		{"date": float64(1704067200), "value": float64(100)}, // seconds
	}

	points := AdaptEquityPoints(raw)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].TimestampMs != 1704067200000 {
		t.Errorf("expected ms epoch 1704067200000, got %d", points[0].TimestampMs)
	}
}

func TestAdaptEquityPoints_DateStrings(t *testing.T) {
	raw := []map[string]interface{}{
		{"date": "2024-01-01", "value": float64(100)},
		{"date": "2024-01-02T12:00:00Z", "value": float64(105)},
		{"date": "1704240000000", "value": float64(110)},
	}

	points := AdaptEquityPoints(raw)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0].TimestampMs != 1704067200000 {
		t.Errorf("expected 1704067200000, got %d", points[0].TimestampMs)
	}
	if points[1].TimestampMs != 1704196800000 {
		t.Errorf("expected 1704196800000, got %d", points[1].TimestampMs)
	}
	if points[2].TimestampMs != 1704240000000 {
		t.Errorf("expected 1704240000000, got %d", points[2].TimestampMs)
	}
}

func TestAdaptEquityPoints_JSONNumbers(t *testing.T) {
	raw := []map[string]interface{}{
		{"date": json.Number("1704067200000"), "value": json.Number("100.5")},
	}

	points := AdaptEquityPoints(raw)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].Value == nil || *points[0].Value != 100.5 {
		t.Errorf("expected value 100.5, got %v", points[0].Value)
	}
}

func TestAdaptEquityPoints_UnparseableBecomesNil(t *testing.T) {
	raw := []map[string]interface{}{
		{"date": float64(1704067200000), "value": "garbage", "pnl_pct": float64(5)},
	}

	points := AdaptEquityPoints(raw)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].Value != nil {
		t.Errorf("expected nil value for unparseable string, got %v", *points[0].Value)
	}
	if points[0].PnlPct == nil || *points[0].PnlPct != 5 {
		t.Errorf("expected pnl 5, got %v", points[0].PnlPct)
	}
}

func TestAdaptEquityPoints_DropsNoSignalPoints(t *testing.T) {
	raw := []map[string]interface{}{
		{"date": float64(1704067200000)},                              // no numeric at all
		{"date": float64(1704153600000), "value": "n/a"},              // unparseable only
		{"note": "missing timestamp", "value": float64(100)},          // no time key
		{"date": float64(1704240000000), "value": float64(100)},       // usable
		{"date": "not a date at all", "value": float64(50)},           // bad time
		{"date": float64(1704326400000), "pnl_percentage": "also bad"}, // unparseable pnl
	}

	points := AdaptEquityPoints(raw)
	if len(points) != 1 {
		t.Fatalf("expected 1 usable point, got %d", len(points))
	}
	if points[0].TimestampMs != 1704240000000 {
		t.Errorf("wrong point survived: %d", points[0].TimestampMs)
	}
}

func TestAdaptEquityPoints_SortedAscending(t *testing.T) {
	raw := []map[string]interface{}{
		{"date": float64(1704240000000), "value": float64(120)},
		{"date": float64(1704067200000), "value": float64(100)},
		{"date": float64(1704153600000), "value": float64(110)},
	}

	points := AdaptEquityPoints(raw)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i-1].TimestampMs > points[i].TimestampMs {
			t.Fatalf("points not sorted at index %d", i)
		}
	}
}

func TestAdaptEquityPoints_Empty(t *testing.T) {
	if points := AdaptEquityPoints(nil); len(points) != 0 {
		t.Errorf("expected no points, got %d", len(points))
	}
}

package stats

import (
	"strings"
	"testing"

	"github.com/verte-zerg/keytally/internal/model"
)

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	got := MovingAverage(values, 2)
	want := []float64{1, 1.5, 2.5, 3.5, 4.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMovingAverageSmallWindowCopies(t *testing.T) {
	values := []float64{3, 1, 4}
	got := MovingAverage(values, 1)
	for i := range values {
		if got[i] != values[i] {
			t.Fatalf("expected copy, got %v", got)
		}
	}
}

func TestSparkline(t *testing.T) {
	line := Sparkline([]float64{0, 5, 10})
	if len([]rune(line)) != 3 {
		t.Fatalf("expected 3 cells, got %q", line)
	}
	runes := []rune(line)
	if runes[0] != ' ' || runes[2] != '@' {
		t.Fatalf("expected full range, got %q", line)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline for no values")
	}
}

func TestSparklineFlatSeries(t *testing.T) {
	line := Sparkline([]float64{7, 7, 7})
	if line != "   " {
		t.Fatalf("expected flat baseline, got %q", line)
	}
}

func TestDailySeriesReversesToAscending(t *testing.T) {
	days := []model.DailyStat{
		{Date: "2026-08-23", TotalChars: 30},
		{Date: "2026-08-22", TotalChars: 20},
		{Date: "2026-08-21", TotalChars: 10},
	}
	got := DailySeries(days)
	want := []float64{10, 20, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRenderDays(t *testing.T) {
	k := int64(42)
	days := []model.DailyStat{
		{Date: "2026-08-23", ScriptA: 5, ScriptB: 10, TotalChars: 15, TotalKeys: &k},
		{Date: "2026-08-22", ScriptA: 1, ScriptB: 2, TotalChars: 3},
	}
	var b strings.Builder
	if err := RenderDays(&b, days, 0); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "2026-08-23") || !strings.Contains(out, "2026-08-22") {
		t.Fatalf("missing dates in output:\n%s", out)
	}
	if !strings.Contains(out, "42") {
		t.Fatalf("missing key count in output:\n%s", out)
	}
	if !strings.Contains(out, "-") {
		t.Fatalf("missing placeholder for absent keys:\n%s", out)
	}
	if !strings.Contains(out, "chars ") {
		t.Fatalf("missing sparkline line:\n%s", out)
	}
	if strings.Contains(out, "avg") {
		t.Fatalf("unexpected avg line without a window:\n%s", out)
	}
}

func TestRenderDaysMovingAverage(t *testing.T) {
	days := []model.DailyStat{
		{Date: "2026-08-23", TotalChars: 30},
		{Date: "2026-08-22", TotalChars: 20},
		{Date: "2026-08-21", TotalChars: 10},
	}
	var b strings.Builder
	if err := RenderDays(&b, days, 2); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "avg   ") {
		t.Fatalf("missing avg line:\n%s", out)
	}
	// Windowed mean over the last two days: (20+30)/2.
	if !strings.Contains(out, "25.0/day") {
		t.Fatalf("missing windowed rate:\n%s", out)
	}
}

func TestRenderDaysEmpty(t *testing.T) {
	var b strings.Builder
	if err := RenderDays(&b, nil, 7); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(b.String(), "no stats recorded") {
		t.Fatalf("unexpected output: %q", b.String())
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var b strings.Builder
	if err := RenderSummary(&b, model.Summary{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(b.String(), "no stats recorded") {
		t.Fatalf("unexpected output: %q", b.String())
	}
}

func TestFormatTableAlignment(t *testing.T) {
	lines := formatTable(
		[]string{"DATE", "N"},
		[][]string{{"2026-08-23", "5"}, {"2026-08-22", "100"}},
		map[int]bool{1: true},
	)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[1] != "2026-08-23   5" {
		t.Fatalf("unexpected right alignment: %q", lines[1])
	}
	if lines[2] != "2026-08-22 100" {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}

package stats

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/verte-zerg/keytally/internal/model"
)

var dayHeaders = []string{"DATE", "SCRIPT-A", "SCRIPT-B", "CHARS", "KEYS"}

var dayRightAlign = map[int]bool{1: true, 2: true, 3: true, 4: true}

// RenderDays prints a table of daily rows followed by a total_chars
// sparkline when there is more than one row. A window above 1 adds a
// moving-average sparkline with the current windowed rate.
func RenderDays(w io.Writer, days []model.DailyStat, avgWindow int) error {
	if len(days) == 0 {
		_, err := fmt.Fprintln(w, "no stats recorded")
		return err
	}
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{
			d.Date,
			strconv.FormatInt(d.ScriptA, 10),
			strconv.FormatInt(d.ScriptB, 10),
			strconv.FormatInt(d.TotalChars, 10),
			formatKeys(d.TotalKeys),
		})
	}
	for _, line := range formatTable(dayHeaders, rows, dayRightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(days) > 1 {
		series := DailySeries(days)
		if _, err := fmt.Fprintf(w, "chars %s\n", Sparkline(series)); err != nil {
			return err
		}
		if avgWindow > 1 {
			avg := MovingAverage(series, avgWindow)
			if _, err := fmt.Fprintf(w, "avg   %s %.1f/day\n", Sparkline(avg), avg[len(avg)-1]); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderStat prints one daily row with its write timestamps.
func RenderStat(w io.Writer, d model.DailyStat) error {
	lines := []string{
		fmt.Sprintf("date:       %s", d.Date),
		fmt.Sprintf("script-a:   %d", d.ScriptA),
		fmt.Sprintf("script-b:   %d", d.ScriptB),
		fmt.Sprintf("chars:      %d", d.TotalChars),
		fmt.Sprintf("keys:       %s", formatKeys(d.TotalKeys)),
		fmt.Sprintf("created at: %s", d.CreatedAt.Local().Format(time.DateTime)),
		fmt.Sprintf("updated at: %s", d.UpdatedAt.Local().Format(time.DateTime)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary prints the all-time aggregate.
func RenderSummary(w io.Writer, s model.Summary) error {
	if s.Days == 0 {
		_, err := fmt.Fprintln(w, "no stats recorded")
		return err
	}
	lines := []string{
		fmt.Sprintf("days:           %d", s.Days),
		fmt.Sprintf("first date:     %s", s.FirstDate),
		fmt.Sprintf("last date:      %s", s.LastDate),
		fmt.Sprintf("total script-a: %d", s.TotalScriptA),
		fmt.Sprintf("total script-b: %d", s.TotalScriptB),
		fmt.Sprintf("total chars:    %d", s.TotalChars),
		fmt.Sprintf("total keys:     %d", s.TotalKeys),
		fmt.Sprintf("avg script-a:   %.1f/day", s.AvgScriptA),
		fmt.Sprintf("avg script-b:   %.1f/day", s.AvgScriptB),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSnapshot prints the live counters of a tracking session.
func RenderSnapshot(w io.Writer, snap model.Snapshot) error {
	lines := []string{
		fmt.Sprintf("day:       %s", snap.Day),
		fmt.Sprintf("script-a:  %d", snap.ScriptA),
		fmt.Sprintf("script-b:  %d", snap.ScriptB),
		fmt.Sprintf("chars:     %d", snap.TotalChars),
		fmt.Sprintf("keys:      %d", snap.TotalKeys),
	}
	if snap.Listening {
		lines = append(lines, fmt.Sprintf("uptime:    %s", snap.Uptime.Round(time.Second)))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatKeys(keys *int64) string {
	if keys == nil {
		return "-"
	}
	return strconv.FormatInt(*keys, 10)
}

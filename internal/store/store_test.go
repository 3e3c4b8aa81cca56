package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "keytally.db"), slog.Default())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func keys(n int64) *int64 {
	return &n
}

func TestUpsertRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.Upsert(ctx, "2026-08-23", 100, 200, keys(350)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	stat, err := st.Get(ctx, "2026-08-23")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stat == nil {
		t.Fatalf("expected row")
	}
	if stat.ScriptA != 100 || stat.ScriptB != 200 || stat.TotalChars != 300 {
		t.Fatalf("unexpected row: %+v", stat)
	}
	if stat.TotalKeys == nil || *stat.TotalKeys != 350 {
		t.Fatalf("unexpected total keys: %+v", stat.TotalKeys)
	}
	if stat.CreatedAt.IsZero() || stat.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps, got %+v", stat)
	}
}

func TestUpsertReplacesNotAccumulates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.Upsert(ctx, "2026-08-23", 5, 7, nil); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := st.Upsert(ctx, "2026-08-23", 5, 7, nil); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	stat, err := st.Get(ctx, "2026-08-23")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stat.TotalChars != 12 {
		t.Fatalf("expected replace semantics (total 12), got %d", stat.TotalChars)
	}
	if stat.TotalKeys != nil {
		t.Fatalf("expected nil total keys, got %d", *stat.TotalKeys)
	}
}

func TestUpsertPreservesCreatedAt(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.Upsert(ctx, "2026-08-23", 1, 1, nil); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	first, err := st.Get(ctx, "2026-08-23")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := st.Upsert(ctx, "2026-08-23", 2, 2, keys(4)); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	second, err := st.Get(ctx, "2026-08-23")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at changed: %s -> %s", first.CreatedAt, second.CreatedAt)
	}
	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Fatalf("updated_at went backwards: %s -> %s", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestGetAbsentDate(t *testing.T) {
	st := openTestStore(t)
	stat, err := st.Get(context.Background(), "2099-01-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stat != nil {
		t.Fatalf("expected nil for absent date, got %+v", stat)
	}
}

func seedDays(t *testing.T, st *Store, dates ...string) {
	t.Helper()
	ctx := context.Background()
	for i, date := range dates {
		if err := st.Upsert(ctx, date, int64(i+1)*10, int64(i+1)*20, nil); err != nil {
			t.Fatalf("seed %s: %v", date, err)
		}
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	st := openTestStore(t)
	seedDays(t, st, "2026-08-20", "2026-08-23", "2026-08-21", "2026-08-22")

	days, err := st.Recent(context.Background(), 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(days))
	}
	want := []string{"2026-08-23", "2026-08-22", "2026-08-21"}
	for i, d := range days {
		if d.Date != want[i] {
			t.Fatalf("row %d: got %s, want %s", i, d.Date, want[i])
		}
	}
}

func TestRecentFewerRowsThanRequested(t *testing.T) {
	st := openTestStore(t)
	seedDays(t, st, "2026-08-23")

	days, err := st.Recent(context.Background(), 7)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 row, got %d", len(days))
	}
}

func TestAllDescending(t *testing.T) {
	st := openTestStore(t)
	seedDays(t, st, "2026-08-21", "2026-08-23", "2026-08-22")

	days, err := st.All(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(days))
	}
	for i := 1; i < len(days); i++ {
		if days[i].Date >= days[i-1].Date {
			t.Fatalf("rows not descending: %s before %s", days[i-1].Date, days[i].Date)
		}
	}
}

func TestDeleteMissingRowIsFailureNotError(t *testing.T) {
	st := openTestStore(t)
	deleted, err := st.Delete(context.Background(), "2099-01-01")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted {
		t.Fatalf("expected failure for missing row")
	}
}

func TestDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	seedDays(t, st, "2026-08-23")

	deleted, err := st.Delete(ctx, "2026-08-23")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatalf("expected delete to succeed")
	}
	stat, err := st.Get(ctx, "2026-08-23")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stat != nil {
		t.Fatalf("expected row gone, got %+v", stat)
	}
}

func TestSummaryEmptyStore(t *testing.T) {
	st := openTestStore(t)
	sum, err := st.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Days != 0 || sum.TotalChars != 0 || sum.TotalKeys != 0 {
		t.Fatalf("expected zero summary, got %+v", sum)
	}
	if sum.FirstDate != "" || sum.LastDate != "" {
		t.Fatalf("expected absent dates, got %q..%q", sum.FirstDate, sum.LastDate)
	}
}

func TestSummary(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.Upsert(ctx, "2026-08-22", 10, 20, keys(35)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.Upsert(ctx, "2026-08-23", 15, 25, keys(45)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	sum, err := st.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Days != 2 {
		t.Fatalf("expected 2 days, got %d", sum.Days)
	}
	if sum.TotalScriptA != 25 || sum.TotalScriptB != 45 || sum.TotalChars != 70 {
		t.Fatalf("unexpected totals: %+v", sum)
	}
	if sum.TotalKeys != 80 {
		t.Fatalf("expected 80 keys, got %d", sum.TotalKeys)
	}
	if sum.AvgScriptA != 12.5 || sum.AvgScriptB != 22.5 {
		t.Fatalf("unexpected averages: %+v", sum)
	}
	if sum.FirstDate != "2026-08-22" || sum.LastDate != "2026-08-23" {
		t.Fatalf("unexpected date span: %q..%q", sum.FirstDate, sum.LastDate)
	}
}

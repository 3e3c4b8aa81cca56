package classify

import "testing"

func TestRuneCategories(t *testing.T) {
	c := Default()
	cases := []struct {
		r    rune
		want Category
	}{
		{'你', ScriptA},
		{'中', ScriptA},
		{0x4E00, ScriptA},
		{0x9FFF, ScriptA},
		{'h', ScriptB},
		{'A', ScriptB},
		{'z', ScriptB},
		{'1', Other},
		{'@', Other},
		{' ', Other},
		{'\n', Other},
		{'é', Other},
	}
	for _, tc := range cases {
		if got := c.Rune(tc.r); got != tc.want {
			t.Errorf("Rune(%q) = %v, want %v", tc.r, got, tc.want)
		}
	}
}

func TestStringDegradesToOther(t *testing.T) {
	c := Default()
	cases := []string{"", "ab", "你好", "\xff"}
	for _, s := range cases {
		if got := c.String(s); got != Other {
			t.Errorf("String(%q) = %v, want Other", s, got)
		}
	}
	if got := c.String("你"); got != ScriptA {
		t.Errorf("String(%q) = %v, want ScriptA", "你", got)
	}
}

func TestTextCounts(t *testing.T) {
	c := Default()
	counts := c.Text("hello你好123")
	if counts.ScriptA != 2 || counts.ScriptB != 5 || counts.Other != 3 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if counts.Total != 10 {
		t.Fatalf("expected total 10, got %d", counts.Total)
	}
}

func TestTextTotalInvariant(t *testing.T) {
	c := Default()
	texts := []string{
		"",
		"hello world",
		"你好世界",
		"print('Hello, 世界!')",
		"mixed 你 h 1 @\t\n",
	}
	for _, text := range texts {
		counts := c.Text(text)
		if counts.Total != counts.ScriptA+counts.ScriptB+counts.Other {
			t.Errorf("Text(%q): total %d != sum of parts %+v", text, counts.Total, counts)
		}
		if counts.Total != int64(len([]rune(text))) {
			t.Errorf("Text(%q): total %d != rune length %d", text, counts.Total, len([]rune(text)))
		}
	}
}

func TestTextEmpty(t *testing.T) {
	counts := Default().Text("")
	if counts != (TextCounts{}) {
		t.Fatalf("expected zero counts, got %+v", counts)
	}
}

func TestCustomRanges(t *testing.T) {
	c := New(
		[]RuneRange{{Lo: 'а', Hi: 'я'}},
		[]RuneRange{{Lo: '0', Hi: '9'}},
	)
	if got := c.Rune('ф'); got != ScriptA {
		t.Fatalf("expected ScriptA, got %v", got)
	}
	if got := c.Rune('7'); got != ScriptB {
		t.Fatalf("expected ScriptB, got %v", got)
	}
	if got := c.Rune('h'); got != Other {
		t.Fatalf("expected Other, got %v", got)
	}
}

func TestCategoryString(t *testing.T) {
	cases := map[Category]string{
		ScriptA:      "script-a",
		ScriptB:      "script-b",
		Other:        "other",
		Category(42): "other",
	}
	for cat, want := range cases {
		if got := cat.String(); got != want {
			t.Errorf("Category(%d).String() = %q, want %q", cat, got, want)
		}
	}
}

// Package classify maps input characters onto script categories.
package classify

import "unicode/utf8"

// Category is the script bucket a character falls into.
type Category int

// Categories, in counting order. Other is the zero value so that any
// unclassifiable input degrades to it.
const (
	Other Category = iota
	ScriptA
	ScriptB
)

// String returns the category name used in logs and metric labels.
func (c Category) String() string {
	switch c {
	case ScriptA:
		return "script-a"
	case ScriptB:
		return "script-b"
	default:
		return "other"
	}
}

// RuneRange is an inclusive code-point interval.
type RuneRange struct {
	Lo rune
	Hi rune
}

func (r RuneRange) contains(c rune) bool {
	return c >= r.Lo && c <= r.Hi
}

// TextCounts holds per-category totals for a piece of text.
// Total always equals ScriptA + ScriptB + Other.
type TextCounts struct {
	ScriptA int64
	ScriptB int64
	Other   int64
	Total   int64
}

// Classifier classifies runes against configurable script ranges.
// The zero value classifies everything as Other; use New or Default.
type Classifier struct {
	scriptA []RuneRange
	scriptB []RuneRange
}

// Default script ranges: CJK Unified Ideographs and ASCII letters.
var (
	DefaultScriptA = []RuneRange{{Lo: 0x4E00, Hi: 0x9FFF}}
	DefaultScriptB = []RuneRange{{Lo: 'A', Hi: 'Z'}, {Lo: 'a', Hi: 'z'}}
)

// New builds a classifier from explicit ranges. Nil slices fall back to
// the defaults.
func New(scriptA, scriptB []RuneRange) *Classifier {
	if scriptA == nil {
		scriptA = DefaultScriptA
	}
	if scriptB == nil {
		scriptB = DefaultScriptB
	}
	return &Classifier{scriptA: scriptA, scriptB: scriptB}
}

// Default returns a classifier with the default script ranges.
func Default() *Classifier {
	return New(nil, nil)
}

// Rune classifies a single rune. ScriptA wins over ScriptB when the
// configured ranges overlap.
func (c *Classifier) Rune(r rune) Category {
	for _, rr := range c.scriptA {
		if rr.contains(r) {
			return ScriptA
		}
	}
	for _, rr := range c.scriptB {
		if rr.contains(r) {
			return ScriptB
		}
	}
	return Other
}

// String classifies string input. Anything that is not exactly one rune
// (empty input, multi-character input, invalid UTF-8) is Other.
func (c *Classifier) String(s string) Category {
	if utf8.RuneCountInString(s) != 1 {
		return Other
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return Other
	}
	return c.Rune(r)
}

// Text classifies every rune of text and sums the counts. Empty text
// yields the zero TextCounts.
func (c *Classifier) Text(text string) TextCounts {
	var counts TextCounts
	for _, r := range text {
		switch c.Rune(r) {
		case ScriptA:
			counts.ScriptA++
		case ScriptB:
			counts.ScriptB++
		default:
			counts.Other++
		}
		counts.Total++
	}
	return counts
}

package classify

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseRanges parses a comma-separated list of inclusive rune ranges from
// a config string. Each range is "lo-hi" or a single endpoint; endpoints
// are either a literal character or a U+XXXX code point.
//
//	"U+4E00-U+9FFF"
//	"A-Z,a-z"
//	"0-9,_"
func ParseRanges(spec string) ([]RuneRange, error) {
	var ranges []RuneRange
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rr, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, rr)
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("empty range spec %q", spec)
	}
	return ranges, nil
}

func parseRange(part string) (RuneRange, error) {
	lo, rest, err := parseEndpoint(part)
	if err != nil {
		return RuneRange{}, fmt.Errorf("range %q: %w", part, err)
	}
	if rest == "" {
		return RuneRange{Lo: lo, Hi: lo}, nil
	}
	rest, ok := strings.CutPrefix(rest, "-")
	if !ok {
		return RuneRange{}, fmt.Errorf("range %q: expected '-' separator", part)
	}
	hi, rest, err := parseEndpoint(rest)
	if err != nil {
		return RuneRange{}, fmt.Errorf("range %q: %w", part, err)
	}
	if rest != "" {
		return RuneRange{}, fmt.Errorf("range %q: trailing %q", part, rest)
	}
	if hi < lo {
		return RuneRange{}, fmt.Errorf("range %q: upper bound below lower bound", part)
	}
	return RuneRange{Lo: lo, Hi: hi}, nil
}

// parseEndpoint consumes one endpoint from the front of s and returns the
// remainder.
func parseEndpoint(s string) (rune, string, error) {
	if rest, ok := cutCodePointPrefix(s); ok {
		hex := rest
		if i := strings.IndexByte(rest, '-'); i >= 0 {
			hex, rest = rest[:i], rest[i:]
		} else {
			rest = ""
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || n > utf8.MaxRune {
			return 0, "", fmt.Errorf("invalid code point %q", "U+"+hex)
		}
		return rune(n), rest, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError && size == 1 {
		return 0, "", fmt.Errorf("invalid endpoint")
	}
	return r, s[size:], nil
}

func cutCodePointPrefix(s string) (string, bool) {
	if rest, ok := strings.CutPrefix(s, "U+"); ok {
		return rest, true
	}
	if rest, ok := strings.CutPrefix(s, "u+"); ok {
		return rest, true
	}
	return "", false
}

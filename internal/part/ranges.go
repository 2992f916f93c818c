package part

import "strings"

// Range is a 0-based inclusive line range.
type Range struct {
	Start int
	End   int
}

// DeriveRanges re-derives the captured line range from a part's output field.
// The rendered block is self-describing: every content row starts with a
// 1-based line number, a pipe, and an optional single space, so no separate
// range field needs to be persisted or kept in sync. Ranges stay correct for
// parts authored by other writers as long as they use the same convention.
//
// All matched line numbers collapse into a single min..max range; a block
// with no numbered rows yields no ranges.
func DeriveRanges(output string) []Range {
	minLine, maxLine := 0, 0
	found := false
	for _, line := range strings.Split(output, "\n") {
		n, ok := parseLineNumber(line)
		if !ok {
			continue
		}
		if !found || n < minLine {
			minLine = n
		}
		if !found || n > maxLine {
			maxLine = n
		}
		found = true
	}
	if !found {
		return nil
	}
	return []Range{{Start: minLine - 1, End: maxLine - 1}}
}

// parseLineNumber matches "digits, pipe, optional single space" at the start
// of a rendered row and returns the 1-based source line number.
func parseLineNumber(line string) (int, bool) {
	i := 0
	n := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		n = n*10 + int(line[i]-'0')
		i++
	}
	if i == 0 || i >= len(line) || line[i] != '|' {
		return 0, false
	}
	return n, true
}

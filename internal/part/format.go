package part

import (
	"fmt"
	"strings"
)

// PreviewMaxChars bounds the preview field. Fixed by the wire contract.
const PreviewMaxChars = 1000

// Formatted is the rendered payload of a capture.
type Formatted struct {
	Output    string
	Preview   string
	Truncated bool
	LineCount int
}

// Position is a 0-based line/column location in a document.
type Position struct {
	Line int
	Col  int
}

// Selection is a half-open cursor range over a document, end-inclusive at the
// line level after the trailing-newline adjustment applied by FormatSelection.
type Selection struct {
	Start Position
	End   Position
}

// FormatFile renders an entire document as a self-describing line-numbered
// block. Truncated is set when the raw body exceeds the preview cap, meaning
// the preview is not the whole file.
func FormatFile(content string) Formatted {
	lines := splitLines(content)
	return Formatted{
		Output:    envelope(numberLines(lines, 0), fmt.Sprintf("(End of file - total %d lines)", len(lines))),
		Preview:   preview(content),
		Truncated: exceedsPreview(content),
		LineCount: len(lines),
	}
}

// FormatSelection renders the selected line range of a document. The second
// return is false when the selection collapses to nothing after the boundary
// adjustment, in which case the capture is a no-op.
//
// Boundary policy: a selection whose end sits at column 0 of a line strictly
// after the start line ends on the previous line, so a trailing-newline-
// inclusive sweep does not pull in one extra blank-looking line.
func FormatSelection(content string, sel Selection) (Formatted, bool) {
	lines := splitLines(content)

	start := sel.Start.Line
	end := sel.End.Line
	if sel.End.Col == 0 && end > start {
		end--
	}
	if start < 0 {
		start = 0
	}
	if end > len(lines)-1 {
		end = len(lines) - 1
	}
	if end < start {
		return Formatted{}, false
	}

	selected := lines[start : end+1]
	body := strings.Join(selected, "\n")

	return Formatted{
		Output: envelope(numberLines(selected, start),
			fmt.Sprintf("(Excerpt lines %d-%d of total %d lines)", start+1, end+1, len(lines))),
		Preview:   preview(body),
		Truncated: !spansWholeDocument(content, sel),
		LineCount: len(selected),
	}, true
}

// spansWholeDocument reports whether sel covers the document exactly, from
// (0,0) to the true end. Only such a selection counts as a full-file capture.
func spansWholeDocument(content string, sel Selection) bool {
	if sel.Start.Line != 0 || sel.Start.Col != 0 {
		return false
	}
	raw := strings.Split(content, "\n")
	lastLine := len(raw) - 1
	lastCol := len(raw[lastLine])
	return sel.End.Line == lastLine && sel.End.Col == lastCol
}

// splitLines splits on line terminators. A single trailing newline does not
// produce a phantom empty final line.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// numberLines renders lines as "NNNNN| text" rows with 1-based source line
// numbers starting at offset.
func numberLines(lines []string, offset int) string {
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%05d| %s", offset+i+1, line)
	}
	return sb.String()
}

// envelope wraps a numbered body in the fixed <file> frame.
func envelope(body, footer string) string {
	return "<file>\n" + body + "\n" + footer + "\n</file>"
}

// preview returns the first PreviewMaxChars characters of the raw body.
func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= PreviewMaxChars {
		return body
	}
	return string(runes[:PreviewMaxChars])
}

// exceedsPreview reports whether body does not fit in the preview cap.
func exceedsPreview(body string) bool {
	return len([]rune(body)) > PreviewMaxChars
}

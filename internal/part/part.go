// Package part defines the on-disk part record and the self-describing
// line-numbered text format it carries.
package part

import "encoding/json"

// Record field values fixed by the wire contract.
const (
	TypeTool        = "tool"
	ToolRead        = "read"
	StatusCompleted = "completed"
)

// Part is one captured context record. Field names are the wire contract and
// must round-trip bit-exact for interop with external writers.
type Part struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionID"`
	MessageID string `json:"messageID"`
	CallID    string `json:"callID"`
	Type      string `json:"type"`
	Tool      string `json:"tool"`
	State     State  `json:"state"`
}

// State holds the capture payload of a part.
type State struct {
	Status   string   `json:"status"`
	Input    Input    `json:"input"`
	Output   string   `json:"output"`
	Title    string   `json:"title"`
	Metadata Metadata `json:"metadata"`
	Time     Timespan `json:"time"`
}

// Input identifies the captured file.
type Input struct {
	FilePath string `json:"filePath"`
}

// Metadata carries the bounded preview and the full-file flag.
// Truncated means "not a full-file capture": it is set both for previews that
// were length-capped and for deliberate sub-range selections.
type Metadata struct {
	Preview   string `json:"preview"`
	Truncated bool   `json:"truncated"`
}

// Timespan is the creation timestamp pair in epoch milliseconds.
// Start and End are always equal at creation.
type Timespan struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// FilePath returns the absolute path of the captured file.
func (p *Part) FilePath() string {
	return p.State.Input.FilePath
}

// Decode parses a raw record into a Part. The second return is false when the
// record fails shape validation (id present but not a string, or
// state.input.filePath missing or not a string); such records are dropped
// individually rather than invalidating the containing document. A record
// with no id at all is valid; reconciliation assigns one.
func Decode(raw json.RawMessage) (Part, bool) {
	var p Part
	if err := json.Unmarshal(raw, &p); err != nil {
		return Part{}, false
	}
	if p.State.Input.FilePath == "" {
		return Part{}, false
	}
	return p, true
}

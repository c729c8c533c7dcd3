package main

// History actions.
const (
	ActionMove    = "move"
	ActionPass    = "pass"
	ActionConvert = "convert"
)

// HistoryEntry records one committed action.
type HistoryEntry struct {
	Turn     int    `json:"turn"`
	Seat     int    `json:"seat"`
	Action   string `json:"action"`
	From     *Cell  `json:"from,omitempty"`
	To       *Cell  `json:"to,omitempty"`
	Piece    string `json:"piece,omitempty"`
	Captured string `json:"captured,omitempty"`
	Note     string `json:"note,omitempty"`
}

type MoveHistory struct {
	entries []HistoryEntry
}

func (h *MoveHistory) Clear() {
	h.entries = nil
}

func (h *MoveHistory) Push(entry HistoryEntry) {
	h.entries = append(h.entries, entry)
}

func (h MoveHistory) All() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}

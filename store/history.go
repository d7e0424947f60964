package store

import (
	"time"

	"github.com/google/uuid"

	"nativo/log"
)

// HistoryEntry is one completed translation, newest first in storage.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Original   string    `json:"original"`
	Translated string    `json:"translated"`
	Timestamp  time.Time `json:"timestamp"`
	From       string    `json:"from"` // language label
	To         string    `json:"to"`
	Type       string    `json:"type"` // "voice" | "text" | "photo"
	AudioURL   string    `json:"audioUrl,omitempty"`
}

// History reads the stored list; unreadable history yields an empty list.
func History(kv KV) []HistoryEntry {
	var entries []HistoryEntry
	if _, err := getJSON(kv, HistoryKey, &entries); err != nil {
		log.Warnf("failed to load history: %v", err)
		return nil
	}
	return entries
}

// AddHistory prepends an entry. Best-effort: failures are logged, never
// propagated to the flow that produced the translation.
func AddHistory(kv KV, e HistoryEntry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	entries := append([]HistoryEntry{e}, History(kv)...)
	if err := setJSON(kv, HistoryKey, entries); err != nil {
		log.Warnf("failed to add history entry: %v", err)
	}
}

func ClearHistory(kv KV) {
	if err := kv.Delete(HistoryKey); err != nil {
		log.Warnf("failed to clear history: %v", err)
	}
}

package session

import "nativo/quota"

// Side identifies one of the two recording lanes.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Result is a finished translation as shown to the user.
type Result struct {
	Original    string
	Translated  string
	TTSAudioURL string
	From        string // display label of the source language
	To          string // display label of the target language
	Kind        string // "voice", "text" or "photo"
}

// EventSink abstracts the display layer so the session logic never
// touches the TUI directly. All callbacks fire on the caller's
// goroutine and must return quickly.
type EventSink interface {
	RecordingStart(side Side)
	RecordingTick(side Side, remaining int)
	RecordingStop(side Side)
	Translation(res Result)
	QuotaChanged(snap quota.Snapshot)
	QuotaExhausted()
	Notice(text string)
	Error(text string)
}

// NopSink discards every event. Useful as a default and in tests that
// don't care about display callbacks.
type NopSink struct{}

func (NopSink) RecordingStart(Side)         {}
func (NopSink) RecordingTick(Side, int)     {}
func (NopSink) RecordingStop(Side)          {}
func (NopSink) Translation(Result)          {}
func (NopSink) QuotaChanged(quota.Snapshot) {}
func (NopSink) QuotaExhausted()             {}
func (NopSink) Notice(string)               {}
func (NopSink) Error(string)                {}

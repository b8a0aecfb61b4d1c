package orchestrator

import (
	"sync"
	"time"
)

type TranscriptEntryType string

const (
	TranscriptHuman          TranscriptEntryType = "HUMAN"
	TranscriptBot            TranscriptEntryType = "BOT"
	TranscriptActionStart    TranscriptEntryType = "ACTION_START"
	TranscriptActionFinish   TranscriptEntryType = "ACTION_FINISH"
)

type TranscriptEntry struct {
	Type      TranscriptEntryType
	Text      string
	Timestamp time.Time
}

// Transcript is the shared, append-only conversation log. It has exactly
// one logical writer (the agent's turn handler and the action dispatcher
// share it) so human entries are always appended before any bot response
// derived from them — callers must call AddHuman before kicking off the
// agent turn that responds to it, never after.
type Transcript struct {
	mu      sync.Mutex
	entries []TranscriptEntry
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) AddHuman(text string) {
	t.append(TranscriptHuman, text)
}

func (t *Transcript) AddBot(text string) {
	t.append(TranscriptBot, text)
}

func (t *Transcript) AddActionStart(actionName string) {
	t.append(TranscriptActionStart, actionName)
}

func (t *Transcript) AddActionFinish(actionName string) {
	t.append(TranscriptActionFinish, actionName)
}

func (t *Transcript) append(kind TranscriptEntryType, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TranscriptEntry{Type: kind, Text: text, Timestamp: time.Now()})
}

// Entries returns a copy of the transcript so far, safe for the caller to
// range over without holding any lock.
func (t *Transcript) Entries() []TranscriptEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TranscriptEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

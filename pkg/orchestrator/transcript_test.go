package orchestrator

import "testing"

func TestTranscript_CausalOrdering(t *testing.T) {
	tr := NewTranscript()
	tr.AddHuman("hello there")
	tr.AddBot("hi, how can I help?")

	entries := tr.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Type != TranscriptHuman {
		t.Fatalf("expected first entry to be human, got %v", entries[0].Type)
	}
	if entries[1].Type != TranscriptBot {
		t.Fatalf("expected second entry to be bot, got %v", entries[1].Type)
	}
	if !entries[1].Timestamp.After(entries[0].Timestamp) && !entries[1].Timestamp.Equal(entries[0].Timestamp) {
		t.Fatal("expected bot entry to be timestamped at or after the human entry that caused it")
	}
}

func TestTranscript_ActionLifecycle(t *testing.T) {
	tr := NewTranscript()
	tr.AddActionStart("check_order_status")
	tr.AddActionFinish("check_order_status")

	entries := tr.Entries()
	if len(entries) != 2 || entries[0].Type != TranscriptActionStart || entries[1].Type != TranscriptActionFinish {
		t.Fatalf("unexpected action lifecycle entries: %+v", entries)
	}
}

func TestTranscript_EntriesReturnsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.AddHuman("one")

	entries := tr.Entries()
	entries[0].Text = "mutated"

	if tr.Entries()[0].Text != "one" {
		t.Fatal("mutating a returned entries slice should not affect the transcript")
	}
}

package playername

import (
	"testing"
	"time"
)

func TestLatest_PicksGreatestLastUsed(t *testing.T) {
	t.Parallel()

	// Records arrive in ingestion order, not chronological order: a backfill
	// can replay an older window after a newer one was already seen.
	records := []Record{
		{PlayerID: "0123456789abcdef", PlayerName: "woomy", LastUsed: time.Date(2019, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{PlayerID: "0123456789abcdef", PlayerName: "ngyes", LastUsed: time.Date(2018, time.June, 1, 0, 0, 0, 0, time.UTC)},
	}

	latest, ok := Latest(records)
	if !ok {
		t.Fatal("expected a latest record")
	}
	if latest.PlayerName != "woomy" {
		t.Fatalf("latest name = %q, want %q", latest.PlayerName, "woomy")
	}
}

func TestLatest_BreaksTiesLexicographically(t *testing.T) {
	t.Parallel()

	seen := time.Date(2019, time.February, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{PlayerID: "0123456789abcdef", PlayerName: "veemo", LastUsed: seen},
		{PlayerID: "0123456789abcdef", PlayerName: "ngyes", LastUsed: seen},
		{PlayerID: "0123456789abcdef", PlayerName: "woomy", LastUsed: seen},
	}

	latest, ok := Latest(records)
	if !ok {
		t.Fatal("expected a latest record")
	}
	if latest.PlayerName != "ngyes" {
		t.Fatalf("latest name = %q, want the lexicographically smallest %q", latest.PlayerName, "ngyes")
	}
}

func TestLatest_EmptyInput(t *testing.T) {
	t.Parallel()

	if _, ok := Latest(nil); ok {
		t.Fatal("no records means no latest name")
	}
}

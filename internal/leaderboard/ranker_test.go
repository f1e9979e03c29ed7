package leaderboard

import (
	"testing"
	"time"
)

func TestRankOrdering(t *testing.T) {
	base := time.Date(2026, 3, 9, 12, 0, 0, 0, time.Local)
	standings := []Standing{
		{UserUUID: "cccc", Points: 100, LastScoredAt: base},
		{UserUUID: "aaaa", Points: 300, LastScoredAt: base.Add(2 * time.Hour)},
		{UserUUID: "bbbb", Points: 200, LastScoredAt: base.Add(time.Hour)},
	}

	entries := Rank(standings)
	wantOrder := []string{"aaaa", "bbbb", "cccc"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("len(entries) = %d; want %d", len(entries), len(wantOrder))
	}
	for i, want := range wantOrder {
		if entries[i].UserUUID != want {
			t.Errorf("entries[%d].UserUUID = %s; want %s", i, entries[i].UserUUID, want)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("entries[%d].Rank = %d; want %d", i, entries[i].Rank, i+1)
		}
	}
}

func TestRankTiebreakEarlierScorerFirst(t *testing.T) {
	base := time.Date(2026, 3, 9, 12, 0, 0, 0, time.Local)
	standings := []Standing{
		{UserUUID: "late", Points: 100, LastScoredAt: base.Add(time.Hour)},
		{UserUUID: "early", Points: 100, LastScoredAt: base},
	}

	entries := Rank(standings)
	if entries[0].UserUUID != "early" || entries[1].UserUUID != "late" {
		t.Errorf("same points should rank earlier scorer first, got %s then %s",
			entries[0].UserUUID, entries[1].UserUUID)
	}
}

func TestRankTiebreakUUIDLexical(t *testing.T) {
	ts := time.Date(2026, 3, 9, 12, 0, 0, 0, time.Local)
	standings := []Standing{
		{UserUUID: "bbbb", Points: 100, LastScoredAt: ts},
		{UserUUID: "aaaa", Points: 100, LastScoredAt: ts},
	}

	entries := Rank(standings)
	if entries[0].UserUUID != "aaaa" || entries[1].UserUUID != "bbbb" {
		t.Errorf("identical points and time should fall back to UUID order, got %s then %s",
			entries[0].UserUUID, entries[1].UserUUID)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	ts := time.Date(2026, 3, 9, 12, 0, 0, 0, time.Local)
	standings := []Standing{
		{UserUUID: "low", Points: 10, LastScoredAt: ts},
		{UserUUID: "high", Points: 90, LastScoredAt: ts},
	}

	Rank(standings)
	if standings[0].UserUUID != "low" || standings[1].UserUUID != "high" {
		t.Errorf("input slice was reordered: %s, %s", standings[0].UserUUID, standings[1].UserUUID)
	}
}

func TestRankEmpty(t *testing.T) {
	if entries := Rank(nil); len(entries) != 0 {
		t.Errorf("len(entries) = %d for empty input; want 0", len(entries))
	}
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		raw  string
		want Scope
		ok   bool
	}{
		{"alltime", ScopeAllTime, true},
		{"weekly", ScopeWeekly, true},
		{"friends", ScopeFriends, true},
		{"monthly", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseScope(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseScope(%q) = (%v, %v); want (%v, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

package app

import (
	"testing"
	"time"

	"this-or-that/internal/domain"
)

func TestBuildLeaderboardSharesRankOnTies(t *testing.T) {
	q1 := domain.Question{ID: "q1", CorrectAnswer: domain.ChoiceMom}
	q2 := domain.Question{ID: "q2", CorrectAnswer: domain.ChoiceDad}
	players := []domain.Player{
		{ID: "p1", FirstName: "Ann"},
		{ID: "p2", FirstName: "Bob"},
		{ID: "p3", FirstName: "Cat"},
		{ID: "p4", FirstName: "Dan"},
	}
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	answer := func(player, question, text string, offset int) domain.Answer {
		qid := question
		return domain.Answer{PlayerID: player, QuestionID: &qid, Text: text, CreatedAt: base.Add(time.Duration(offset) * time.Second)}
	}
	answers := []domain.Answer{
		answer("p1", "q1", domain.OptionA, 0),
		answer("p2", "q1", domain.OptionA, 1),
		answer("p2", "q2", domain.OptionB, 2),
		answer("p3", "q1", domain.OptionA, 3),
		answer("p3", "q2", domain.OptionB, 4),
	}

	board := BuildLeaderboard(domain.Game{ID: "g1", Slug: "shower"}, []domain.Question{q1, q2}, players, answers, base)

	want := []struct {
		id    string
		score int
		rank  int
	}{{"p2", 2, 1}, {"p3", 2, 1}, {"p1", 1, 3}, {"p4", 0, 4}}
	if len(board.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(board.Entries))
	}
	for i, w := range want {
		e := board.Entries[i]
		if e.PlayerID != w.id || e.Score != w.score || e.Rank != w.rank {
			t.Fatalf("entry %d: expected %+v, got %+v", i, w, e)
		}
	}
	if board.Questions != 2 {
		t.Fatalf("expected 2 questions, got %d", board.Questions)
	}
}

func TestLatestAnswersKeepsLaterRowOnEqualTime(t *testing.T) {
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	qid := "q1"
	latest := LatestAnswers([]domain.Answer{
		{PlayerID: "p1", QuestionID: &qid, Text: domain.OptionA, CreatedAt: at},
		{PlayerID: "p1", QuestionID: &qid, Text: domain.OptionB, CreatedAt: at},
	})
	if latest["p1"]["q1"].Text != domain.OptionB {
		t.Fatalf("expected later row to win, got %q", latest["p1"]["q1"].Text)
	}
}

func TestTiebreakerResults(t *testing.T) {
	expected := 250.0
	game := domain.Game{TiebreakerEnabled: true, TiebreakerAnswer: &expected}
	latest := map[string]map[string]domain.Answer{
		"p1": {domain.TiebreakerKey: {Text: "250"}},
		"p2": {domain.TiebreakerKey: {Text: "240"}},
		"p3": {domain.TiebreakerKey: {Text: "not a number"}},
		"p4": {},
	}

	results := TiebreakerResults(game, latest)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %+v", results)
	}
	if r := results["p1"]; !r.Exact || !r.Closest || r.Distance != 0 {
		t.Fatalf("unexpected exact result %+v", r)
	}
	if r := results["p2"]; r.Exact || r.Closest || r.Distance != 10 {
		t.Fatalf("unexpected result %+v", r)
	}

	game.TiebreakerEnabled = false
	if r, ok := TiebreakerResults(game, latest)["p1"]; !ok || r.Guess != "250" || !r.Exact {
		t.Fatalf("expected stored guess reported after tiebreaker disabled, got %+v", r)
	}

	game.TiebreakerAnswer = nil
	if len(TiebreakerResults(game, latest)) != 0 {
		t.Fatalf("expected no results without an expected answer")
	}
}

func TestValidateTiebreaker(t *testing.T) {
	if _, err := validateTiebreaker(true, "How many?", " "); err == nil {
		t.Fatalf("expected missing answer error")
	}
	if _, err := validateTiebreaker(true, "How many?", "12abc"); err == nil {
		t.Fatalf("expected numeric error")
	}
	if _, err := validateTiebreaker(true, "", "12"); err == nil {
		t.Fatalf("expected prompt error")
	}
	n, err := validateTiebreaker(true, "How many?", " 12.5 ")
	if err != nil || n == nil || *n != 12.5 {
		t.Fatalf("expected 12.5, got %v err=%v", n, err)
	}
	if n, err := validateTiebreaker(false, "", "junk"); err != nil || n != nil {
		t.Fatalf("expected disabled junk to be dropped, got %v err=%v", n, err)
	}
}

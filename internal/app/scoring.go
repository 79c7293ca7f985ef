package app

import (
	"math"
	"sort"
	"time"

	"this-or-that/internal/domain"
)

// LatestAnswers keeps the most recent answer per player and slot. Answers must be
// ordered by creation time; on equal timestamps the later row wins.
func LatestAnswers(answers []domain.Answer) map[string]map[string]domain.Answer {
	latest := make(map[string]map[string]domain.Answer)
	for _, a := range answers {
		byKey, ok := latest[a.PlayerID]
		if !ok {
			byKey = make(map[string]domain.Answer)
			latest[a.PlayerID] = byKey
		}
		key := a.Key()
		if prev, ok := byKey[key]; ok && a.CreatedAt.Before(prev.CreatedAt) {
			continue
		}
		byKey[key] = a
	}
	return latest
}

// Score counts the questions whose latest answer matches the correct option.
func Score(questions []domain.Question, latest map[string]domain.Answer) int {
	score := 0
	for _, q := range questions {
		a, ok := latest[q.ID]
		if !ok {
			continue
		}
		if a.Text == q.CorrectAnswer.Option() {
			score++
		}
	}
	return score
}

// BuildLeaderboard ranks every player by score, highest first. Equal scores keep
// join order and share a rank; the tiebreaker guess never affects the ranking.
func BuildLeaderboard(game domain.Game, questions []domain.Question, players []domain.Player, answers []domain.Answer, now time.Time) domain.Leaderboard {
	latest := LatestAnswers(answers)

	entries := make([]domain.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, domain.LeaderboardEntry{
			PlayerID:  p.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Score:     Score(questions, latest[p.ID]),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}

	return domain.Leaderboard{
		GameID:    game.ID,
		Slug:      game.Slug,
		Questions: len(questions),
		Entries:   entries,
		UpdatedAt: now,
	}
}

// TiebreakerResults measures each player's tiebreaker guess against the expected
// answer. Stored guesses are reported even after the tiebreaker is switched off.
// Players without a parseable guess are omitted.
func TiebreakerResults(game domain.Game, latest map[string]map[string]domain.Answer) map[string]domain.TiebreakerResult {
	results := make(map[string]domain.TiebreakerResult)
	if game.TiebreakerAnswer == nil {
		return results
	}
	expected := *game.TiebreakerAnswer

	best := math.Inf(1)
	for playerID, byKey := range latest {
		a, ok := byKey[domain.TiebreakerKey]
		if !ok {
			continue
		}
		guess, ok := domain.ParseNumber(a.Text)
		if !ok {
			continue
		}
		distance := math.Abs(guess - expected)
		results[playerID] = domain.TiebreakerResult{
			Guess:    a.Text,
			Distance: distance,
			Exact:    distance == 0,
		}
		if distance < best {
			best = distance
		}
	}
	for playerID, r := range results {
		if r.Distance == best {
			r.Closest = true
			results[playerID] = r
		}
	}
	return results
}

// ReviewAnswers lists a player's latest answer for every question in order.
func ReviewAnswers(questions []domain.Question, latest map[string]domain.Answer) []domain.AnswerReview {
	reviews := make([]domain.AnswerReview, 0, len(questions))
	for _, q := range questions {
		expected := q.CorrectAnswer.Option()
		review := domain.AnswerReview{
			QuestionID: q.ID,
			Prompt:     q.Prompt,
			Expected:   expected,
		}
		if a, ok := latest[q.ID]; ok {
			review.Answer = a.Text
			review.Correct = a.Text == expected
		}
		reviews = append(reviews, review)
	}
	return reviews
}

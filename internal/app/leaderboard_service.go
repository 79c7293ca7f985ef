package app

import (
	"context"
	"time"

	"this-or-that/internal/domain"
)

// LeaderboardService computes rankings on demand from stored answers.
type LeaderboardService struct {
	repo  GameRepository
	games GameCache
	now   func() time.Time
}

func NewLeaderboardService(repo GameRepository, games GameCache) *LeaderboardService {
	return &LeaderboardService{repo: repo, games: games, now: time.Now}
}

// Leaderboard loads questions, players and answers for the game and ranks the players.
func (s *LeaderboardService) Leaderboard(ctx context.Context, slug string) (domain.Leaderboard, error) {
	game, err := s.games.GameBySlug(ctx, slug)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	questions, err := s.repo.ListQuestions(ctx, game.ID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	players, err := s.repo.ListPlayers(ctx, game.ID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	answers, err := s.repo.ListAnswers(ctx, game.ID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return BuildLeaderboard(game, questions, players, answers, s.now().UTC()), nil
}

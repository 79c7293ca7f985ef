package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"this-or-that/internal/domain"
)

// GameRepository is an in-memory implementation of app.GameRepository used in
// demo mode and tests.
type GameRepository struct {
	mu        sync.RWMutex
	clock     func() time.Time
	games     map[string]domain.Game
	slugs     map[string]string
	questions map[string][]domain.Question
	players   map[string][]domain.Player
	answers   map[string][]domain.Answer
}

func NewGameRepository() *GameRepository {
	return &GameRepository{
		clock:     time.Now,
		games:     make(map[string]domain.Game),
		slugs:     make(map[string]string),
		questions: make(map[string][]domain.Question),
		players:   make(map[string][]domain.Player),
		answers:   make(map[string][]domain.Answer),
	}
}

func (r *GameRepository) GameBySlug(_ context.Context, slug string) (domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.slugs[slug]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return r.games[id], nil
}

func (r *GameRepository) GameByID(_ context.Context, id string) (domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	game, ok := r.games[id]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

func (r *GameRepository) GamesByCreator(_ context.Context, userID string) ([]domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Game
	for _, game := range r.games {
		if game.CreatedBy == userID {
			out = append(out, game)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *GameRepository) InsertGame(_ context.Context, game domain.Game) (domain.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.slugs[game.Slug]; taken {
		return domain.Game{}, domain.ErrSlugTaken
	}
	game.ID = uuid.NewString()
	if game.CreatedAt.IsZero() {
		game.CreatedAt = r.clock().UTC()
	}
	r.games[game.ID] = game
	r.slugs[game.Slug] = game.ID
	return game, nil
}

func (r *GameRepository) UpdateGame(_ context.Context, game domain.Game) (domain.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.games[game.ID]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	// slug, owner and creation time are immutable
	game.Slug = current.Slug
	game.CreatedBy = current.CreatedBy
	game.CreatedAt = current.CreatedAt
	r.games[game.ID] = game
	return game, nil
}

func (r *GameRepository) ListQuestions(_ context.Context, gameID string) ([]domain.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]domain.Question(nil), r.questions[gameID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out, nil
}

func (r *GameRepository) MaxOrderIndex(_ context.Context, gameID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	maxIndex := -1
	for _, q := range r.questions[gameID] {
		if q.OrderIndex > maxIndex {
			maxIndex = q.OrderIndex
		}
	}
	return maxIndex, nil
}

func (r *GameRepository) InsertQuestion(_ context.Context, question domain.Question) (domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[question.GameID]; !ok {
		return domain.Question{}, domain.ErrGameNotFound
	}
	question.ID = uuid.NewString()
	r.questions[question.GameID] = append(r.questions[question.GameID], question)
	return question, nil
}

func (r *GameRepository) UpdateQuestion(_ context.Context, question domain.Question) (domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.questions[question.GameID]
	for i := range list {
		if list[i].ID == question.ID {
			list[i].Prompt = question.Prompt
			list[i].CorrectAnswer = question.CorrectAnswer
			return list[i], nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (r *GameRepository) InsertPlayer(_ context.Context, player domain.Player) (domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[player.GameID]; !ok {
		return domain.Player{}, domain.ErrGameNotFound
	}
	player.ID = uuid.NewString()
	if player.CreatedAt.IsZero() {
		player.CreatedAt = r.clock().UTC()
	}
	r.players[player.GameID] = append(r.players[player.GameID], player)
	return player, nil
}

func (r *GameRepository) GetPlayer(_ context.Context, gameID, playerID string) (domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players[gameID] {
		if p.ID == playerID {
			return p, nil
		}
	}
	return domain.Player{}, domain.ErrPlayerNotFound
}

func (r *GameRepository) FindPlayerByNames(_ context.Context, gameID, firstName, lastName string) (domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players[gameID] {
		if p.FirstName == firstName && p.LastName == lastName {
			return p, nil
		}
	}
	return domain.Player{}, domain.ErrPlayerNotFound
}

func (r *GameRepository) ListPlayers(_ context.Context, gameID string) ([]domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Player(nil), r.players[gameID]...), nil
}

func (r *GameRepository) InsertAnswers(_ context.Context, answers []domain.Answer) ([]domain.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Answer, 0, len(answers))
	for _, a := range answers {
		if _, ok := r.games[a.GameID]; !ok {
			return out, domain.ErrGameNotFound
		}
		a.ID = uuid.NewString()
		if a.CreatedAt.IsZero() {
			a.CreatedAt = r.clock().UTC()
		}
		r.answers[a.GameID] = append(r.answers[a.GameID], a)
		out = append(out, a)
	}
	return out, nil
}

func (r *GameRepository) ListAnswers(_ context.Context, gameID string) ([]domain.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]domain.Answer(nil), r.answers[gameID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *GameRepository) ListPlayerAnswers(ctx context.Context, gameID, playerID string) ([]domain.Answer, error) {
	all, err := r.ListAnswers(ctx, gameID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, a := range all {
		if a.PlayerID == playerID {
			out = append(out, a)
		}
	}
	return out, nil
}

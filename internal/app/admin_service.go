package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"this-or-that/internal/domain"
)

// CreateGameInput is the host's new-game form.
type CreateGameInput struct {
	Title             string
	Slug              string
	IsOpen            *bool
	OptionALabel      string
	OptionBLabel      string
	OptionAEmoji      string
	OptionBEmoji      string
	TiebreakerEnabled bool
	TiebreakerPrompt  string
	TiebreakerAnswer  string
	Theme             string
}

// UpdateGameInput carries the fields an owner may change. Nil means unchanged.
type UpdateGameInput struct {
	IsOpen            *bool
	OptionALabel      *string
	OptionBLabel      *string
	OptionAEmoji      *string
	OptionBEmoji      *string
	TiebreakerEnabled *bool
	TiebreakerPrompt  *string
	TiebreakerAnswer  *string
	Theme             *string
}

// QuestionInput is a new or edited question. Nil fields are left as they are on edit.
type QuestionInput struct {
	Prompt        *string
	CorrectAnswer *string
}

// AdminService holds the host-side use cases: games, questions and player review.
type AdminService struct {
	repo  GameRepository
	games GameCache
	log   *slog.Logger
	now   func() time.Time
}

func NewAdminService(repo GameRepository, games GameCache, logger *slog.Logger) *AdminService {
	return &AdminService{repo: repo, games: games, log: logger, now: time.Now}
}

// CreateGame validates the form, checks slug uniqueness and stores the game owned by user.
func (s *AdminService) CreateGame(ctx context.Context, user domain.User, in CreateGameInput) (domain.Game, error) {
	if user.ID == "" {
		return domain.Game{}, domain.ErrUnauthorized
	}

	game, err := validateNewGame(in)
	if err != nil {
		return domain.Game{}, err
	}
	game.CreatedBy = user.ID
	game.CreatedAt = s.now().UTC()

	if _, err := s.repo.GameBySlug(ctx, game.Slug); err == nil {
		return domain.Game{}, domain.ErrSlugTaken
	} else if !errors.Is(err, domain.ErrGameNotFound) {
		s.log.Error("slug lookup failed", "slug", game.Slug, "err", err)
		return domain.Game{}, err
	}

	created, err := s.repo.InsertGame(ctx, game)
	if err != nil {
		if !errors.Is(err, domain.ErrSlugTaken) {
			s.log.Error("insert game failed", "slug", game.Slug, "err", err)
		}
		return domain.Game{}, err
	}
	s.log.Info("game created", "game_id", created.ID, "slug", created.Slug, "created_by", user.ID)
	return created, nil
}

// ListGames returns the caller's games, newest first.
func (s *AdminService) ListGames(ctx context.Context, user domain.User) ([]domain.Game, error) {
	if user.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.GamesByCreator(ctx, user.ID)
}

// UpdateGame applies an owner's edits to labels, open flag, theme and tiebreaker.
func (s *AdminService) UpdateGame(ctx context.Context, user domain.User, gameID string, in UpdateGameInput) (domain.Game, error) {
	game, err := s.ownedGame(ctx, user, gameID)
	if err != nil {
		return domain.Game{}, err
	}

	if in.IsOpen != nil {
		game.IsOpen = *in.IsOpen
	}
	if in.OptionALabel != nil {
		game.OptionALabel = strings.TrimSpace(*in.OptionALabel)
	}
	if in.OptionBLabel != nil {
		game.OptionBLabel = strings.TrimSpace(*in.OptionBLabel)
	}
	if in.OptionAEmoji != nil {
		game.OptionAEmoji = strings.TrimSpace(*in.OptionAEmoji)
	}
	if in.OptionBEmoji != nil {
		game.OptionBEmoji = strings.TrimSpace(*in.OptionBEmoji)
	}
	if in.Theme != nil {
		game.Theme = strings.TrimSpace(*in.Theme)
	}
	if in.TiebreakerEnabled != nil {
		game.TiebreakerEnabled = *in.TiebreakerEnabled
	}
	if in.TiebreakerPrompt != nil {
		game.TiebreakerPrompt = strings.TrimSpace(*in.TiebreakerPrompt)
	}

	rawAnswer := ""
	if game.TiebreakerAnswer != nil {
		rawAnswer = formatNumber(*game.TiebreakerAnswer)
	}
	if in.TiebreakerAnswer != nil {
		rawAnswer = *in.TiebreakerAnswer
	}

	if game.OptionALabel == "" || game.OptionBLabel == "" {
		return domain.Game{}, domain.Invalid("option_a_label", "Missing required fields: option_a_label, option_b_label")
	}
	answer, err := validateTiebreaker(game.TiebreakerEnabled, game.TiebreakerPrompt, rawAnswer)
	if err != nil {
		return domain.Game{}, err
	}
	game.TiebreakerAnswer = answer
	if game.Theme == "" {
		game.Theme = domain.ThemeDefault
	}
	if !domain.ValidTheme(game.Theme) {
		return domain.Game{}, domain.Invalid("theme", "Unknown theme %q", game.Theme)
	}

	updated, err := s.repo.UpdateGame(ctx, game)
	if err != nil {
		s.log.Error("update game failed", "game_id", gameID, "err", err)
		return domain.Game{}, err
	}
	s.games.Invalidate(ctx, updated.Slug)
	s.log.Info("game updated", "game_id", updated.ID, "is_open", updated.IsOpen)
	return updated, nil
}

// ListQuestions returns a game's questions in display order.
func (s *AdminService) ListQuestions(ctx context.Context, gameID string) ([]domain.Question, error) {
	if _, err := s.repo.GameByID(ctx, gameID); err != nil {
		return nil, err
	}
	return s.repo.ListQuestions(ctx, gameID)
}

// AddQuestion appends a question after the current highest order index.
// Two concurrent adds may receive the same index; ordering is best effort.
func (s *AdminService) AddQuestion(ctx context.Context, user domain.User, gameID string, in QuestionInput) (domain.Question, error) {
	if user.ID == "" {
		return domain.Question{}, domain.ErrUnauthorized
	}
	prompt, correct, err := validateQuestion(in)
	if err != nil {
		return domain.Question{}, err
	}
	if _, err := s.ownedGame(ctx, user, gameID); err != nil {
		return domain.Question{}, err
	}

	maxIndex, err := s.repo.MaxOrderIndex(ctx, gameID)
	if err != nil {
		s.log.Warn("max order index lookup failed, starting at 0", "game_id", gameID, "err", err)
		maxIndex = -1
	}

	created, err := s.repo.InsertQuestion(ctx, domain.Question{
		GameID:        gameID,
		Prompt:        prompt,
		CorrectAnswer: correct,
		OrderIndex:    maxIndex + 1,
	})
	if err != nil {
		s.log.Error("insert question failed", "game_id", gameID, "err", err)
		return domain.Question{}, err
	}
	return created, nil
}

// UpdateQuestion edits a question's prompt or correct answer. Order is never changed.
func (s *AdminService) UpdateQuestion(ctx context.Context, user domain.User, gameID, questionID string, in QuestionInput) (domain.Question, error) {
	if _, err := s.ownedGame(ctx, user, gameID); err != nil {
		return domain.Question{}, err
	}
	questions, err := s.repo.ListQuestions(ctx, gameID)
	if err != nil {
		return domain.Question{}, err
	}
	var current *domain.Question
	for i := range questions {
		if questions[i].ID == questionID {
			current = &questions[i]
			break
		}
	}
	if current == nil {
		return domain.Question{}, domain.ErrQuestionNotFound
	}

	merged := QuestionInput{Prompt: in.Prompt, CorrectAnswer: in.CorrectAnswer}
	if merged.Prompt == nil {
		merged.Prompt = &current.Prompt
	}
	if merged.CorrectAnswer == nil {
		tag := string(current.CorrectAnswer)
		merged.CorrectAnswer = &tag
	}
	prompt, correct, err := validateQuestion(merged)
	if err != nil {
		return domain.Question{}, err
	}
	current.Prompt = prompt
	current.CorrectAnswer = correct
	return s.repo.UpdateQuestion(ctx, *current)
}

// PlayerDetail is the owner's view of one player's answers and tiebreaker guess.
func (s *AdminService) PlayerDetail(ctx context.Context, user domain.User, gameID, playerID string) (domain.PlayerDetail, error) {
	game, err := s.ownedGame(ctx, user, gameID)
	if err != nil {
		return domain.PlayerDetail{}, err
	}
	player, err := s.repo.GetPlayer(ctx, gameID, playerID)
	if err != nil {
		return domain.PlayerDetail{}, err
	}
	questions, err := s.repo.ListQuestions(ctx, gameID)
	if err != nil {
		return domain.PlayerDetail{}, err
	}
	answers, err := s.repo.ListAnswers(ctx, gameID)
	if err != nil {
		return domain.PlayerDetail{}, err
	}

	latest := LatestAnswers(answers)
	detail := domain.PlayerDetail{
		Player:  player,
		Score:   Score(questions, latest[player.ID]),
		Answers: ReviewAnswers(questions, latest[player.ID]),
	}
	if result, ok := TiebreakerResults(game, latest)[player.ID]; ok {
		detail.Tiebreaker = &result
	}
	return detail, nil
}

func (s *AdminService) ownedGame(ctx context.Context, user domain.User, gameID string) (domain.Game, error) {
	if user.ID == "" {
		return domain.Game{}, domain.ErrUnauthorized
	}
	game, err := s.repo.GameByID(ctx, gameID)
	if err != nil {
		return domain.Game{}, err
	}
	if game.CreatedBy != user.ID {
		return domain.Game{}, domain.ErrForbidden
	}
	return game, nil
}

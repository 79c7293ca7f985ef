package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"this-or-that/internal/domain"
)

// BulkSubmission carries answers chosen in one go plus an optional tiebreaker guess.
// Values are drafted before anything is sent.
type BulkSubmission struct {
	Answers    map[string]string
	Tiebreaker *string
}

// PlayService holds the player-side use cases: joining, drafting and submitting answers.
type PlayService struct {
	repo       GameRepository
	games      GameCache
	drafts     DraftStore
	identities IdentityStore
	log        *slog.Logger
	now        func() time.Time
}

func NewPlayService(repo GameRepository, games GameCache, drafts DraftStore, identities IdentityStore, logger *slog.Logger) *PlayService {
	return &PlayService{
		repo:       repo,
		games:      games,
		drafts:     drafts,
		identities: identities,
		log:        logger,
		now:        time.Now,
	}
}

// Game returns a game and its ordered questions for display.
func (s *PlayService) Game(ctx context.Context, slug string) (domain.Game, []domain.Question, error) {
	game, err := s.games.GameBySlug(ctx, slug)
	if err != nil {
		return domain.Game{}, nil, err
	}
	questions, err := s.repo.ListQuestions(ctx, game.ID)
	if err != nil {
		return domain.Game{}, nil, err
	}
	return game, questions, nil
}

// Join resolves the player for (first, last) in the game, creating one if needed,
// and remembers it for the client. Matching is exact and best effort.
func (s *PlayService) Join(ctx context.Context, clientID, slug, firstName, lastName string) (domain.Player, error) {
	first := strings.TrimSpace(firstName)
	last := strings.TrimSpace(lastName)
	if first == "" {
		return domain.Player{}, domain.Invalid("first_name", "Please enter your first name")
	}

	game, err := s.games.GameBySlug(ctx, slug)
	if err != nil {
		return domain.Player{}, err
	}

	player, err := s.repo.FindPlayerByNames(ctx, game.ID, first, last)
	switch {
	case err == nil:
		s.log.Info("player rejoined", "game_id", game.ID, "player_id", player.ID)
	case errors.Is(err, domain.ErrPlayerNotFound):
		player, err = s.repo.InsertPlayer(ctx, domain.Player{
			GameID:    game.ID,
			FirstName: first,
			LastName:  last,
			CreatedAt: s.now().UTC(),
		})
		if err != nil {
			s.log.Error("insert player failed", "game_id", game.ID, "err", err)
			return domain.Player{}, err
		}
		s.log.Info("player joined", "game_id", game.ID, "player_id", player.ID)
	default:
		s.log.Error("player lookup failed", "game_id", game.ID, "err", err)
		return domain.Player{}, err
	}

	if clientID != "" {
		if err := s.identities.Remember(ctx, clientID, game.ID, player.ID); err != nil {
			s.log.Warn("remember player failed", "game_id", game.ID, "player_id", player.ID, "err", err)
		}
	}
	return player, nil
}

// Resume returns the player this client joined the game as, or ErrPlayerNotFound.
func (s *PlayService) Resume(ctx context.Context, clientID, slug string) (domain.Player, error) {
	if clientID == "" {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	game, err := s.games.GameBySlug(ctx, slug)
	if err != nil {
		return domain.Player{}, err
	}
	playerID, ok, err := s.identities.Recall(ctx, clientID, game.ID)
	if err != nil {
		s.log.Warn("recall player failed", "game_id", game.ID, "err", err)
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return s.repo.GetPlayer(ctx, game.ID, playerID)
}

// Sheet loads the player's answer sheet, merging stored answers with local drafts.
func (s *PlayService) Sheet(ctx context.Context, slug, playerID string) (*domain.Sheet, error) {
	game, err := s.games.GameBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.sheet(ctx, game, playerID)
}

// Select drafts a value for a question or the tiebreaker. Nothing is sent to storage.
func (s *PlayService) Select(ctx context.Context, slug, playerID, key, value string) (*domain.Sheet, error) {
	v, err := validateAnswerValue(key, value)
	if err != nil {
		return nil, err
	}
	game, err := s.games.GameBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	sheet, err := s.sheet(ctx, game, playerID)
	if err != nil {
		return nil, err
	}
	if err := sheet.Select(key, v); err != nil {
		return nil, err
	}
	if err := s.drafts.SaveDraft(ctx, game.ID, playerID, key, domain.Draft{Value: v, Unsaved: true}); err != nil {
		return nil, err
	}
	return sheet, nil
}

// Reopen makes a submitted answer editable again as a draft.
func (s *PlayService) Reopen(ctx context.Context, slug, playerID, key string) (*domain.Sheet, error) {
	game, err := s.games.GameBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	sheet, err := s.sheet(ctx, game, playerID)
	if err != nil {
		return nil, err
	}
	if err := sheet.Reopen(key); err != nil {
		return nil, err
	}
	slot, _ := sheet.Slot(key)
	if err := s.drafts.SaveDraft(ctx, game.ID, playerID, key, domain.Draft{Value: slot.Value, Unsaved: true}); err != nil {
		return nil, err
	}
	return sheet, nil
}

// Submit sends the drafted value of one slot. A closed game is rejected before
// any write.
func (s *PlayService) Submit(ctx context.Context, slug, playerID, key string) (*domain.Sheet, error) {
	game, err := s.openGame(ctx, slug)
	if err != nil {
		return nil, err
	}
	sheet, err := s.sheet(ctx, game, playerID)
	if err != nil {
		return nil, err
	}
	slot, ok := sheet.Slot(key)
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	if slot.State != domain.Drafted {
		return nil, domain.ErrNotDrafted
	}

	if _, err := s.repo.InsertAnswers(ctx, []domain.Answer{s.answerFor(game.ID, playerID, slot)}); err != nil {
		s.log.Error("submit answer failed", "game_id", game.ID, "player_id", playerID, "key", key, "err", err)
		return nil, err
	}
	_ = sheet.MarkSubmitted(key)

	if err := s.drafts.SaveDraft(ctx, game.ID, playerID, key, domain.Draft{Value: slot.Value}); err != nil {
		s.log.Warn("mark draft saved failed", "game_id", game.ID, "player_id", playerID, "key", key, "err", err)
	}
	return sheet, nil
}

// SubmitAll drafts the given values, then sends every drafted slot in one batch.
// All questions must hold a value first. A failed batch is reported as a whole
// and the drafts are kept so the player can retry.
func (s *PlayService) SubmitAll(ctx context.Context, slug, playerID string, in BulkSubmission) (*domain.Sheet, error) {
	game, err := s.openGame(ctx, slug)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(in.Answers)+1)
	for key, raw := range in.Answers {
		if key == domain.TiebreakerKey {
			return nil, domain.Invalid("answers", "Tiebreaker goes in the tiebreaker field")
		}
		v, err := validateAnswerValue(key, raw)
		if err != nil {
			return nil, err
		}
		values[key] = v
	}
	if in.Tiebreaker != nil {
		if !game.TiebreakerEnabled {
			return nil, domain.Invalid("tiebreaker", "This game has no tiebreaker")
		}
		v, err := validateAnswerValue(domain.TiebreakerKey, *in.Tiebreaker)
		if err != nil {
			return nil, err
		}
		values[domain.TiebreakerKey] = v
	}

	sheet, err := s.sheet(ctx, game, playerID)
	if err != nil {
		return nil, err
	}
	for key, v := range values {
		if slot, ok := sheet.Slot(key); ok && slot.State == domain.Submitted {
			if slot.Value == v {
				continue
			}
			// a changed value in the bulk form counts as an explicit reopen
			_ = sheet.Reopen(key)
		}
		if err := sheet.Select(key, v); err != nil {
			return nil, err
		}
		if err := s.drafts.SaveDraft(ctx, game.ID, playerID, key, domain.Draft{Value: v, Unsaved: true}); err != nil {
			return nil, err
		}
	}

	if !sheet.QuestionsComplete() {
		return nil, domain.ErrIncompleteAnswers
	}
	pending := sheet.Pending()
	if len(pending) == 0 {
		return nil, domain.ErrNothingToSubmit
	}

	batch := make([]domain.Answer, 0, len(pending))
	for _, slot := range pending {
		batch = append(batch, s.answerFor(game.ID, playerID, slot))
	}
	if _, err := s.repo.InsertAnswers(ctx, batch); err != nil {
		s.log.Error("bulk submit failed", "game_id", game.ID, "player_id", playerID, "answers", len(batch), "err", err)
		return nil, err
	}
	for _, slot := range pending {
		_ = sheet.MarkSubmitted(slot.Key)
	}
	if err := s.drafts.ClearDrafts(ctx, game.ID, playerID); err != nil {
		s.log.Warn("clear drafts failed", "game_id", game.ID, "player_id", playerID, "err", err)
	}
	s.log.Info("answers submitted", "game_id", game.ID, "player_id", playerID, "answers", len(batch))
	return sheet, nil
}

// openGame reads the game from the repository rather than the cache so a
// freshly closed game is never written to.
func (s *PlayService) openGame(ctx context.Context, slug string) (domain.Game, error) {
	game, err := s.repo.GameBySlug(ctx, slug)
	if err != nil {
		return domain.Game{}, err
	}
	if !game.IsOpen {
		return domain.Game{}, domain.ErrGameClosed
	}
	return game, nil
}

func (s *PlayService) sheet(ctx context.Context, game domain.Game, playerID string) (*domain.Sheet, error) {
	if _, err := s.repo.GetPlayer(ctx, game.ID, playerID); err != nil {
		return nil, err
	}
	questions, err := s.repo.ListQuestions(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	answers, err := s.repo.ListPlayerAnswers(ctx, game.ID, playerID)
	if err != nil {
		return nil, err
	}
	drafts, err := s.drafts.LoadDrafts(ctx, game.ID, playerID)
	if err != nil {
		s.log.Warn("load drafts failed", "game_id", game.ID, "player_id", playerID, "err", err)
		drafts = nil
	}
	latest := LatestAnswers(answers)[playerID]
	return domain.ReconcileSheet(game.ID, playerID, questions, game.TiebreakerEnabled, latest, drafts), nil
}

func (s *PlayService) answerFor(gameID, playerID string, slot domain.AnswerSlot) domain.Answer {
	a := domain.Answer{
		GameID:    gameID,
		PlayerID:  playerID,
		Text:      slot.Value,
		CreatedAt: s.now().UTC(),
	}
	if slot.Key != domain.TiebreakerKey {
		questionID := slot.Key
		a.QuestionID = &questionID
	}
	return a
}

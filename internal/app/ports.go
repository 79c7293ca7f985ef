package app

import (
	"context"

	"this-or-that/internal/domain"
)

// GameRepository is the data-access boundary for games, questions, players and answers.
// Lookups report a missing row with the matching domain sentinel and any storage
// failure as *domain.BackendError, so callers can tell the two apart.
type GameRepository interface {
	GameBySlug(ctx context.Context, slug string) (domain.Game, error)
	GameByID(ctx context.Context, id string) (domain.Game, error)
	GamesByCreator(ctx context.Context, userID string) ([]domain.Game, error)
	InsertGame(ctx context.Context, game domain.Game) (domain.Game, error)
	UpdateGame(ctx context.Context, game domain.Game) (domain.Game, error)

	// ListQuestions returns the game's questions ordered by order index.
	ListQuestions(ctx context.Context, gameID string) ([]domain.Question, error)
	// MaxOrderIndex returns -1 when the game has no questions yet.
	MaxOrderIndex(ctx context.Context, gameID string) (int, error)
	InsertQuestion(ctx context.Context, question domain.Question) (domain.Question, error)
	UpdateQuestion(ctx context.Context, question domain.Question) (domain.Question, error)

	InsertPlayer(ctx context.Context, player domain.Player) (domain.Player, error)
	GetPlayer(ctx context.Context, gameID, playerID string) (domain.Player, error)
	FindPlayerByNames(ctx context.Context, gameID, firstName, lastName string) (domain.Player, error)
	// ListPlayers returns players in join order.
	ListPlayers(ctx context.Context, gameID string) ([]domain.Player, error)

	// InsertAnswers is not atomic; a failure may leave some rows written.
	InsertAnswers(ctx context.Context, answers []domain.Answer) ([]domain.Answer, error)
	// ListAnswers returns all answers for a game ordered by creation time.
	ListAnswers(ctx context.Context, gameID string) ([]domain.Answer, error)
	ListPlayerAnswers(ctx context.Context, gameID, playerID string) ([]domain.Answer, error)
}

// GameCache serves read-mostly game lookups by slug.
type GameCache interface {
	GameBySlug(ctx context.Context, slug string) (domain.Game, error)
	Invalidate(ctx context.Context, slug string)
}

// DraftStore keeps unsubmitted answer values per (game, player) so an
// interrupted session can resume. Unreadable entries are skipped.
type DraftStore interface {
	LoadDrafts(ctx context.Context, gameID, playerID string) (map[string]domain.Draft, error)
	SaveDraft(ctx context.Context, gameID, playerID, key string, draft domain.Draft) error
	ClearDrafts(ctx context.Context, gameID, playerID string) error
}

// IdentityStore remembers which player a client resolved to for each game.
type IdentityStore interface {
	Remember(ctx context.Context, clientID, gameID, playerID string) error
	Recall(ctx context.Context, clientID, gameID string) (string, bool, error)
}

// Authenticator verifies bearer tokens against the auth provider.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

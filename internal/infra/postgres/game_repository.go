package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"this-or-that/internal/domain"
)

const gameColumns = `id::text, slug, title, is_open, option_a_label, option_b_label,
	option_a_emoji, option_b_emoji, tiebreaker_enabled, tiebreaker_prompt,
	tiebreaker_answer, created_by, created_at, theme`

const questionColumns = `id::text, game_id::text, prompt, correct_answer, order_index`

const playerColumns = `id::text, game_id::text, first_name, last_name, created_at`

const answerColumns = `id::text, game_id::text, player_id::text, question_id::text, answer_text, created_at`

// GameRepository implements app.GameRepository on a pgx pool.
type GameRepository struct {
	pool *pgxpool.Pool
}

func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *GameRepository) GameBySlug(ctx context.Context, slug string) (domain.Game, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE slug = $1`, slug)
	game, err := scanGame(row)
	if err != nil {
		return domain.Game{}, notFound("game by slug", err, domain.ErrGameNotFound)
	}
	return game, nil
}

func (r *GameRepository) GameByID(ctx context.Context, id string) (domain.Game, error) {
	if !validID(id) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	game, err := scanGame(row)
	if err != nil {
		return domain.Game{}, notFound("game by id", err, domain.ErrGameNotFound)
	}
	return game, nil
}

func (r *GameRepository) GamesByCreator(ctx context.Context, userID string) ([]domain.Game, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+gameColumns+` FROM games WHERE created_by = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, domain.Backend("list games", err)
	}
	defer rows.Close()

	var out []domain.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, domain.Backend("scan game", err)
		}
		out = append(out, game)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Backend("list games", err)
	}
	return out, nil
}

func (r *GameRepository) InsertGame(ctx context.Context, game domain.Game) (domain.Game, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO games (slug, title, is_open, option_a_label, option_b_label,
			option_a_emoji, option_b_emoji, tiebreaker_enabled, tiebreaker_prompt,
			tiebreaker_answer, created_by, theme)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+gameColumns,
		game.Slug, game.Title, game.IsOpen, game.OptionALabel, game.OptionBLabel,
		nullString(game.OptionAEmoji), nullString(game.OptionBEmoji), game.TiebreakerEnabled,
		nullString(game.TiebreakerPrompt), game.TiebreakerAnswer, game.CreatedBy, game.Theme,
	)
	created, err := scanGame(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Game{}, domain.ErrSlugTaken
		}
		return domain.Game{}, domain.Backend("insert game", err)
	}
	return created, nil
}

func (r *GameRepository) UpdateGame(ctx context.Context, game domain.Game) (domain.Game, error) {
	if !validID(game.ID) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE games
		SET title = $2, is_open = $3, option_a_label = $4, option_b_label = $5,
			option_a_emoji = $6, option_b_emoji = $7, tiebreaker_enabled = $8,
			tiebreaker_prompt = $9, tiebreaker_answer = $10, theme = $11
		WHERE id = $1
		RETURNING `+gameColumns,
		game.ID, game.Title, game.IsOpen, game.OptionALabel, game.OptionBLabel,
		nullString(game.OptionAEmoji), nullString(game.OptionBEmoji), game.TiebreakerEnabled,
		nullString(game.TiebreakerPrompt), game.TiebreakerAnswer, game.Theme,
	)
	updated, err := scanGame(row)
	if err != nil {
		return domain.Game{}, notFound("update game", err, domain.ErrGameNotFound)
	}
	return updated, nil
}

func (r *GameRepository) ListQuestions(ctx context.Context, gameID string) ([]domain.Question, error) {
	if !validID(gameID) {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE game_id = $1 ORDER BY order_index ASC, id ASC`, gameID)
	if err != nil {
		return nil, domain.Backend("list questions", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, domain.Backend("scan question", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Backend("list questions", err)
	}
	return out, nil
}

func (r *GameRepository) MaxOrderIndex(ctx context.Context, gameID string) (int, error) {
	if !validID(gameID) {
		return -1, nil
	}
	var maxIndex int
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(order_index), -1) FROM questions WHERE game_id = $1`, gameID).Scan(&maxIndex)
	if err != nil {
		return -1, domain.Backend("max order index", err)
	}
	return maxIndex, nil
}

func (r *GameRepository) InsertQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	if !validID(question.GameID) {
		return domain.Question{}, domain.ErrGameNotFound
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO questions (game_id, prompt, correct_answer, order_index)
		VALUES ($1, $2, $3, $4)
		RETURNING `+questionColumns,
		question.GameID, question.Prompt, string(question.CorrectAnswer), question.OrderIndex,
	)
	created, err := scanQuestion(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Question{}, domain.ErrGameNotFound
		}
		return domain.Question{}, domain.Backend("insert question", err)
	}
	return created, nil
}

func (r *GameRepository) UpdateQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	if !validID(question.ID) || !validID(question.GameID) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE questions SET prompt = $3, correct_answer = $4
		WHERE id = $1 AND game_id = $2
		RETURNING `+questionColumns,
		question.ID, question.GameID, question.Prompt, string(question.CorrectAnswer),
	)
	updated, err := scanQuestion(row)
	if err != nil {
		return domain.Question{}, notFound("update question", err, domain.ErrQuestionNotFound)
	}
	return updated, nil
}

func (r *GameRepository) InsertPlayer(ctx context.Context, player domain.Player) (domain.Player, error) {
	if !validID(player.GameID) {
		return domain.Player{}, domain.ErrGameNotFound
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO players (game_id, first_name, last_name)
		VALUES ($1, $2, $3)
		RETURNING `+playerColumns,
		player.GameID, player.FirstName, player.LastName,
	)
	created, err := scanPlayer(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Player{}, domain.ErrGameNotFound
		}
		return domain.Player{}, domain.Backend("insert player", err)
	}
	return created, nil
}

func (r *GameRepository) GetPlayer(ctx context.Context, gameID, playerID string) (domain.Player, error) {
	if !validID(gameID) || !validID(playerID) {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1 AND game_id = $2`, playerID, gameID)
	player, err := scanPlayer(row)
	if err != nil {
		return domain.Player{}, notFound("get player", err, domain.ErrPlayerNotFound)
	}
	return player, nil
}

func (r *GameRepository) FindPlayerByNames(ctx context.Context, gameID, firstName, lastName string) (domain.Player, error) {
	if !validID(gameID) {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+playerColumns+` FROM players
		WHERE game_id = $1 AND first_name = $2 AND last_name = $3
		ORDER BY created_at ASC
		LIMIT 1`,
		gameID, firstName, lastName,
	)
	player, err := scanPlayer(row)
	if err != nil {
		return domain.Player{}, notFound("find player", err, domain.ErrPlayerNotFound)
	}
	return player, nil
}

func (r *GameRepository) ListPlayers(ctx context.Context, gameID string) ([]domain.Player, error) {
	if !validID(gameID) {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+playerColumns+` FROM players WHERE game_id = $1 ORDER BY created_at ASC, seq ASC`, gameID)
	if err != nil {
		return nil, domain.Backend("list players", err)
	}
	defer rows.Close()

	var out []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, domain.Backend("scan player", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Backend("list players", err)
	}
	return out, nil
}

// InsertAnswers writes one row per answer. Rows written before a failure stay.
func (r *GameRepository) InsertAnswers(ctx context.Context, answers []domain.Answer) ([]domain.Answer, error) {
	out := make([]domain.Answer, 0, len(answers))
	for _, a := range answers {
		row := r.pool.QueryRow(ctx, `
			INSERT INTO answers (game_id, player_id, question_id, answer_text, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+answerColumns,
			a.GameID, a.PlayerID, a.QuestionID, a.Text, a.CreatedAt,
		)
		created, err := scanAnswer(row)
		if err != nil {
			return out, domain.Backend("insert answer", err)
		}
		out = append(out, created)
	}
	return out, nil
}

func (r *GameRepository) ListAnswers(ctx context.Context, gameID string) ([]domain.Answer, error) {
	if !validID(gameID) {
		return nil, nil
	}
	return r.queryAnswers(ctx, `SELECT `+answerColumns+` FROM answers WHERE game_id = $1 ORDER BY created_at ASC, seq ASC`, gameID)
}

func (r *GameRepository) ListPlayerAnswers(ctx context.Context, gameID, playerID string) ([]domain.Answer, error) {
	if !validID(gameID) || !validID(playerID) {
		return nil, nil
	}
	return r.queryAnswers(ctx, `SELECT `+answerColumns+` FROM answers WHERE game_id = $1 AND player_id = $2 ORDER BY created_at ASC, seq ASC`, gameID, playerID)
}

func (r *GameRepository) queryAnswers(ctx context.Context, sql string, args ...interface{}) ([]domain.Answer, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.Backend("list answers", err)
	}
	defer rows.Close()

	var out []domain.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, domain.Backend("scan answer", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Backend("list answers", err)
	}
	return out, nil
}

func scanGame(row scanner) (domain.Game, error) {
	var (
		g                      domain.Game
		emojiA, emojiB, prompt *string
	)
	err := row.Scan(&g.ID, &g.Slug, &g.Title, &g.IsOpen, &g.OptionALabel, &g.OptionBLabel,
		&emojiA, &emojiB, &g.TiebreakerEnabled, &prompt, &g.TiebreakerAnswer, &g.CreatedBy, &g.CreatedAt, &g.Theme)
	if err != nil {
		return domain.Game{}, err
	}
	g.OptionAEmoji = deref(emojiA)
	g.OptionBEmoji = deref(emojiB)
	g.TiebreakerPrompt = deref(prompt)
	return g, nil
}

func scanQuestion(row scanner) (domain.Question, error) {
	var (
		q       domain.Question
		correct string
	)
	if err := row.Scan(&q.ID, &q.GameID, &q.Prompt, &correct, &q.OrderIndex); err != nil {
		return domain.Question{}, err
	}
	q.CorrectAnswer = domain.Choice(correct)
	if !q.CorrectAnswer.Valid() {
		return domain.Question{}, fmt.Errorf("unknown correct_answer %q", correct)
	}
	return q, nil
}

func scanPlayer(row scanner) (domain.Player, error) {
	var p domain.Player
	if err := row.Scan(&p.ID, &p.GameID, &p.FirstName, &p.LastName, &p.CreatedAt); err != nil {
		return domain.Player{}, err
	}
	return p, nil
}

func scanAnswer(row scanner) (domain.Answer, error) {
	var a domain.Answer
	if err := row.Scan(&a.ID, &a.GameID, &a.PlayerID, &a.QuestionID, &a.Text, &a.CreatedAt); err != nil {
		return domain.Answer{}, err
	}
	return a, nil
}

// notFound maps pgx.ErrNoRows onto the given sentinel and wraps anything else.
func notFound(op string, err, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return domain.Backend(op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// validID rejects ids that could never match a uuid column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

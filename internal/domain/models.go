package domain

import "time"

// Choice is the correct-answer tag stored on a question.
type Choice string

const (
	ChoiceMom Choice = "mom"
	ChoiceDad Choice = "dad"
)

// Option tags are what players submit for a question.
const (
	OptionA = "A"
	OptionB = "B"
)

// TiebreakerKey identifies the tiebreaker slot on an answer sheet.
const TiebreakerKey = "tiebreaker"

// Themes accepted for a game.
const (
	ThemeDefault    = "default"
	ThemeBabyAutumn = "baby-autumn"
)

// Option maps the correct-answer tag onto the option tag players pick.
func (c Choice) Option() string {
	switch c {
	case ChoiceMom:
		return OptionA
	case ChoiceDad:
		return OptionB
	}
	return string(c)
}

// Valid reports whether c is one of the two allowed tags.
func (c Choice) Valid() bool {
	return c == ChoiceMom || c == ChoiceDad
}

// Game is a host-configured this-or-that game identified by its slug.
type Game struct {
	ID                string    `json:"id"`
	Slug              string    `json:"slug"`
	Title             string    `json:"title"`
	IsOpen            bool      `json:"is_open"`
	OptionALabel      string    `json:"option_a_label"`
	OptionBLabel      string    `json:"option_b_label"`
	OptionAEmoji      string    `json:"option_a_emoji,omitempty"`
	OptionBEmoji      string    `json:"option_b_emoji,omitempty"`
	TiebreakerEnabled bool      `json:"tiebreaker_enabled"`
	TiebreakerPrompt  string    `json:"tiebreaker_prompt,omitempty"`
	TiebreakerAnswer  *float64  `json:"tiebreaker_answer,omitempty"`
	CreatedBy         string    `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	Theme             string    `json:"theme"`
}

// Question is one binary-choice prompt belonging to a game.
type Question struct {
	ID            string `json:"id"`
	GameID        string `json:"game_id"`
	Prompt        string `json:"prompt"`
	CorrectAnswer Choice `json:"correct_answer"`
	OrderIndex    int    `json:"order_index"`
}

// PublicQuestion is a question as shown to players.
type PublicQuestion struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	OrderIndex int    `json:"order_index"`
}

// Public strips the correct answer.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{ID: q.ID, Prompt: q.Prompt, OrderIndex: q.OrderIndex}
}

// Player is a participant identity scoped to one game.
type Player struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Answer is a recorded response. A nil QuestionID marks the tiebreaker guess.
type Answer struct {
	ID         string    `json:"id"`
	GameID     string    `json:"game_id"`
	PlayerID   string    `json:"player_id"`
	QuestionID *string   `json:"question_id"`
	Text       string    `json:"answer_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Key returns the sheet slot the answer belongs to.
func (a Answer) Key() string {
	if a.QuestionID == nil {
		return TiebreakerKey
	}
	return *a.QuestionID
}

// User is the authenticated caller behind a bearer token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Draft is an answer value held locally for a player until it is submitted.
type Draft struct {
	Value   string `json:"value"`
	Unsaved bool   `json:"unsaved"`
}

// LeaderboardEntry is one ranked player.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	PlayerID  string `json:"player_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Score     int    `json:"score"`
}

// Leaderboard captures the ordered scoreboard for a game.
type Leaderboard struct {
	GameID    string             `json:"game_id"`
	Slug      string             `json:"slug"`
	Questions int                `json:"questions"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// TiebreakerResult describes how close a player's numeric guess was.
type TiebreakerResult struct {
	Guess    string  `json:"guess"`
	Distance float64 `json:"distance"`
	Exact    bool    `json:"exact"`
	Closest  bool    `json:"closest"`
}

// AnswerReview is a player's latest answer to one question, as seen by the host.
type AnswerReview struct {
	QuestionID string `json:"question_id"`
	Prompt     string `json:"prompt"`
	Answer     string `json:"answer,omitempty"`
	Expected   string `json:"expected"`
	Correct    bool   `json:"correct"`
}

// PlayerDetail is the host-facing breakdown of a single player.
type PlayerDetail struct {
	Player     Player            `json:"player"`
	Score      int               `json:"score"`
	Answers    []AnswerReview    `json:"answers"`
	Tiebreaker *TiebreakerResult `json:"tiebreaker,omitempty"`
}

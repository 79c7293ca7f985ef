package http

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"this-or-that/internal/app"
	"this-or-that/internal/domain"
)

type createGameRequest struct {
	Title             string     `json:"title"`
	Slug              string     `json:"slug"`
	IsOpen            *bool      `json:"is_open"`
	OptionALabel      string     `json:"option_a_label"`
	OptionBLabel      string     `json:"option_b_label"`
	OptionAEmoji      string     `json:"option_a_emoji"`
	OptionBEmoji      string     `json:"option_b_emoji"`
	TiebreakerEnabled bool       `json:"tiebreaker_enabled"`
	TiebreakerPrompt  string     `json:"tiebreaker_prompt"`
	TiebreakerAnswer  flexString `json:"tiebreaker_answer"`
	Theme             string     `json:"theme"`
}

type updateGameRequest struct {
	IsOpen            *bool      `json:"is_open"`
	OptionALabel      *string    `json:"option_a_label"`
	OptionBLabel      *string    `json:"option_b_label"`
	OptionAEmoji      *string    `json:"option_a_emoji"`
	OptionBEmoji      *string    `json:"option_b_emoji"`
	TiebreakerEnabled *bool      `json:"tiebreaker_enabled"`
	TiebreakerPrompt  *string    `json:"tiebreaker_prompt"`
	TiebreakerAnswer  flexString `json:"tiebreaker_answer"`
	Theme             *string    `json:"theme"`
}

type questionRequest struct {
	Prompt        *string `json:"prompt"`
	CorrectAnswer *string `json:"correct_answer"`
}

// authenticate resolves the bearer token, writing the error response itself
// when the caller cannot be identified.
func (h *APIHandler) authenticate(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return domain.User{}, false
	}
	user, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return domain.User{}, false
		}
		h.log.Error("token verification failed", "err", err)
		writeError(w, http.StatusBadGateway, "Authentication service unavailable")
		return domain.User{}, false
	}
	return user, true
}

func (h *APIHandler) createGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req createGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	game, err := h.admin.CreateGame(r.Context(), user, app.CreateGameInput{
		Title:             req.Title,
		Slug:              req.Slug,
		IsOpen:            req.IsOpen,
		OptionALabel:      req.OptionALabel,
		OptionBLabel:      req.OptionBLabel,
		OptionAEmoji:      req.OptionAEmoji,
		OptionBEmoji:      req.OptionBEmoji,
		TiebreakerEnabled: req.TiebreakerEnabled,
		TiebreakerPrompt:  req.TiebreakerPrompt,
		TiebreakerAnswer:  req.TiebreakerAnswer.Value,
		Theme:             req.Theme,
	})
	if err != nil {
		var be *domain.BackendError
		if errors.As(err, &be) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Failed to create game",
				"details": be.Error(),
			})
			return
		}
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"game": game})
}

func (h *APIHandler) listGames(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	games, err := h.admin.ListGames(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if games == nil {
		games = []domain.Game{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (h *APIHandler) updateGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req updateGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	game, err := h.admin.UpdateGame(r.Context(), user, ps.ByName("gameId"), app.UpdateGameInput{
		IsOpen:            req.IsOpen,
		OptionALabel:      req.OptionALabel,
		OptionBLabel:      req.OptionBLabel,
		OptionAEmoji:      req.OptionAEmoji,
		OptionBEmoji:      req.OptionBEmoji,
		TiebreakerEnabled: req.TiebreakerEnabled,
		TiebreakerPrompt:  req.TiebreakerPrompt,
		TiebreakerAnswer:  req.TiebreakerAnswer.ptr(),
		Theme:             req.Theme,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"game": game})
}

func (h *APIHandler) listQuestions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	questions, err := h.admin.ListQuestions(r.Context(), ps.ByName("gameId"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *APIHandler) addQuestion(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req questionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	question, err := h.admin.AddQuestion(r.Context(), user, ps.ByName("gameId"), app.QuestionInput{
		Prompt:        req.Prompt,
		CorrectAnswer: req.CorrectAnswer,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"question": question})
}

func (h *APIHandler) updateQuestion(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req questionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	question, err := h.admin.UpdateQuestion(r.Context(), user, ps.ByName("gameId"), ps.ByName("questionId"), app.QuestionInput{
		Prompt:        req.Prompt,
		CorrectAnswer: req.CorrectAnswer,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"question": question})
}

func (h *APIHandler) playerDetail(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	detail, err := h.admin.PlayerDetail(r.Context(), user, ps.ByName("gameId"), ps.ByName("playerId"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

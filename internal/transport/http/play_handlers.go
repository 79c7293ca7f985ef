package http

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"this-or-that/internal/app"
	"this-or-that/internal/domain"
)

const qrSize = 320

type publicGameResponse struct {
	ID                string                  `json:"id"`
	Slug              string                  `json:"slug"`
	Title             string                  `json:"title"`
	IsOpen            bool                    `json:"is_open"`
	OptionALabel      string                  `json:"option_a_label"`
	OptionBLabel      string                  `json:"option_b_label"`
	OptionAEmoji      string                  `json:"option_a_emoji,omitempty"`
	OptionBEmoji      string                  `json:"option_b_emoji,omitempty"`
	TiebreakerEnabled bool                    `json:"tiebreaker_enabled"`
	TiebreakerPrompt  string                  `json:"tiebreaker_prompt,omitempty"`
	Theme             string                  `json:"theme"`
	Questions         []domain.PublicQuestion `json:"questions"`
	ShareURL          string                  `json:"share_url"`
}

type joinRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type selectRequest struct {
	Value flexString `json:"value"`
}

type submitAllRequest struct {
	Answers    map[string]string `json:"answers"`
	Tiebreaker flexString        `json:"tiebreaker"`
}

type sheetResponse struct {
	PlayerID string              `json:"player_id"`
	Slots    []domain.AnswerSlot `json:"slots"`
	Complete bool                `json:"complete"`
}

func newSheetResponse(sheet *domain.Sheet) sheetResponse {
	return sheetResponse{
		PlayerID: sheet.PlayerID,
		Slots:    sheet.Slots(),
		Complete: sheet.QuestionsComplete(),
	}
}

func (h *APIHandler) publicGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slug := ps.ByName("slug")
	game, questions, err := h.play.Game(r.Context(), slug)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	public := make([]domain.PublicQuestion, 0, len(questions))
	for _, q := range questions {
		public = append(public, q.Public())
	}
	writeJSON(w, http.StatusOK, publicGameResponse{
		ID:                game.ID,
		Slug:              game.Slug,
		Title:             game.Title,
		IsOpen:            game.IsOpen,
		OptionALabel:      game.OptionALabel,
		OptionBLabel:      game.OptionBLabel,
		OptionAEmoji:      game.OptionAEmoji,
		OptionBEmoji:      game.OptionBEmoji,
		TiebreakerEnabled: game.TiebreakerEnabled,
		TiebreakerPrompt:  game.TiebreakerPrompt,
		Theme:             game.Theme,
		Questions:         public,
		ShareURL:          h.shareURL(r, game.Slug),
	})
}

// qrCode renders a PNG QR code of the game's share link.
func (h *APIHandler) qrCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slug := ps.ByName("slug")
	if !domain.ValidSlug(slug) {
		writeError(w, http.StatusNotFound, "Game not found")
		return
	}
	png, err := qrcode.Encode(h.shareURL(r, slug), qrcode.Medium, qrSize)
	if err != nil {
		h.log.Error("qr generation failed", "slug", slug, "err", err)
		writeError(w, http.StatusInternalServerError, "QR generation failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}

func (h *APIHandler) join(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req joinRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	client := clientID(w, r)
	player, err := h.play.Join(r.Context(), client, ps.ByName("slug"), req.FirstName, req.LastName)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"player": player})
}

func (h *APIHandler) me(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	player, ok := h.currentPlayer(w, r, ps.ByName("slug"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"player": player})
}

func (h *APIHandler) sheet(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slug := ps.ByName("slug")
	player, ok := h.currentPlayer(w, r, slug)
	if !ok {
		return
	}
	sheet, err := h.play.Sheet(r.Context(), slug, player.ID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newSheetResponse(sheet))
}

func (h *APIHandler) selectAnswer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slug := ps.ByName("slug")
	player, ok := h.currentPlayer(w, r, slug)
	if !ok {
		return
	}
	var req selectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sheet, err := h.play.Select(r.Context(), slug, player.ID, ps.ByName("key"), req.Value.Value)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newSheetResponse(sheet))
}

func (h *APIHandler) submitAnswer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slug := ps.ByName("slug")
	player, ok := h.currentPlayer(w, r, slug)
	if !ok {
		return
	}
	sheet, err := h.play.Submit(r.Context(), slug, player.ID, ps.ByName("key"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newSheetResponse(sheet))
}

func (h *APIHandler) reopenAnswer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slug := ps.ByName("slug")
	player, ok := h.currentPlayer(w, r, slug)
	if !ok {
		return
	}
	sheet, err := h.play.Reopen(r.Context(), slug, player.ID, ps.ByName("key"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newSheetResponse(sheet))
}

func (h *APIHandler) submitAll(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slug := ps.ByName("slug")
	player, ok := h.currentPlayer(w, r, slug)
	if !ok {
		return
	}
	var req submitAllRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sheet, err := h.play.SubmitAll(r.Context(), slug, player.ID, app.BulkSubmission{
		Answers:    req.Answers,
		Tiebreaker: req.Tiebreaker.ptr(),
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newSheetResponse(sheet))
}

func (h *APIHandler) leaderboard(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	board, err := h.board.Leaderboard(r.Context(), ps.ByName("slug"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if board.Entries == nil {
		board.Entries = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, board)
}

// currentPlayer resolves the player this browser joined the game as.
func (h *APIHandler) currentPlayer(w http.ResponseWriter, r *http.Request, slug string) (domain.Player, bool) {
	client := clientID(w, r)
	player, err := h.play.Resume(r.Context(), client, slug)
	if err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) {
			writeError(w, http.StatusNotFound, "Join the game first")
			return domain.Player{}, false
		}
		writeServiceError(w, h.log, err)
		return domain.Player{}, false
	}
	return player, true
}

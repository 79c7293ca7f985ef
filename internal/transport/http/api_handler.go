package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"this-or-that/internal/app"
)

// APIHandler serves the JSON API for hosts and players.
type APIHandler struct {
	admin   *app.AdminService
	play    *app.PlayService
	board   *app.LeaderboardService
	auth    app.Authenticator
	log     *slog.Logger
	siteURL string
}

func NewAPIHandler(admin *app.AdminService, play *app.PlayService, board *app.LeaderboardService, authenticator app.Authenticator, logger *slog.Logger, siteURL string) *APIHandler {
	return &APIHandler{
		admin:   admin,
		play:    play,
		board:   board,
		auth:    authenticator,
		log:     logger,
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

// Routes registers every endpoint on a new router.
func (h *APIHandler) Routes() http.Handler {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		h.log.Error("panic serving request", "method", r.Method, "path", r.URL.Path, "panic", v)
		writeError(w, http.StatusInternalServerError, "Something went wrong, please try again")
	}
	mux.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	mux.GET("/healthz", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		_, _ = w.Write([]byte("ok"))
	})

	mux.POST("/api/admin/games", h.createGame)
	mux.GET("/api/admin/games", h.listGames)
	mux.PATCH("/api/admin/games/:gameId", h.updateGame)
	mux.GET("/api/admin/games/:gameId/questions", h.listQuestions)
	mux.POST("/api/admin/games/:gameId/questions", h.addQuestion)
	mux.PATCH("/api/admin/games/:gameId/questions/:questionId", h.updateQuestion)
	mux.GET("/api/admin/games/:gameId/players/:playerId", h.playerDetail)

	mux.GET("/api/g/:slug", h.publicGame)
	mux.GET("/api/g/:slug/qr", h.qrCode)
	mux.POST("/api/g/:slug/join", h.join)
	mux.GET("/api/g/:slug/me", h.me)
	mux.GET("/api/g/:slug/sheet", h.sheet)
	mux.PUT("/api/g/:slug/sheet/:key", h.selectAnswer)
	mux.POST("/api/g/:slug/sheet/:key/submit", h.submitAnswer)
	mux.POST("/api/g/:slug/sheet/:key/reopen", h.reopenAnswer)
	mux.POST("/api/g/:slug/submit", h.submitAll)
	mux.GET("/api/g/:slug/leaderboard", h.leaderboard)

	return withSecurityHeaders(mux)
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		securityHeaders(w)
		next.ServeHTTP(w, r)
	})
}

// shareURL is the player-facing link for a game, used for the QR code.
func (h *APIHandler) shareURL(r *http.Request, slug string) string {
	base := h.siteURL
	if base == "" {
		base = requestScheme(r) + "://" + r.Host
	}
	return base + "/g/" + slug
}

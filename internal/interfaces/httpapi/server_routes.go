package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/games", handler.CreateGame)
	mux.HandleFunc("GET /v1/games", handler.ListGames)
	mux.HandleFunc("GET /v1/games/{gameID}", handler.GetGame)
	mux.HandleFunc("POST /v1/games/{gameID}/join", handler.JoinGame)
	mux.HandleFunc("GET /v1/games/{gameID}/players", handler.ListParticipants)
	mux.HandleFunc("POST /v1/games/{gameID}/claims", handler.ClaimSquare)
	mux.HandleFunc("POST /v1/games/{gameID}/requests", handler.RequestSquares)
	mux.HandleFunc("POST /v1/games/{gameID}/messages", handler.SendMessage)
	mux.HandleFunc("GET /v1/games/{gameID}/messages/{player}", handler.GetMessageThread)
	mux.HandleFunc("GET /v1/games/{gameID}/quarters", handler.GetQuarterResults)
	mux.HandleFunc("GET /v1/scoreboard/{league}", handler.GetScoreboard)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	admin := func(next http.HandlerFunc) http.Handler {
		return RequireAdminToken(adminToken, next)
	}

	mux.Handle("GET /v1/games/{gameID}/full", admin(handler.GetGameAdmin))
	mux.Handle("DELETE /v1/games/{gameID}", admin(handler.DeleteGame))
	mux.Handle("DELETE /v1/games/{gameID}/claims", admin(handler.RemoveClaim))
	mux.Handle("POST /v1/games/{gameID}/lock", admin(handler.LockGame))
	mux.Handle("POST /v1/games/{gameID}/unlock", admin(handler.UnlockGame))
	mux.Handle("POST /v1/games/{gameID}/numbers/release", admin(handler.ReleaseNumbers))
	mux.Handle("POST /v1/games/{gameID}/quarters/resolve", admin(handler.ResolveQuarters))
	mux.Handle("GET /v1/games/{gameID}/requests", admin(handler.ListPendingRequests))
	mux.Handle("POST /v1/games/{gameID}/requests/{player}/approve", admin(handler.ApproveRequest))
	mux.Handle("POST /v1/games/{gameID}/requests/{player}/deny", admin(handler.DenyRequest))
	mux.Handle("POST /v1/games/{gameID}/players/{player}/ban", admin(handler.BanParticipant))
	mux.Handle("POST /v1/games/{gameID}/players/{player}/unban", admin(handler.UnbanParticipant))
	mux.Handle("POST /v1/games/{gameID}/players/{player}/bonus", admin(handler.GrantBonusClaims))
	mux.Handle("POST /v1/games/{gameID}/messages/{player}/reply", admin(handler.ReplyMessage))
	mux.Handle("GET /v1/games/{gameID}/messages", admin(handler.ListGameMessages))
}

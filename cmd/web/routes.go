package main

import (
	"net/http"

	"github.com/AdamBeresnev/doubles-bracket/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// The session writer cannot be hijacked, so websockets stay outside it
	r.Get("/ws/tournaments/{id}", app.serveWs)

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)
		app.sessionRoutes(r)
	})

	return r
}

func (app *application) sessionRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadAuthenticatedUser(app.sessionManager, app.userStore))

		r.Get("/login", app.loginPage)
		r.Get("/auth/{provider}", app.beginAuth)
		r.Get("/auth/{provider}/callback", app.completeAuth)
		r.Post("/auth/guest", app.guestLogin)
		r.Post("/logout", app.logout)

		r.Get("/tournaments/{id}", app.tournamentPage)
		r.Get("/tournaments/{id}/signup", app.signupPage)
		r.Post("/tournaments/{id}/players", app.signupSubmit)
		r.Get("/tournaments/{id}/qr.png", app.signupQRCode)
		r.Get("/players/{id}", app.playerPage)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(app.sessionManager, app.userStore))

		r.Get("/", app.indexPage)
		r.Post("/tournaments", app.createTournamentForm)
		r.Post("/tournaments/{id}/start", app.startTournamentForm)
		r.Post("/tournaments/{id}/reset", app.resetBracketForm)
		r.Delete("/tournaments/{id}/players/{playerID}", app.removePlayerForm)
		r.Post("/tournaments/{id}/matches/{matchID}/winner", app.selectWinnerForm)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   app.cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		r.Get("/tournaments/{id}", app.apiGetTournament)
		r.Post("/tournaments/{id}/players", app.apiRegisterPlayer)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIAuth(app.sessionManager, app.userStore))

			r.Get("/tournaments", app.apiListTournaments)
			r.Post("/tournaments", app.apiCreateTournament)
			r.Delete("/tournaments/{id}/players/{playerID}", app.apiRemovePlayer)
			r.Post("/tournaments/{id}/start", app.apiStartTournament)
			r.Post("/tournaments/{id}/reset", app.apiResetBracket)
			r.Post("/tournaments/{id}/reconcile", app.apiReconcile)
			r.Post("/tournaments/{id}/matches/{matchID}/winner", app.apiSelectWinner)
		})
	})
}

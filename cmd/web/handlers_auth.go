package main

import (
	"net/http"

	"github.com/AdamBeresnev/doubles-bracket/internal/httputil"
	"github.com/AdamBeresnev/doubles-bracket/internal/middleware"
	"github.com/AdamBeresnev/doubles-bracket/views"
	"github.com/go-chi/chi/v5"
	"github.com/markbates/goth/gothic"
)

func (app *application) loginPage(w http.ResponseWriter, r *http.Request) {
	if views.GetUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	views.Render(w, r, views.LoginPage(app.providers))
}

func (app *application) beginAuth(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	gothic.BeginAuthHandler(w, gothic.GetContextWithProvider(r, provider))
}

func (app *application) completeAuth(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	r = gothic.GetContextWithProvider(r, provider)

	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		httputil.BadRequest(w, "Authentication failure", err)
		return
	}

	user, err := app.users.FindOrCreateUserByProvider(r.Context(), gothUser)
	if err != nil {
		httputil.InternalServerError(w, "Failed to find or create user", err)
		return
	}

	if err := app.sessionManager.RenewToken(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to renew session", err)
		return
	}
	app.sessionManager.Put(r.Context(), middleware.SessionUserIDKey, user.ID.String())

	http.Redirect(w, r, "/", http.StatusFound)
}

func (app *application) guestLogin(w http.ResponseWriter, r *http.Request) {
	// A guest who is already logged in keeps their account
	if views.GetUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	user, err := app.users.CreateGuestUser(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to login as guest", err)
		return
	}

	if err := app.sessionManager.RenewToken(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to renew session", err)
		return
	}
	app.sessionManager.Put(r.Context(), middleware.SessionUserIDKey, user.ID.String())
	http.Redirect(w, r, "/", http.StatusFound)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to log out", err)
		return
	}
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

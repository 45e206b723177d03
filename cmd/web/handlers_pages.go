package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/doubles-bracket/internal/bracket"
	"github.com/AdamBeresnev/doubles-bracket/internal/httputil"
	"github.com/AdamBeresnev/doubles-bracket/internal/middleware"
	"github.com/AdamBeresnev/doubles-bracket/internal/service"
	"github.com/AdamBeresnev/doubles-bracket/views"
)

func (app *application) signupURL(t *bracket.Tournament) string {
	return fmt.Sprintf("%s/tournaments/%s/signup", app.cfg.BaseURL, t.ID)
}

// hxRedirect sends htmx to another page, or falls back to a plain redirect.
func hxRedirect(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (app *application) indexPage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	tournaments, err := app.tournaments.GetTournamentsForUser(r.Context(), userID)
	if err != nil {
		httputil.InternalServerError(w, "Failed to get tournaments", err)
		return
	}
	views.Render(w, r, views.Index(tournaments))
}

func (app *application) createTournamentForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	tournament, err := app.tournaments.CreateTournament(r.Context(), userID, r.Form.Get("name"))
	if err != nil {
		serviceError(w, "Failed to create tournament", err)
		return
	}
	hxRedirect(w, r, fmt.Sprintf("/tournaments/%s", tournament.ID))
}

func (app *application) tournamentPage(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.NotFound(w, "Tournament not found", err)
		return
	}

	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		serviceError(w, "Failed to get tournament", err)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	views.Render(w, r, views.TournamentPage(views.TournamentPageData{
		Tournament: data.Tournament,
		Players:    data.Players,
		Bracket:    views.PrepareBracketData(data.Players, data.State),
		SignupURL:  app.signupURL(data.Tournament),
		IsOwner:    ok && data.Tournament.IsOwnedBy(userID),
	}))
}

func (app *application) startTournamentForm(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.NotFound(w, "Tournament not found", err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if _, err := app.tournaments.StartTournament(r.Context(), userID, id); err != nil {
		serviceError(w, "Failed to start tournament", err)
		return
	}
	hxRedirect(w, r, fmt.Sprintf("/tournaments/%s", id))
}

func (app *application) resetBracketForm(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.NotFound(w, "Tournament not found", err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if _, err := app.tournaments.ResetBracket(r.Context(), userID, id); err != nil {
		serviceError(w, "Failed to reset bracket", err)
		return
	}
	hxRedirect(w, r, fmt.Sprintf("/tournaments/%s", id))
}

func (app *application) removePlayerForm(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.NotFound(w, "Tournament not found", err)
		return
	}
	playerID, err := uuidParam(r, "playerID")
	if err != nil {
		httputil.NotFound(w, "Player not found", err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := app.players.RemovePlayer(r.Context(), userID, id, playerID); err != nil {
		serviceError(w, "Failed to remove player", err)
		return
	}
	hxRedirect(w, r, fmt.Sprintf("/tournaments/%s", id))
}

func (app *application) selectWinnerForm(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.NotFound(w, "Tournament not found", err)
		return
	}
	matchID, err := uuidParam(r, "matchID")
	if err != nil {
		httputil.NotFound(w, "Match not found", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	team, err := strconv.Atoi(r.Form.Get("team"))
	if err != nil {
		httputil.BadRequest(w, "Invalid team", err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if _, err := app.matches.SelectWinner(r.Context(), userID, id, matchID, bracket.TeamSlot(team)); err != nil {
		serviceError(w, "Failed to record winner", err)
		return
	}
	hxRedirect(w, r, fmt.Sprintf("/tournaments/%s", id))
}

func (app *application) signupPage(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.NotFound(w, "Tournament not found", err)
		return
	}

	tournament, err := app.tournaments.GetTournament(r.Context(), id)
	if err != nil {
		serviceError(w, "Failed to get tournament", err)
		return
	}
	views.Render(w, r, views.SignupPage(tournament, ""))
}

func (app *application) signupSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.NotFound(w, "Tournament not found", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}

	player, err := app.players.RegisterPlayer(r.Context(), id, r.Form.Get("player_name"))
	if errors.Is(err, service.ErrValidationFailed) || errors.Is(err, service.ErrRegistrationClosed) {
		tournament, getErr := app.tournaments.GetTournament(r.Context(), id)
		if getErr != nil {
			serviceError(w, "Failed to get tournament", getErr)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(errorStatus(err))
		views.Render(w, r, views.SignupPage(tournament, err.Error()))
		return
	}
	if err != nil {
		serviceError(w, "Failed to register player", err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/players/%s", player.ID), http.StatusSeeOther)
}

func (app *application) playerPage(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.NotFound(w, "Player not found", err)
		return
	}

	player, err := app.players.GetPlayer(r.Context(), id)
	if err != nil {
		serviceError(w, "Failed to get player", err)
		return
	}
	tournament, err := app.tournaments.GetTournament(r.Context(), player.TournamentID)
	if err != nil {
		serviceError(w, "Failed to get tournament", err)
		return
	}
	views.Render(w, r, views.PlayerPage(player, tournament))
}

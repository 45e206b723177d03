package main

import (
	"net/http"

	"github.com/AdamBeresnev/doubles-bracket/internal/bracket"
	"github.com/AdamBeresnev/doubles-bracket/internal/httputil"
	"github.com/AdamBeresnev/doubles-bracket/internal/middleware"
	"github.com/AdamBeresnev/doubles-bracket/internal/utils"
	"github.com/AdamBeresnev/doubles-bracket/views"
)

type tournamentResponse struct {
	Tournament *bracket.Tournament `json:"tournament"`
	Players    []bracket.Player    `json:"players"`
	Bracket    views.BracketData   `json:"bracket"`
	SignupURL  string              `json:"signup_url"`
}

type startResponse struct {
	Matches       []bracket.Match  `json:"matches"`
	Teams         []bracket.Team   `json:"teams"`
	UnusedPlayers []bracket.Player `json:"unused_players"`
}

type winnerResponse struct {
	Match    bracket.Match     `json:"match"`
	Created  []bracket.Match   `json:"created"`
	Bracket  views.BracketData `json:"bracket"`
	Champion *bracket.Team     `json:"champion"`
}

func (app *application) apiGetTournament(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.ErrorJSON(w, http.StatusNotFound, "tournament not found", err)
		return
	}

	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		serviceErrorJSON(w, "failed to get tournament", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tournamentResponse{
		Tournament: data.Tournament,
		Players:    data.Players,
		Bracket:    views.PrepareBracketData(data.Players, data.State),
		SignupURL:  app.signupURL(data.Tournament),
	})
}

func (app *application) apiListTournaments(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	tournaments, err := app.tournaments.GetTournamentsForUser(r.Context(), userID)
	if err != nil {
		serviceErrorJSON(w, "failed to get tournaments", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tournaments": tournaments})
}

func (app *application) apiCreateTournament(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		httputil.ErrorJSON(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	tournament, err := app.tournaments.CreateTournament(r.Context(), userID, input.Name)
	if err != nil {
		serviceErrorJSON(w, "failed to create tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"tournament": tournament})
}

func (app *application) apiRegisterPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.ErrorJSON(w, http.StatusNotFound, "tournament not found", err)
		return
	}
	var input struct {
		PlayerName string `json:"player_name"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		httputil.ErrorJSON(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	player, err := app.players.RegisterPlayer(r.Context(), id, input.PlayerName)
	if err != nil {
		serviceErrorJSON(w, "failed to register player", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"player": player})
}

func (app *application) apiRemovePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.ErrorJSON(w, http.StatusNotFound, "tournament not found", err)
		return
	}
	playerID, err := uuidParam(r, "playerID")
	if err != nil {
		httputil.ErrorJSON(w, http.StatusNotFound, "player not found", err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := app.players.RemovePlayer(r.Context(), userID, id, playerID); err != nil {
		serviceErrorJSON(w, "failed to remove player", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) apiStartTournament(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.ErrorJSON(w, http.StatusNotFound, "tournament not found", err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	result, err := app.tournaments.StartTournament(r.Context(), userID, id)
	if err != nil {
		serviceErrorJSON(w, "failed to start tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, startResponse{
		Matches:       utils.NonNil(result.Matches),
		Teams:         utils.NonNil(result.Teams),
		UnusedPlayers: utils.NonNil(result.Unused),
	})
}

func (app *application) apiResetBracket(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.ErrorJSON(w, http.StatusNotFound, "tournament not found", err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	deleted, err := app.tournaments.ResetBracket(r.Context(), userID, id)
	if err != nil {
		serviceErrorJSON(w, "failed to reset bracket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"deleted_matches": deleted})
}

func (app *application) apiReconcile(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.ErrorJSON(w, http.StatusNotFound, "tournament not found", err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	created, err := app.matches.Reconcile(r.Context(), userID, id)
	if err != nil {
		serviceErrorJSON(w, "failed to reconcile bracket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"created": utils.NonNil(created)})
}

func (app *application) apiSelectWinner(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.ErrorJSON(w, http.StatusNotFound, "tournament not found", err)
		return
	}
	matchID, err := uuidParam(r, "matchID")
	if err != nil {
		httputil.ErrorJSON(w, http.StatusNotFound, "match not found", err)
		return
	}
	var input struct {
		Team bracket.TeamSlot `json:"team"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		httputil.ErrorJSON(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	adv, err := app.matches.SelectWinner(r.Context(), userID, id, matchID, input.Team)
	if err != nil {
		serviceErrorJSON(w, "failed to record winner", err)
		return
	}

	players, err := app.players.GetPlayers(r.Context(), id)
	if err != nil {
		serviceErrorJSON(w, "failed to get players", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, winnerResponse{
		Match:    adv.Match,
		Created:  utils.NonNil(adv.Created),
		Bracket:  views.PrepareBracketData(players, adv.State),
		Champion: adv.Champion,
	})
}

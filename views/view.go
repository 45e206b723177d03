package views

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/doubles-bracket/internal/bracket"
	"github.com/AdamBeresnev/doubles-bracket/internal/middleware"
	users "github.com/AdamBeresnev/doubles-bracket/internal/user"
	"github.com/a-h/templ"
	"github.com/google/uuid"
)

func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		slog.Error("failed to render page", "path", r.URL.Path, "error", err)
		return err
	}
	return nil
}

// GetUser returns the logged in user, or nil for anonymous visitors.
func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

func tournamentPath(id uuid.UUID, suffix string) string {
	return "/tournaments/" + id.String() + suffix
}

func matchWinnerPath(tournamentID, matchID uuid.UUID) string {
	return tournamentPath(tournamentID, "/matches/"+matchID.String()+"/winner")
}

func teamClass(m MatchView, slot bracket.TeamSlot) string {
	if m.WinningTeam == slot {
		return "team winner"
	}
	return "team"
}

// teamVals is the hx-vals payload sent when picking a winner.
func teamVals(slot bracket.TeamSlot) string {
	return fmt.Sprintf(`{"team": %d}`, slot)
}

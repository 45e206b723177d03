package views

import (
	"github.com/AdamBeresnev/doubles-bracket/internal/bracket"
	"github.com/google/uuid"
)

type MatchView struct {
	ID          uuid.UUID        `json:"id"`
	Order       int              `json:"order"`
	Team1Name   string           `json:"team1_name"`
	Team2Name   string           `json:"team2_name,omitempty"`
	IsBye       bool             `json:"is_bye"`
	WinningTeam bracket.TeamSlot `json:"winning_team"`
}

type RoundView struct {
	Number  int         `json:"number"`
	Label   string      `json:"label"`
	Matches []MatchView `json:"matches"`
}

// BracketData is the bracket with player ids resolved to names, shared by the
// bracket page and the public JSON endpoint.
type BracketData struct {
	Rounds      []RoundView `json:"rounds"`
	Champion    string      `json:"champion,omitempty"`
	HasChampion bool        `json:"has_champion"`
}

type TournamentPageData struct {
	Tournament *bracket.Tournament
	Players    []bracket.Player
	Bracket    BracketData
	SignupURL  string
	IsOwner    bool
}

func PrepareBracketData(players []bracket.Player, state *bracket.State) BracketData {
	roster := bracket.NewRoster(players)
	data := BracketData{Rounds: make([]RoundView, 0, len(state.Rounds()))}

	for _, r := range state.Rounds() {
		round := RoundView{
			Number: r,
			Label:  state.RoundLabel(r),
		}
		for _, m := range state.MatchesForRound(r) {
			mv := MatchView{
				ID:          m.ID,
				Order:       m.Order,
				IsBye:       m.IsBye(),
				WinningTeam: m.WinningTeam,
			}
			if m.Team1 != nil {
				mv.Team1Name = roster.TeamName(*m.Team1)
			}
			if m.Team2 != nil {
				mv.Team2Name = roster.TeamName(*m.Team2)
			}
			round.Matches = append(round.Matches, mv)
		}
		data.Rounds = append(data.Rounds, round)
	}

	if champion, ok := state.Champion(); ok {
		data.Champion = roster.TeamName(champion)
		data.HasChampion = true
	}

	return data
}

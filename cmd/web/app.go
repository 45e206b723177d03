package main

import (
	"github.com/AdamBeresnev/doubles-bracket/internal/config"
	"github.com/AdamBeresnev/doubles-bracket/internal/realtime"
	"github.com/AdamBeresnev/doubles-bracket/internal/service"
	"github.com/AdamBeresnev/doubles-bracket/internal/store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

type application struct {
	cfg            *config.Config
	sessionManager *scs.SessionManager
	userStore      *store.UserStore
	users          *service.UserService
	tournaments    *service.TournamentService
	players        *service.PlayerService
	matches        *service.MatchService
	hub            *realtime.Hub
	providers      []string
}

func newApplication(cfg *config.Config, database *sqlx.DB, sessionManager *scs.SessionManager, events service.Publisher, hub *realtime.Hub, providers []string) *application {
	tournamentStore := store.NewTournamentStore(database)
	userStore := store.NewUserStore(database)

	return &application{
		cfg:            cfg,
		sessionManager: sessionManager,
		userStore:      userStore,
		users:          service.NewUserService(database, userStore),
		tournaments:    service.NewTournamentService(database, tournamentStore, events, newShuffleSource(cfg.ShuffleSeed)),
		players:        service.NewPlayerService(database, tournamentStore, events),
		matches:        service.NewMatchService(database, tournamentStore, events),
		hub:            hub,
		providers:      providers,
	}
}

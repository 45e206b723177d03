package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDeclined marks a request that was refused before anything was written.
	ErrDeclined         = errors.New("declined")
	ErrValidationFailed = errors.New("validation failed")

	ErrForbiddenOperation  = fmt.Errorf("%w: only the organizer can do that", ErrDeclined)
	ErrInconsistentBracket = errors.New("bracket is in an inconsistent state")
)

var (
	ErrTournamentNotFound = fmt.Errorf("tournament %w", ErrNotFound)
	ErrPlayerNotFound     = fmt.Errorf("player %w", ErrNotFound)
	ErrMatchNotFound      = fmt.Errorf("match %w", ErrNotFound)
)

var (
	ErrTournamentNameRequired = fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	ErrPlayerNameRequired     = fmt.Errorf("%w: player name is required", ErrValidationFailed)
	ErrPlayerNameTooLong      = fmt.Errorf("%w: player name must be at most %d characters", ErrValidationFailed, maxPlayerNameLength)

	// Also a declined request, the match is left untouched
	ErrInvalidTeam = fmt.Errorf("%w, %w: team must be 1 or 2", ErrValidationFailed, ErrDeclined)
)

var (
	ErrTournamentNotPlaying     = fmt.Errorf("%w: tournament is not in progress", ErrDeclined)
	ErrTournamentAlreadyStarted = fmt.Errorf("%w: tournament has already started", ErrDeclined)
	ErrRegistrationClosed       = fmt.Errorf("%w: registration is closed", ErrDeclined)
	ErrNotEnoughPlayers         = fmt.Errorf("%w: at least %d players are needed to start", ErrDeclined, minPlayers)
	ErrMatchAlreadyDecided      = fmt.Errorf("%w: match already has a winner", ErrDeclined)
	ErrByeHasNoOpponent         = fmt.Errorf("%w: a bye has no second team", ErrDeclined)
)

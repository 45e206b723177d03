package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/doubles-bracket/internal/config"
	"github.com/AdamBeresnev/doubles-bracket/internal/httputil"
	"github.com/AdamBeresnev/doubles-bracket/internal/store"
	users "github.com/AdamBeresnev/doubles-bracket/internal/user"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/google"
)

type ContextKey string

const UserIDKey ContextKey = "userID"

// SessionUserIDKey is where the logged in user's id lives in the session.
const SessionUserIDKey = "userID"

// InitAuth registers the OAuth providers that have credentials configured and
// returns their names.
func InitAuth(cfg config.AuthConfig) []string {
	var providers []goth.Provider
	if cfg.DiscordKey != "" {
		providers = append(providers, discord.New(cfg.DiscordKey, cfg.DiscordSecret, cfg.DiscordCallbackURL, discord.ScopeIdentify, discord.ScopeEmail))
	}
	if cfg.GoogleKey != "" {
		providers = append(providers, google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.GoogleCallbackURL, "email", "profile"))
	}

	goth.ClearProviders()
	goth.UseProviders(providers...)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	if len(names) == 0 {
		slog.Info("no OAuth providers configured, only guest login is available")
	}
	return names
}

// authenticate puts the session's user into the request context. It returns
// false when nobody is logged in.
func authenticate(sessionManager *scs.SessionManager, userStore *store.UserStore, r *http.Request) (*http.Request, bool) {
	userIDStr := sessionManager.GetString(r.Context(), SessionUserIDKey)
	if userIDStr == "" {
		return r, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		sessionManager.Remove(r.Context(), SessionUserIDKey)
		return r, false
	}

	ctx := context.WithValue(r.Context(), UserIDKey, userID)

	// Add the user to context so that we can easily get it whenever we want
	user, err := userStore.GetUser(ctx, userID)
	if err != nil {
		slog.Warn("session refers to an unknown user", "user_id", userID, "error", err)
		sessionManager.Remove(r.Context(), SessionUserIDKey)
		return r, false
	}
	ctx = context.WithValue(ctx, users.UserKey, user)

	return r.WithContext(ctx), true
}

// LoadAuthenticatedUser adds the user to the context when there is one and
// lets anonymous visitors through.
func LoadAuthenticatedUser(sessionManager *scs.SessionManager, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, _ = authenticate(sessionManager, userStore, r)
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth sends anonymous visitors to the login page.
func RequireAuth(sessionManager *scs.SessionManager, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, ok := authenticate(sessionManager, userStore, r)
			if !ok {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPIAuth answers anonymous API calls with 401.
func RequireAPIAuth(sessionManager *scs.SessionManager, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, ok := authenticate(sessionManager, userStore, r)
			if !ok {
				httputil.ErrorJSON(w, http.StatusUnauthorized, "authentication required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(UserIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	id, ok := val.(uuid.UUID)
	return id, ok
}

func GetAuthenticatedUser(ctx context.Context) *users.User {
	val := ctx.Value(users.UserKey)
	if val == nil {
		return nil
	}
	user, ok := val.(*users.User)
	if !ok {
		return nil
	}
	return user
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/math-adventure/backend/internal/apperr"
	"github.com/math-adventure/backend/internal/models"
)

type contextKey int

const (
	playerKey contextKey = iota
	sessionKey
	requestIDKey
)

// SessionResolver turns a bearer token into the session's player.
type SessionResolver interface {
	Resolve(ctx context.Context, bearer string) (*models.Player, *models.Session, error)
}

// RequireAuth rejects requests without a live session.
func RequireAuth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			player, session, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if apperr.Is(err, apperr.Unauthorized) {
					log.WithField("path", r.URL.Path).Debug("rejected token")
					writeError(w, http.StatusUnauthorized, "Invalid or expired token")
					return
				}
				log.WithError(err).Error("session lookup failed")
				writeError(w, http.StatusInternalServerError, "Authentication error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), player, session)))
		})
	}
}

// OptionalAuth attaches the player when a valid token is present and lets
// every request through.
func OptionalAuth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				player, session, err := resolver.Resolve(r.Context(), token)
				if err == nil {
					r = r.WithContext(WithSession(r.Context(), player, session))
				} else if !apperr.Is(err, apperr.Unauthorized) {
					log.WithError(err).Warn("optional session lookup failed")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

func WithSession(ctx context.Context, player *models.Player, session *models.Session) context.Context {
	ctx = context.WithValue(ctx, playerKey, player)
	return context.WithValue(ctx, sessionKey, session)
}

func Player(ctx context.Context) (*models.Player, bool) {
	p, ok := ctx.Value(playerKey).(*models.Player)
	return p, ok && p != nil
}

func PlayerID(ctx context.Context) (int64, bool) {
	p, ok := Player(ctx)
	if !ok {
		return 0, false
	}
	return p.ID, true
}

func Session(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*models.Session)
	return s, ok && s != nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}

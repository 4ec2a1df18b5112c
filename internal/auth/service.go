package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/math-adventure/backend/internal/apperr"
	"github.com/math-adventure/backend/internal/database"
	"github.com/math-adventure/backend/internal/models"
)

type Service struct {
	store    *Store
	tokens   *TokenIssuer
	ttl      time.Duration
	hashCost int
	now      func() time.Time
}

func NewService(store *Store, tokens *TokenIssuer, ttl time.Duration) *Service {
	return &Service{
		store:    store,
		tokens:   tokens,
		ttl:      ttl,
		hashCost: bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req, err := ValidateRegistration(req)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Pin.String()), s.hashCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "hash pin")
	}

	player := &models.Player{
		Username:  req.Username,
		Email:     req.Email,
		Avatar:    req.Avatar,
		PinHash:   string(hash),
		CreatedAt: s.now().Truncate(time.Second),
	}
	var session *models.Session

	err = s.store.db.InTx(ctx, func(tx *database.Tx) error {
		taken, err := s.store.UsernameExists(ctx, tx, player.Username)
		if err != nil {
			return err
		}
		if taken {
			return apperr.New(apperr.Conflict, "Player name already taken")
		}
		taken, err = s.store.EmailExists(ctx, tx, player.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperr.New(apperr.Conflict, "Email already registered")
		}

		if err := s.store.CreatePlayer(ctx, tx, player); err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Wrap(apperr.Conflict, err, "Player name already taken")
			}
			return err
		}
		session, err = s.newSession(ctx, tx, player.ID)
		return err
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to create player. Please try again.")
	}

	log.WithFields(log.Fields{"player_id": player.ID, "username": player.Username}).Info("player registered")
	return s.authResponse(player, session)
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	username := models.Sanitize(req.Username)
	pin := req.Pin.String()
	if username == "" || pin == "" {
		return nil, apperr.New(apperr.InvalidArgument, "Player name and PIN required")
	}

	player, err := s.store.PlayerByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		log.WithField("username", username).Warn("login failed: unknown player")
		return nil, apperr.New(apperr.NotFound, "User not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.PinHash), []byte(pin)); err != nil {
		log.WithField("player_id", player.ID).Warn("login failed: incorrect pin")
		return nil, apperr.New(apperr.Unauthorized, "Incorrect PIN")
	}

	session, err := s.newSession(ctx, s.store.db, player.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to create session. Please try again.")
	}

	log.WithFields(log.Fields{"player_id": player.ID, "username": player.Username}).Info("player logged in")
	return s.authResponse(player, session)
}

func (s *Service) Logout(ctx context.Context, session *models.Session) error {
	if err := s.store.DeleteSession(ctx, session.Token); err != nil {
		return apperr.Wrap(apperr.Persistence, err, "Failed to log out")
	}
	log.WithField("player_id", session.PlayerID).Info("player logged out")
	return nil
}

// Resolve verifies a bearer token and loads the live session behind it.
func (s *Service) Resolve(ctx context.Context, bearer string) (*models.Player, *models.Session, error) {
	claims, err := s.tokens.Parse(bearer)
	if err != nil {
		return nil, nil, err
	}

	player, session, err := s.store.LiveSession(ctx, claims.SessionID, s.now())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, apperr.New(apperr.Unauthorized, "Invalid or expired token")
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Persistence, err, "Authentication error")
	}
	if session.PlayerID != claims.PlayerID {
		return nil, nil, apperr.New(apperr.Unauthorized, "Invalid or expired token")
	}
	return player, session, nil
}

func (s *Service) UsernameExists(ctx context.Context, username string) (bool, error) {
	username = models.Sanitize(username)
	if username == "" {
		return false, apperr.New(apperr.InvalidArgument, "Player name required")
	}
	exists, err := s.store.UsernameExists(ctx, s.store.db, username)
	if err != nil {
		return false, apperr.Wrap(apperr.Persistence, err, "Failed to check player name")
	}
	return exists, nil
}

// CleanupExpiredSessions is run by the scheduler.
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.now())
}

func (s *Service) newSession(ctx context.Context, q database.Querier, playerID int64) (*models.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	session := &models.Session{
		PlayerID:  playerID,
		Token:     id,
		ExpiresAt: s.now().Add(s.ttl).Truncate(time.Second),
	}
	if err := s.store.CreateSession(ctx, q, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) authResponse(player *models.Player, session *models.Session) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(*session, s.now())
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to generate token")
	}
	return &models.AuthResponse{
		Player:    player.Public(),
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

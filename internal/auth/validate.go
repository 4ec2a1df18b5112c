package auth

import (
	"regexp"
	"strings"

	"github.com/math-adventure/backend/internal/apperr"
	"github.com/math-adventure/backend/internal/models"
)

const (
	MinPinLength = 4
	// bcrypt ignores everything past 72 bytes.
	MaxPinLength = 72
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

// ValidateRegistration checks a sign-up request and returns it normalized:
// trimmed, with name and email lowercased. The first failing rule wins.
func ValidateRegistration(req models.RegisterRequest) (models.RegisterRequest, error) {
	username := models.Sanitize(req.Username)
	email := models.Sanitize(req.Email)
	pin := req.Pin.String()

	switch {
	case username == "":
		return req, apperr.New(apperr.InvalidArgument, "Player name is required")
	case email == "":
		return req, apperr.New(apperr.InvalidArgument, "Email is required")
	case !emailPattern.MatchString(email):
		return req, apperr.New(apperr.InvalidArgument, "Please enter a valid email address")
	case len(pin) < MinPinLength:
		return req, apperr.New(apperr.InvalidArgument, "PIN must be at least 4 digits")
	case len(pin) > MaxPinLength:
		return req, apperr.New(apperr.InvalidArgument, "PIN is too long")
	case !usernamePattern.MatchString(username):
		return req, apperr.New(apperr.InvalidArgument, "Player name must be 3-20 characters (letters, numbers, underscore only)")
	}

	req.Username = strings.ToLower(username)
	req.Email = strings.ToLower(email)
	req.Avatar = models.Sanitize(req.Avatar)
	if req.Avatar == "" {
		req.Avatar = models.DefaultAvatar
	}
	return req, nil
}

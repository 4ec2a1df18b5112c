package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// DefaultAvatar is assigned at registration when none is chosen.
const DefaultAvatar = "🧒"

type Player struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Email     string    `json:"-"`
	PinHash   string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips fields only the owner should see.
func (p Player) Public() PublicPlayer {
	return PublicPlayer{ID: p.ID, Username: p.Username, Avatar: p.Avatar}
}

type PublicPlayer struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Sanitize trims surrounding whitespace from user supplied names.
func Sanitize(s string) string {
	return strings.TrimSpace(s)
}

type RegisterRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Avatar   string     `json:"avatar"`
	Pin      FlexString `json:"pin"`
}

type LoginRequest struct {
	Username string     `json:"username"`
	Pin      FlexString `json:"pin"`
}

type AuthResponse struct {
	Player    PublicPlayer `json:"player"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type Session struct {
	ID        int64
	PlayerID  int64
	Token     string
	ExpiresAt time.Time
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// FlexString decodes a JSON string or number. Clients send PINs and answers
// as either.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

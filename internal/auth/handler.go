package auth

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/math-adventure/backend/internal/apperr"
	"github.com/math-adventure/backend/internal/middleware"
	"github.com/math-adventure/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type playerResponse struct {
	Player *models.PublicPlayer `json:"player"`
}

type validateResponse struct {
	Valid  bool                 `json:"valid"`
	Player *models.PublicPlayer `json:"player,omitempty"`
}

func (h *Handler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.UsernameExists(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.Session(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	if err := h.service.Logout(r.Context(), session); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	player, ok := middleware.Player(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	pub := player.Public()
	writeJSON(w, http.StatusOK, playerResponse{Player: &pub})
}

// Validate is mounted behind OptionalAuth: a missing or bad token is a
// normal {valid:false} answer.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	player, ok := middleware.Player(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false})
		return
	}

	pub := player.Public()
	writeJSON(w, http.StatusOK, validateResponse{Valid: true, Player: &pub})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Error("auth request failed")
	}
	writeJSON(w, status, models.ErrorResponse{Error: apperr.Message(err)})
}

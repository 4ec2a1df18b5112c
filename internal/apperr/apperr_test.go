package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(InvalidArgument, "bad type"), http.StatusBadRequest},
		{New(NotFound, "no challenge"), http.StatusNotFound},
		{New(Conflict, "already completed"), http.StatusConflict},
		{New(Unauthorized, "no token"), http.StatusUnauthorized},
		{Wrap(Persistence, errors.New("disk full"), "save failed"), http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := New(Conflict, "Avatar not unlocked")
	wrapped := fmt.Errorf("select avatar: %w", base)

	if !Is(wrapped, Conflict) {
		t.Errorf("KindOf(wrapped) = %v, want conflict", KindOf(wrapped))
	}
	if got := Message(wrapped); got != "Avatar not unlocked" {
		t.Errorf("Message(wrapped) = %q, want %q", got, "Avatar not unlocked")
	}
}

func TestMessageHidesCause(t *testing.T) {
	err := Wrap(Persistence, errors.New("pq: connection refused"), "Failed to save answer")
	if got := Message(err); got != "Failed to save answer" {
		t.Errorf("Message() = %q", got)
	}
	if got := Message(errors.New("pq: secret detail")); got != "Internal server error" {
		t.Errorf("Message(unclassified) = %q", got)
	}
	if Wrap(NotFound, nil, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

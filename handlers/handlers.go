package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"notedesk/auth"
	"notedesk/store"
)

// Handler binds the store and token service to HTTP endpoints. Storage
// failures are logged with their cause and surfaced to the client as a
// generic message only.
type Handler struct {
	store    *store.Store
	tokens   *auth.TokenService
	log      *zap.Logger
	validate *validator.Validate
}

func New(s *store.Store, tokens *auth.TokenService, log *zap.Logger) *Handler {
	return &Handler{
		store:    s,
		tokens:   tokens,
		log:      log,
		validate: validator.New(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var errBadOriginID = errors.New("origin_id must be a number or null")

// looseID accepts a JSON number, a numeric string, or null; an empty
// string also counts as absent. Anything else fails the decode.
type looseID struct {
	set bool
	val int64
}

func (l *looseID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return errBadOriginID
	}
	l.set = true
	l.val = v
	return nil
}

func (l looseID) ptr() *int64 {
	if !l.set {
		return nil
	}
	v := l.val
	return &v
}

// looseBool coerces JSON true or the string "true" to true and everything
// else to false, never failing the decode.
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	*b = looseBool(strings.Trim(string(data), `"`) == "true")
	return nil
}

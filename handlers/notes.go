package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"notedesk/middleware"
	"notedesk/models"
	"notedesk/store"
)

type createNoteRequest struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	IsGlobal looseBool `json:"is_global"`
	OriginID looseID   `json:"origin_id"`
}

type updateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.Identity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token missing")
		return
	}

	notes, err := h.store.ListVisible(r.Context(), ident.UserID)
	if err != nil {
		h.log.Error("fetch notes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not fetch notes")
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.Identity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token missing")
		return
	}

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, errBadOriginID) {
			writeError(w, http.StatusBadRequest, errBadOriginID.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.store.CreateNote(r.Context(), store.NoteParams{
		UserID:   ident.UserID,
		Title:    req.Title,
		Content:  req.Content,
		IsGlobal: bool(req.IsGlobal),
		OriginID: req.OriginID.ptr(),
	})
	if err != nil {
		h.log.Error("create note", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create note")
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote records an edit as a fresh row pointing back at the edited
// note; the edited row itself is never touched.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.Identity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token missing")
		return
	}

	originID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.store.CreateVersion(r.Context(), originID, ident.UserID, req.Title, req.Content)
	if err != nil {
		h.log.Error("update note", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not update note")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote marks a row deleted and returns it, or null when no row
// matched the id.
// TODO: restrict deletion to the note owner.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	note, err := h.store.SoftDelete(r.Context(), noteID)
	if err != nil {
		h.log.Error("delete note", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not delete note")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chat-planet/chat-service/internal/domain"
	"github.com/chat-planet/chat-service/internal/registry"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	rooms *registry.Registry
}

func NewHandler(rooms *registry.Registry) *Handler {
	return &Handler{rooms: rooms}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.rooms.ListRooms())
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	name := strings.TrimSpace(req.RoomName)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: domain.ErrEmptyRoomName.Error()})
		return
	}
	if !h.rooms.CreateRoom(name) {
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: domain.ErrRoomExists.Error()})
		return
	}

	slog.Info("room created", "room", name)
	writeJSON(w, http.StatusOK, h.rooms.ListRooms())
}

// DELETE /rooms/{name}
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.rooms.DeleteRoom(name) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: domain.ErrRoomNotFound.Error()})
		return
	}

	slog.Info("room deleted", "room", name)
	writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// GET /rooms/{name}/members
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	members, err := h.rooms.ListMembers(name)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: domain.ErrRoomNotFound.Error()})
			return
		}
		slog.Error("handler.ListMembers:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, members)
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

// RoomHandler serves chat rooms, their members and messages
type RoomHandler struct {
	roomService    *service.RoomService
	messageService *service.MessageService
	logger         *zap.Logger
}

func NewRoomHandler(roomService *service.RoomService, messageService *service.MessageService, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{
		roomService:    roomService,
		messageService: messageService,
		logger:         logger,
	}
}

// Overview lists the caller's rooms with last message and unread count
func (h *RoomHandler) Overview(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomService.Overview(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list rooms")
		return
	}
	respondJSON(w, http.StatusOK, rooms)
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRoomRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	room, err := h.roomService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create room")
		return
	}
	w.Header().Set("Location", "/api/v1/rooms/"+strconv.FormatInt(room.ID, 10))
	respondJSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.roomService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete room")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.roomService.Leave(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "leave room")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandler) Members(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	members, err := h.roomService.Members(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "list room members")
		return
	}
	respondJSON(w, http.StatusOK, members)
}

func (h *RoomHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.AddMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.roomService.AddMember(r.Context(), id, req.ProfileID); err != nil {
		respondServiceError(w, h.logger, err, "add room member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	profileID, ok := pathID(w, r, "profileId")
	if !ok {
		return
	}
	if err := h.roomService.RemoveMember(r.Context(), id, profileID); err != nil {
		respondServiceError(w, h.logger, err, "remove room member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Messages returns the latest ?limit= messages of the room, oldest first
func (h *RoomHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	messages, err := h.messageService.List(r.Context(), id, queryLimit(r, 50, 200))
	if err != nil {
		respondServiceError(w, h.logger, err, "list messages")
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

func (h *RoomHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.messageService.Send(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "send message")
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// MarkViewed records views for the given messages. Already viewed messages
// are not counted again.
func (h *RoomHandler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.MarkViewedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	written, err := h.messageService.MarkRoomViewed(r.Context(), id, req.MessageIDs)
	if err != nil {
		respondServiceError(w, h.logger, err, "mark messages viewed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"marked": written})
}

func (h *RoomHandler) Unread(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	unread, err := h.messageService.RoomUnread(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "count unread messages")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"roomId": id, "unreadCount": unread})
}

func (h *RoomHandler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.messageService.Update(r.Context(), id, req.Content)
	if err != nil {
		respondServiceError(w, h.logger, err, "update message")
		return
	}
	respondJSON(w, http.StatusOK, msg)
}

func (h *RoomHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.messageService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService *service.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// List returns the company's tasks, optionally filtered by ?status=
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.TaskStatus(r.URL.Query().Get("status"))
	if status != "" && !slices.Contains(domain.TaskStatuses, status) {
		respondWithError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	tasks, err := h.taskService.List(r.Context(), status)
	if err != nil {
		respondServiceError(w, h.logger, err, "list tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListMine(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list my tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.taskService.Stats(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get task stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *TaskHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	result, err := h.taskService.Analytics(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get task analytics")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	task, err := h.taskService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.taskService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create task")
		return
	}
	w.Header().Set("Location", "/api/v1/tasks/"+strconv.FormatInt(task.ID, 10))
	respondJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.taskService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	task, err := h.taskService.MarkCompleted(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "complete task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.AssignTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.taskService.AssignTo(r.Context(), id, req.ProfileID)
	if err != nil {
		respondServiceError(w, h.logger, err, "assign task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.taskService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

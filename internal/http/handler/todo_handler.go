package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/haugen-io/outbind/internal/domain"
	"github.com/haugen-io/outbind/internal/service"
	"go.uber.org/zap"
)

// TodoHandler handles HTTP requests for the ToDo table
type TodoHandler struct {
	todoService *service.TodoService
	logger      *zap.Logger
}

// NewTodoHandler creates a new TodoHandler instance
func NewTodoHandler(todoService *service.TodoService, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
		logger:      logger,
	}
}

// List godoc
// @Summary List todo items
// @Tags Todos
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param completed query bool false "Filter by completion state"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ToDoDTO}
// @Failure 500 {object} domain.APIError
// @Router /todos [get]
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	var completed *bool
	if v := r.URL.Query().Get("completed"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "completed must be true or false")
			return
		}
		completed = &parsed
	}

	result, err := h.todoService.List(r.Context(), page, pageSize, completed)
	if err != nil {
		h.logger.Error("failed to list todo items", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list todo items")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create a todo item
// @Tags Todos
// @Accept json
// @Produce json
// @Param request body domain.CreateToDoRequest true "Todo item"
// @Success 201 {object} domain.ToDoDTO
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /todos [post]
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateToDoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.todoService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create todo item", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create todo item")
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// GetByID godoc
// @Summary Get a todo item
// @Tags Todos
// @Produce json
// @Param id path string true "Todo ID"
// @Success 200 {object} domain.ToDoDTO
// @Failure 404 {object} domain.APIError
// @Router /todos/{id} [get]
func (h *TodoHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID")
		return
	}

	dto, err := h.todoService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTodoNotFound) {
			respondWithError(w, http.StatusNotFound, "Todo item not found")
			return
		}
		h.logger.Error("failed to get todo item", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get todo item")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Update godoc
// @Summary Update a todo item
// @Tags Todos
// @Accept json
// @Produce json
// @Param id path string true "Todo ID"
// @Param request body domain.UpdateToDoRequest true "Fields to update"
// @Success 200 {object} domain.ToDoDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /todos/{id} [patch]
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID")
		return
	}

	var req domain.UpdateToDoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.todoService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrTodoNotFound) {
			respondWithError(w, http.StatusNotFound, "Todo item not found")
			return
		}
		h.logger.Error("failed to update todo item", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update todo item")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Delete godoc
// @Summary Delete a todo item
// @Tags Todos
// @Param id path string true "Todo ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Router /todos/{id} [delete]
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID")
		return
	}

	if err := h.todoService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete todo item", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete todo item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

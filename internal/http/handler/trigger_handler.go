package handler

import (
	"encoding/json"
	"net/http"

	"github.com/haugen-io/outbind/internal/domain"
	"github.com/haugen-io/outbind/internal/service"
	"go.uber.org/zap"
)

// TriggerHandler serves the HTTP trigger endpoints of the function app
type TriggerHandler struct {
	triggerService *service.TriggerService
	logger         *zap.Logger
}

// NewTriggerHandler creates a new TriggerHandler instance
func NewTriggerHandler(triggerService *service.TriggerService, logger *zap.Logger) *TriggerHandler {
	return &TriggerHandler{
		triggerService: triggerService,
		logger:         logger,
	}
}

// resolveName reads the name from the query string, falling back to a
// JSON body. A missing or malformed body degrades to an empty name
// rather than an error, matching the Functions host trigger behavior.
func resolveName(r *http.Request) string {
	if name := r.URL.Query().Get("name"); name != "" {
		return name
	}

	if r.Body == nil {
		return ""
	}
	var req domain.TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return req.Name
}

// Hello godoc
// @Summary Queue-binding trigger
// @Description Writes the given name to the outqueue queue and returns a greeting
// @Tags Triggers
// @Produce plain
// @Param name query string false "Name to greet"
// @Param request body domain.TriggerRequest false "Name in JSON body"
// @Success 200 {string} string
// @Failure 500 {object} domain.APIError
// @Router /hello [post]
func (h *TriggerHandler) Hello(w http.ResponseWriter, r *http.Request) {
	name := resolveName(r)
	if name == "" {
		respondText(w, http.StatusOK, service.MissingNameHint)
		return
	}

	greeting, err := h.triggerService.Greet(r.Context(), name)
	if err != nil {
		h.logger.Error("queue trigger failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to process request")
		return
	}

	respondText(w, http.StatusOK, greeting)
}

// HttpExample godoc
// @Summary SQL-binding trigger
// @Description Inserts a ToDo row with the given name as title and returns a greeting
// @Tags Triggers
// @Produce plain
// @Param name query string false "Name to greet"
// @Param request body domain.TriggerRequest false "Name in JSON body"
// @Success 200 {string} string
// @Failure 400 {string} string
// @Failure 500 {object} domain.APIError
// @Router /HttpExample [post]
func (h *TriggerHandler) HttpExample(w http.ResponseWriter, r *http.Request) {
	name := resolveName(r)
	if name == "" {
		respondText(w, http.StatusBadRequest, service.MissingNameError)
		return
	}

	_, greeting, err := h.triggerService.GreetAndSave(r.Context(), name)
	if err != nil {
		h.logger.Error("sql trigger failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to process request")
		return
	}

	respondText(w, http.StatusOK, greeting)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/receipt-reconciler/internal/api/dto"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

// RunsHandler handles reconciliation run history requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/runs - returns recent runs without their full results.
func (h *RunsHandler) List(c *gin.Context) {
	if h.repo == nil {
		h.WriteError(c, http.StatusServiceUnavailable, dto.StorageUnavailableError())
		return
	}

	params := dto.DefaultRunListParams()
	params.Limit = ParseIntParam(c, "limit", params.Limit)
	params.WorkspaceID = c.Query("workspace_id")
	params.Status = c.Query("status")

	if params.Limit <= 0 {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("limit must be positive"))
		return
	}
	if params.Status != "" && params.Status != storage.RunStatusCompleted && params.Status != storage.RunStatusFailed {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("status must be completed or failed"))
		return
	}

	runs, err := h.repo.ListRuns(c.Request.Context(), storage.RunFilters{
		WorkspaceID: params.WorkspaceID,
		Status:      params.Status,
		Limit:       params.Limit,
	})
	if err != nil {
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, dto.NewRunResponse(run.Summary()))
	}

	h.WriteJSON(c, http.StatusOK, response)
}

// Get handles GET /api/runs/:id - returns a single run with its result.
func (h *RunsHandler) Get(c *gin.Context) {
	if h.repo == nil {
		h.WriteError(c, http.StatusServiceUnavailable, dto.StorageUnavailableError())
		return
	}

	id := c.Param("id")
	if id == "" {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.repo.GetRun(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		h.WriteError(c, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}
	if err != nil {
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.NewRunResponse(*run))
}

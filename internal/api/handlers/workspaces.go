package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/receipt-reconciler/internal/api/dto"
	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

// WorkspacesHandler stores workspace inputs and reconciles them on demand.
type WorkspacesHandler struct {
	*Base
	reconciler Reconciler
	logger     *slog.Logger
}

// NewWorkspacesHandler creates a new workspaces handler. repo may be nil.
func NewWorkspacesHandler(repo storage.Repository, reconciler Reconciler, logger *slog.Logger) *WorkspacesHandler {
	return &WorkspacesHandler{
		Base:       NewBase(repo),
		reconciler: reconciler,
		logger:     logger,
	}
}

// PutTransactions handles PUT /api/workspaces/:workspaceID/transactions.
func (h *WorkspacesHandler) PutTransactions(c *gin.Context) {
	workspaceID, ok := h.workspace(c)
	if !ok {
		return
	}

	var body dto.TransactionsUpload
	if err := c.ShouldBindJSON(&body); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("request body must be a JSON object"))
		return
	}
	transactions, err := body.Decode()
	if err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	if err := h.repo.ReplaceTransactions(c.Request.Context(), workspaceID, transactions); err != nil {
		h.logger.Error("Failed to store transactions", "workspace", workspaceID, "error", err)
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.UploadResponse{WorkspaceID: workspaceID, Stored: len(transactions)})
}

// PutReceipts handles PUT /api/workspaces/:workspaceID/receipts.
func (h *WorkspacesHandler) PutReceipts(c *gin.Context) {
	workspaceID, ok := h.workspace(c)
	if !ok {
		return
	}

	var body dto.ReceiptsUpload
	if err := c.ShouldBindJSON(&body); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("request body must be a JSON object"))
		return
	}
	receipts, err := body.Decode()
	if err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	if err := h.repo.ReplaceReceipts(c.Request.Context(), workspaceID, receipts); err != nil {
		h.logger.Error("Failed to store receipts", "workspace", workspaceID, "error", err)
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.UploadResponse{WorkspaceID: workspaceID, Stored: len(receipts)})
}

// Reconcile handles POST /api/workspaces/:workspaceID/reconcile.
func (h *WorkspacesHandler) Reconcile(c *gin.Context) {
	workspaceID, ok := h.workspace(c)
	if !ok {
		return
	}

	analysis, err := h.reconciler.AnalyzeWorkspace(c.Request.Context(), workspaceID)
	switch {
	case errors.Is(err, service.ErrNoStorage):
		h.WriteError(c, http.StatusServiceUnavailable, dto.StorageUnavailableError())
		return
	case errors.Is(err, service.ErrInvalidInput):
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	case err != nil:
		h.logger.Error("Workspace reconciliation failed", "workspace", workspaceID, "error", err)
		h.WriteError(c, http.StatusInternalServerError, dto.AnalysisFailedError())
		return
	}

	c.Header(RunIDHeader, analysis.RunID)
	h.WriteJSON(c, http.StatusOK, dto.ReconcileResponse{RunID: analysis.RunID, Result: analysis.Result})
}

// workspace validates storage availability and the path parameter.
func (h *WorkspacesHandler) workspace(c *gin.Context) (string, bool) {
	if h.repo == nil {
		h.WriteError(c, http.StatusServiceUnavailable, dto.StorageUnavailableError())
		return "", false
	}
	id := strings.TrimSpace(c.Param("workspaceID"))
	if id == "" {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("workspace ID is required"))
		return "", false
	}
	return id, true
}

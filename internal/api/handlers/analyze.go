package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/receipt-reconciler/internal/api/dto"
	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
)

// RunIDHeader carries the recorded run ID on analyze responses.
const RunIDHeader = "X-Run-ID"

// AnalyzeHandler handles one-shot and streaming reconciliation requests.
type AnalyzeHandler struct {
	*Base
	reconciler Reconciler
	logger     *slog.Logger
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(reconciler Reconciler, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		Base:       NewBase(nil),
		reconciler: reconciler,
		logger:     logger,
	}
}

// Analyze handles POST /api/agents/analyze.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	req, ok := h.decode(c)
	if !ok {
		return
	}

	analysis, err := h.reconciler.Analyze(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Analysis failed", "error", err)
		h.WriteError(c, http.StatusInternalServerError, dto.AnalysisFailedError())
		return
	}

	c.Header(RunIDHeader, analysis.RunID)
	h.WriteJSON(c, http.StatusOK, analysis.Result)
}

// Stream handles POST /api/reconcile/stream. The response is newline
// delimited JSON, one service.Event per line. Failures after the first
// byte is written are reported as a final error event.
func (h *AnalyzeHandler) Stream(c *gin.Context) {
	req, ok := h.decode(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	enc := json.NewEncoder(c.Writer)
	emit := func(e service.Event) error {
		if err := enc.Encode(e); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	if _, err := h.reconciler.AnalyzeStream(c.Request.Context(), req, emit); err != nil {
		h.logger.Error("Streaming analysis failed", "error", err)
		if c.Request.Context().Err() != nil {
			return
		}
		_ = emit(service.Event{
			Stage:    service.StageError,
			Progress: 100,
			Message:  dto.AnalysisFailedMessage,
		})
	}
}

func (h *AnalyzeHandler) decode(c *gin.Context) (service.AnalyzeRequest, bool) {
	var body dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("request body must be a JSON object"))
		return service.AnalyzeRequest{}, false
	}

	transactions, receipts, err := body.Decode()
	if err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return service.AnalyzeRequest{}, false
	}

	return service.AnalyzeRequest{
		Transactions: transactions,
		Receipts:     receipts,
	}, true
}

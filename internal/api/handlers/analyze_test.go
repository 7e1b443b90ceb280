package handlers_test

import (
	"bufio"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/receipt-reconciler/internal/api/dto"
	"github.com/eshaffer321/receipt-reconciler/internal/api/handlers"
	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/logging"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

func TestAnalyzeHandler_Analyze(t *testing.T) {
	t.Run("returns the engine result and run ID", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewAnalyzeHandler(newRealReconciler(repo), logging.Discard())

		rec := serve(http.MethodPost, "/api/agents/analyze", "/api/agents/analyze", analyzeBody, handler.Analyze)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(handlers.RunIDHeader))

		var result matcher.Result
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		require.Len(t, result.PotentialMatches, 1)
		assert.Equal(t, "r1", result.PotentialMatches[0].ReceiptID)
		assert.Equal(t, "t1", result.PotentialMatches[0].Matches[0].TransactionID)
		assert.Equal(t, 2, result.Stats.TotalTransactions)
		assert.Equal(t, 1, result.Stats.MatchedReceipts)

		require.True(t, repo.SaveRunCalled)
		assert.Equal(t, rec.Header().Get(handlers.RunIDHeader), repo.LastSavedRun.ID)
	})

	t.Run("treats missing lists as empty", func(t *testing.T) {
		fake := &fakeReconciler{analysis: &service.Analysis{RunID: "run-1", Result: &matcher.Result{PotentialMatches: []matcher.ReceiptMatchResult{}}}}
		handler := handlers.NewAnalyzeHandler(fake, logging.Discard())

		rec := serve(http.MethodPost, "/analyze", "/analyze", `{"transactions": "nope"}`, handler.Analyze)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, fake.lastRequest.Transactions)
		assert.NotNil(t, fake.lastRequest.Transactions)
		assert.Empty(t, fake.lastRequest.Receipts)
	})

	t.Run("returns 400 for malformed JSON", func(t *testing.T) {
		handler := handlers.NewAnalyzeHandler(&fakeReconciler{}, logging.Discard())

		rec := serve(http.MethodPost, "/analyze", "/analyze", `{"transactions": [`, handler.Analyze)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var response dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, dto.ErrCodeBadRequest, response.Code)
	})

	t.Run("returns 400 for undecodable list elements", func(t *testing.T) {
		handler := handlers.NewAnalyzeHandler(&fakeReconciler{}, logging.Discard())

		rec := serve(http.MethodPost, "/analyze", "/analyze", `{"receipts": [1, 2]}`, handler.Analyze)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("hides engine failures behind a generic message", func(t *testing.T) {
		fake := &fakeReconciler{err: errors.New("boom: secret detail")}
		handler := handlers.NewAnalyzeHandler(fake, logging.Discard())

		rec := serve(http.MethodPost, "/analyze", "/analyze", analyzeBody, handler.Analyze)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var response dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, dto.AnalysisFailedMessage, response.Message)
		assert.NotContains(t, rec.Body.String(), "secret")
	})
}

func decodeEvents(t *testing.T, body string) []service.Event {
	t.Helper()
	var events []service.Event
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		var e service.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestAnalyzeHandler_Stream(t *testing.T) {
	t.Run("streams newline delimited events", func(t *testing.T) {
		handler := handlers.NewAnalyzeHandler(newRealReconciler(nil), logging.Discard())

		rec := serve(http.MethodPost, "/stream", "/stream", analyzeBody, handler.Stream)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

		events := decodeEvents(t, rec.Body.String())
		stages := make([]string, 0, len(events))
		for _, e := range events {
			stages = append(stages, e.Stage)
		}
		assert.Equal(t, []string{
			service.StageInit,
			service.StageProgress,
			service.StageMatch,
			service.StageSummary,
			service.StageComplete,
		}, stages)
		assert.Equal(t, "Processing 1 receipts and 2 transactions", events[0].Message)
		assert.Equal(t, float64(100), events[len(events)-1].Progress)
	})

	t.Run("ends with an error event when analysis fails", func(t *testing.T) {
		fake := &fakeReconciler{
			events: []service.Event{{Stage: service.StageInit, Message: "Processing 0 receipts and 0 transactions"}},
			err:    errors.New("engine exploded"),
		}
		handler := handlers.NewAnalyzeHandler(fake, logging.Discard())

		rec := serve(http.MethodPost, "/stream", "/stream", `{}`, handler.Stream)

		assert.Equal(t, http.StatusOK, rec.Code)
		events := decodeEvents(t, rec.Body.String())
		require.Len(t, events, 2)
		assert.Equal(t, service.StageError, events[1].Stage)
		assert.Equal(t, dto.AnalysisFailedMessage, events[1].Message)
		assert.NotContains(t, rec.Body.String(), "exploded")
	})

	t.Run("returns 400 before streaming for malformed JSON", func(t *testing.T) {
		handler := handlers.NewAnalyzeHandler(&fakeReconciler{}, logging.Discard())

		rec := serve(http.MethodPost, "/stream", "/stream", `not json`, handler.Stream)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	})
}

package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/logging"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeReconciler lets tests control what the service returns.
type fakeReconciler struct {
	analysis *service.Analysis
	err      error
	events   []service.Event

	lastRequest   service.AnalyzeRequest
	lastWorkspace string
}

func (f *fakeReconciler) Analyze(_ context.Context, req service.AnalyzeRequest) (*service.Analysis, error) {
	f.lastRequest = req
	return f.analysis, f.err
}

func (f *fakeReconciler) AnalyzeWorkspace(_ context.Context, workspaceID string) (*service.Analysis, error) {
	f.lastWorkspace = workspaceID
	return f.analysis, f.err
}

func (f *fakeReconciler) AnalyzeStream(_ context.Context, req service.AnalyzeRequest, emit service.EmitFunc) (*service.Analysis, error) {
	f.lastRequest = req
	for _, e := range f.events {
		if err := emit(e); err != nil {
			return nil, err
		}
	}
	return f.analysis, f.err
}

func newRealReconciler(repo storage.Repository) *service.ReconcileService {
	return service.NewReconcileService(matcher.NewMatcher(matcher.DefaultConfig()), repo, logging.Discard())
}

// serve routes a single request through a gin engine holding one route.
func serve(method, pattern, target, body string, h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, pattern, h)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const analyzeBody = `{
	"transactions": [
		{"id": "t1", "date": "2024-03-01", "amount": -49.00, "reference": "GOOGLE CLOUD", "type": "CARD_PAYMENT"},
		{"id": "t2", "date": "2024-03-05", "amount": -120.00, "reference": "BILTEMA", "type": "CARD_PAYMENT"}
	],
	"receipts": [
		{"id": "r1", "date": "2024-03-01", "total_amount": 49, "supplier_name": "Google Cloud", "filename": "r1.pdf"}
	]
}`

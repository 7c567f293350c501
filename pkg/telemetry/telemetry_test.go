package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}).Methods(http.MethodGet)

	before := testutil.ToFloat64(httpRequests.WithLabelValues("/items/{id}", http.MethodGet, "418"))
	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("unexpected status %d", rec.Code)
		}
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("/items/{id}", http.MethodGet, "418"))
	if after-before != 2 {
		t.Fatalf("expected 2 requests recorded under the template, got %v", after-before)
	}
}

func TestMiddleware_UnroutedRequests(t *testing.T) {
	SetSlowThreshold(0)
	defer SetSlowThreshold(200 * time.Millisecond)

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	before := testutil.ToFloat64(httpRequests.WithLabelValues("other", http.MethodGet, "200"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues("other", http.MethodGet, "200"))
	if after-before != 1 {
		t.Fatalf("expected one request under route=other, got %v", after-before)
	}
}

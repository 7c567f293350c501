package httpx

import (
	"net/http"
	"testing"

	"github.com/valyala/fasthttp"
)

func TestNew_Engines(t *testing.T) {
	h := http.NewServeMux()
	for _, engine := range []string{"", EngineNetHTTP, EngineFastHTTP} {
		if _, err := New(Options{Engine: engine, Addr: "127.0.0.1:0"}, h); err != nil {
			t.Fatalf("engine %q: %v", engine, err)
		}
	}
	if _, err := New(Options{Engine: "gopher"}, h); err == nil {
		t.Fatalf("expected error for unknown engine")
	}
}

func TestFastHTTPHandler_BridgesNetHTTP(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	})

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/ping")
	ctx.Request.Header.SetMethod(http.MethodGet)
	FastHTTPHandler(h)(&ctx)

	if got := ctx.Response.StatusCode(); got != http.StatusTeapot {
		t.Fatalf("expected 418 got %d", got)
	}
	if got := string(ctx.Response.Body()); got != `{"path":"/api/v1/ping"}` {
		t.Fatalf("unexpected body %q", got)
	}
}

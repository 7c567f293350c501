package app

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"cocreate/pkg/api"
	"cocreate/pkg/auth"
	"cocreate/pkg/banner"
	"cocreate/pkg/httpx"
	"cocreate/pkg/logger"
	"cocreate/pkg/store"
	"cocreate/pkg/utils"
)

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "" && a.commit != "none" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "" && a.buildDate != "unknown" {
		verStr += " @ " + a.buildDate
	}
	banner.PrintWithEff(a.eff, verStr)
}

// Handler returns the full server handler: health checks, docs, metrics and the
// API, wrapped in the gateway middleware.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	a.setupHTTPHandlers(mux)

	secCfg := auth.SecConfig{
		AllowedOrigins: append([]string{}, a.eff.Config.Security.CORS.AllowedOrigins...),
		RPS:            a.eff.Config.Security.RateLimit.RPS,
		Burst:          a.eff.Config.Security.RateLimit.Burst,
		IPWhitelist:    append([]string{}, a.eff.Config.Security.IPWhitelist...),
	}
	return auth.AuthenticateRequestMiddleware(secCfg)(mux)
}

// setupHTTPHandlers sets up all HTTP handlers on the provided mux.
func (a *App) setupHTTPHandlers(mux *http.ServeMux) {
	docsDir := a.eff.Config.Server.Docs
	mux.HandleFunc("/readyz", a.readyzHandler)
	mux.HandleFunc("/healthz", healthzHandler)
	mux.Handle(api.Prefix+"/", api.Handler())
	mux.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		p := filepath.Join(docsDir, "openapi.yaml")
		if _, err := os.Stat(p); err != nil {
			utils.JSONError(w, http.StatusNotFound, "openapi document not found")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		http.ServeFile(w, r, p)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			utils.JSONError(w, http.StatusNotFound, "not found")
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"message": "cocreate api", "docs": "/docs/"})
	})
}

// readyzHandler reports whether the store is open.
func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	if !store.Ready() {
		_ = utils.JSONWrite(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ok", "version": ver})
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ok"})
}

// startHTTP starts the configured engine in a goroutine and returns a
// channel that receives the server's exit error.
func (a *App) startHTTP() (<-chan error, error) {
	srv, err := httpx.New(httpx.Options{
		Engine:   a.eff.Config.Server.Engine,
		Addr:     a.eff.Addr,
		CertFile: a.eff.Config.Server.TLS.CertFile,
		KeyFile:  a.eff.Config.Server.TLS.KeyFile,
		MaxBody:  int(a.eff.Config.Server.MaxBody.Int64()),
	}, a.Handler())
	if err != nil {
		return nil, err
	}
	a.srv = srv
	logger.Info("http_listening", "addr", a.eff.Addr, "engine", a.eff.Config.Server.Engine)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	return errCh, nil
}

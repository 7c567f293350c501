package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Engine names accepted by New.
const (
	EngineNetHTTP  = "nethttp"
	EngineFastHTTP = "fasthttp"
)

// Options configures a Server.
type Options struct {
	Engine   string
	Addr     string
	CertFile string
	KeyFile  string
	// MaxBody bounds request bodies on engines that buffer them.
	MaxBody int
}

// Server is a running HTTP listener regardless of engine.
type Server interface {
	// ListenAndServe blocks until the server stops. It returns nil after a
	// clean Shutdown.
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// New builds a Server serving h with the selected engine.
func New(opts Options, h http.Handler) (Server, error) {
	switch opts.Engine {
	case "", EngineNetHTTP:
		return newNetHTTP(opts, h), nil
	case EngineFastHTTP:
		return newFastHTTP(opts, h), nil
	default:
		return nil, fmt.Errorf("unknown http engine %q (want %s or %s)", opts.Engine, EngineNetHTTP, EngineFastHTTP)
	}
}

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 30 * time.Second
)

package httpx

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

type fastHTTPServer struct {
	srv       *fasthttp.Server
	addr      string
	cert, key string
}

// FastHTTPHandler bridges a net/http handler onto fasthttp.
func FastHTTPHandler(h http.Handler) fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(h)
}

func newFastHTTP(opts Options, h http.Handler) *fastHTTPServer {
	maxBody := opts.MaxBody
	if maxBody <= 0 {
		maxBody = fasthttp.DefaultMaxRequestBodySize
	}
	return &fastHTTPServer{
		srv: &fasthttp.Server{
			Handler:            FastHTTPHandler(h),
			Name:               "cocreate",
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			MaxRequestBodySize: maxBody,
		},
		addr: opts.Addr,
		cert: opts.CertFile,
		key:  opts.KeyFile,
	}
}

func (s *fastHTTPServer) ListenAndServe() error {
	if s.cert != "" && s.key != "" {
		return s.srv.ListenAndServeTLS(s.addr, s.cert, s.key)
	}
	return s.srv.ListenAndServe(s.addr)
}

// Shutdown waits for open connections to close or ctx to expire.
func (s *fastHTTPServer) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- s.srv.Shutdown() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

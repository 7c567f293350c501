package httpx

import (
	"context"
	"errors"
	"net/http"
)

type netHTTPServer struct {
	srv       *http.Server
	cert, key string
}

func newNetHTTP(opts Options, h http.Handler) *netHTTPServer {
	return &netHTTPServer{
		srv: &http.Server{
			Addr:         opts.Addr,
			Handler:      h,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		cert: opts.CertFile,
		key:  opts.KeyFile,
	}
}

func (s *netHTTPServer) ListenAndServe() error {
	var err error
	if s.cert != "" && s.key != "" {
		err = s.srv.ListenAndServeTLS(s.cert, s.key)
	} else {
		err = s.srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *netHTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Package httpx serves an http.Handler on one of two engines: the
// standard net/http server (default) or fasthttp behind its net/http
// adaptor. The engine is an operational choice; handlers never see it.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"boardd/pkg/logger"
)

const shutdownGrace = 10 * time.Second

// Options configures Serve.
type Options struct {
	Engine   string // "nethttp" (default) or "fasthttp"
	Addr     string
	CertFile string
	KeyFile  string
}

// Serve blocks until ctx is cancelled or the listener fails. On cancel
// the server drains in-flight requests before returning.
func Serve(ctx context.Context, opts Options, h http.Handler) error {
	switch opts.Engine {
	case "", "nethttp":
		return serveNetHTTP(ctx, opts, h)
	case "fasthttp":
		return serveFastHTTP(ctx, opts, h)
	default:
		return fmt.Errorf("unknown http engine %q", opts.Engine)
	}
}

func serveNetHTTP(ctx context.Context, opts Options, h http.Handler) error {
	srv := &http.Server{Addr: opts.Addr, Handler: h}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "engine", "nethttp", "addr", opts.Addr)
		if opts.CertFile != "" && opts.KeyFile != "" {
			errCh <- srv.ListenAndServeTLS(opts.CertFile, opts.KeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		logger.Info("http_draining", "engine", "nethttp")
		return srv.Shutdown(sctx)
	}
}

func serveFastHTTP(ctx context.Context, opts Options, h http.Handler) error {
	srv := &fasthttp.Server{Handler: fasthttpadaptor.NewFastHTTPHandler(h)}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "engine", "fasthttp", "addr", opts.Addr)
		if opts.CertFile != "" && opts.KeyFile != "" {
			errCh <- srv.ListenAndServeTLS(opts.Addr, opts.CertFile, opts.KeyFile)
			return
		}
		errCh <- srv.ListenAndServe(opts.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("http_draining", "engine", "fasthttp")
		return srv.Shutdown()
	}
}

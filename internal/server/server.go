// Package server exposes the listing generator over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raine/listing-wizard/internal/listing"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Generator produces a listing draft from an image.
type Generator interface {
	Generate(ctx context.Context, image listing.ImagePayload) (*listing.Draft, error)
}

type Options struct {
	// MaxImageBytes bounds the decoded image size a request may carry.
	MaxImageBytes int64
	// AllowedOrigins enables CORS for browser clients. "*" allows any origin.
	AllowedOrigins []string
}

// New builds the HTTP router.
func New(generator Generator, opts Options) *gin.Engine {
	h := &handler{generator: generator}

	r := gin.New()
	r.Use(requestID(), accessLog(), recovery())
	if len(opts.AllowedOrigins) > 0 {
		r.Use(corsMiddleware(opts.AllowedOrigins))
	}

	r.GET("/healthz", h.health)

	limit := bodyLimit(opts.MaxImageBytes)
	r.POST("/generate", limit, h.generate)
	api := r.Group("/api")
	{
		api.POST("/generate", limit, h.generate)
	}

	return r
}

// Serve serves handler on ln until ctx is canceled, then shuts down
// gracefully.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

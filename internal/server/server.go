// Package server assembles the HTTP surface over the content pipeline
// and starts the server.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config holds server configuration.
type Config struct {
	Port    int
	Handler *Handler
}

// Router builds the chi router with all routes registered. Split from Run
// so tests can drive the full surface through httptest.
func Router(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", h.Generate)
		r.Get("/generate/stream", h.GenerateStream)
		r.Post("/shrink", h.Shrink)

		r.Post("/compliance/check", h.CheckCompliance)
		r.Post("/compliance/filter", h.FilterText)
		r.Post("/coverage", h.Coverage)
		r.Post("/lengths/validate", h.ValidateLength)

		r.Post("/enrich", h.Enrich)
		r.Post("/vision/analyze", h.AnalyzePhotos)

		r.Route("/brochure/session", func(r chi.Router) {
			r.Post("/", h.CreateSession)
			r.Get("/{sessionID}", h.GetSession)
			r.Put("/{sessionID}", h.UpdateSession)
			r.Get("/{sessionID}/photo/{photoID}", h.ServePhoto)
		})

		r.Get("/brands", h.ListBrands)
		r.Get("/brands/{brandID}", h.GetBrand)
		r.Get("/history", h.ListHistory)
	})

	return r
}

// Run starts the HTTP server and shuts it down when ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("starting server on %s", addr)

	server := &http.Server{
		Addr:    addr,
		Handler: Router(cfg.Handler),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

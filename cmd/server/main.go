package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"academic-translator/internal/app"
	"academic-translator/internal/httputil"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Settings.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("server listening", "addr", srv.Addr, "access_gate", deps.Access.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		deps.Log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log)

	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/access", accessStatusHandler(deps))
		r.Post("/access/unlock", unlockHandler(deps))
		r.Post("/access/lock", lockHandler(deps))

		r.Group(func(r chi.Router) {
			r.Use(httputil.RequireAccess(deps.Access, deps.Log))

			r.Get("/languages", languagesHandler())

			r.Get("/settings/credential", credentialStatusHandler(deps))
			r.Put("/settings/credential", setCredentialHandler(deps))
			r.Delete("/settings/credential", clearCredentialHandler(deps))
			r.Post("/settings/credential/validate", validateCredentialHandler(deps))

			r.Post("/pages/{page}/document", uploadHandler(deps))
			r.Get("/pages/{page}/document", documentHandler(deps))

			r.Post("/translate", translateHandler(deps))
			r.Get("/translate", translationHandler(deps))
			r.Get("/translate/export", translateExportHandler(deps))

			r.Post("/qa/questions", questionHandler(deps))
			r.Get("/qa/history", historyHandler(deps))

			r.Post("/summarize", summarizeHandler(deps))
			r.Get("/summarize", summaryHandler(deps))
			r.Get("/summarize/export", summaryExportHandler(deps))
		})
	})

	return r
}

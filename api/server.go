// Package api exposes the recent negotiations and the supplier KPIs of a
// running serve process over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	apikpi "github.com/kilianp07/vpp/api/kpi"
	"github.com/kilianp07/vpp/api/negotiations"
	"github.com/kilianp07/vpp/core/metrics/kpi"
	"github.com/kilianp07/vpp/infra/logger"
)

// NewMux routes /api/negotiations and /api/kpi behind auth. A nil store
// leaves the KPI route unregistered. /healthz is always open.
func NewMux(history negotiations.Lister, store kpi.Store, auth Auth) *http.ServeMux {
	token := auth.Token
	protect := func(h http.Handler) http.Handler { return h }
	if auth.JWTSecret != "" {
		token = ""
		protect = func(h http.Handler) http.Handler { return RequireJWT(auth.JWTSecret, h) }
	}
	mux := http.NewServeMux()
	mux.Handle("/api/negotiations", protect(negotiations.NewHandler(history, token)))
	if store != nil {
		mux.Handle("/api/kpi", protect(apikpi.NewHandler(store, token)))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Serve runs h on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	log := logger.New("api")
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("api shutdown: %v", err)
		}
	}()
	log.Infof("serving api on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

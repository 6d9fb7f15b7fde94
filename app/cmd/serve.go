package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Rakhulsr/go-blog/app/configs"
	"github.com/Rakhulsr/go-blog/app/middlewares"
	"github.com/Rakhulsr/go-blog/app/routes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests.
func Serve(ctx context.Context, env configs.ENV, log *logrus.Logger) error {
	keys, err := configs.LoadSessionKeys(env)
	if err != nil {
		return err
	}
	if env.AppAuthKey == "" {
		log.Warn("session keys not configured, using random keys; run generate-keys to persist them")
	}

	db, err := openMigrated(env, log)
	if err != nil {
		return err
	}
	defer closeDB(db, log)
	log.WithField("driver", env.DBDriver).Info("database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	limiter := middlewares.NewRateLimiter(10, 5, log)
	go limiter.Run(ctx)

	srv := &http.Server{
		Addr: env.Port,
		Handler: routes.NewRouter(db, routes.Options{
			Env:         env,
			Keys:        *keys,
			Log:         log,
			Registry:    registry,
			RateLimiter: limiter,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}

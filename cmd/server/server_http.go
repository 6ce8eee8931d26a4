package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	config "github.com/classtab/classtab/internal/config/server"
	"github.com/classtab/classtab/internal/obs"
	pg "github.com/classtab/classtab/internal/repository/postgres"
	authsvc "github.com/classtab/classtab/internal/services/auth"
	userssvc "github.com/classtab/classtab/internal/services/users"
	"github.com/classtab/classtab/internal/token"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, db *pg.DB) *http.Server {
	secret := []byte(cfg.Auth.JWTSecret)
	issuer := token.NewIssuer(secret, token.IssuerConfig{
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	})
	valid := token.NewValidator(secret, nil)

	users := pg.NewUserRepo(db)
	authUC := authsvc.NewUsecase(users, issuer, valid, authsvc.Config{
		BotTokenSecret:  cfg.Auth.BotTokenSecret,
		ServiceTokenTTL: cfg.Auth.ServiceTokenTTL,
	})
	usersUC := userssvc.NewUsecase(users, issuer, authUC)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(obs.HTTPMetrics)

	r.Route("/api", func(r chi.Router) {
		authsvc.NewController(authUC, logger).Routes(r)
		userssvc.NewController(usersUC, valid, logger).Routes(r)
	})

	r.Handle("/metrics", obs.MetricsHandler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		hctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if err := db.Pool.Ping(hctx); err != nil {
			http.Error(w, "unhealthy: db", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           otelhttp.NewHandler(r, "http.server"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

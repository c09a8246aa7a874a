package main

import (
	"coingecko-telegram-bot/internal/telegram"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

// newRouter serves /health and /metrics, plus /webhook/{token} when the bot
// runs in webhook mode.
func newRouter(registry *prometheus.Registry, webhook *telegram.Webhook) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	if webhook != nil {
		r.Method(http.MethodPost, "/webhook/{token}", webhook)
	}

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/scorekeeper/go/internal/api"
	"github.com/mcdev12/scorekeeper/go/internal/config"
	"github.com/mcdev12/scorekeeper/go/internal/notify"
)

func setupServer(cfg *config.Config, services *Services) *http.Server {
	router := mux.NewRouter()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedHeaders: []string{"*"},
	})

	// Register match API and health check
	api.NewHandler(services.Registry, services.Sheets).RegisterRoutes(router)

	// Register live feed
	notify.NewWebSocketHandler(services.Hub, services.Registry.Exists).RegisterRoutes(router)

	// Metrics
	router.Handle("/metrics", promhttp.HandlerFor(services.Metrics, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Wrap with CORS
	handler := c.Handler(router)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"cloud.google.com/go/firestore"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/mcdev12/scorekeeper/go/clients/rosters_client"
	"github.com/mcdev12/scorekeeper/go/internal/api"
	"github.com/mcdev12/scorekeeper/go/internal/config"
	"github.com/mcdev12/scorekeeper/go/internal/matchsync"
	"github.com/mcdev12/scorekeeper/go/internal/notify"
	"github.com/mcdev12/scorekeeper/go/internal/session"
	"github.com/mcdev12/scorekeeper/go/internal/sports/base"
	"github.com/mcdev12/scorekeeper/go/internal/store"
)

type Services struct {
	Registry   *session.Registry
	Hub        *notify.Hub
	Dispatcher *matchsync.Dispatcher
	Metrics    *prometheus.Registry
	Sheets     api.TeamSheetSource

	closers []func()
}

func setupServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	// Wire up dependency injection chain
	// Publishers → Dispatcher → Registry ← Hub
	s := &Services{}
	ok := false
	defer func() {
		if !ok {
			s.closeResources()
		}
	}()

	sports, err := enabledSports(cfg)
	if err != nil {
		return nil, err
	}
	clock := clockwork.NewRealClock()
	factory := base.NewFactory(clock, sports...)

	s.Metrics = prometheus.NewRegistry()
	s.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := matchsync.NewPrometheusMetrics(s.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to register sync metrics: %w", err)
	}

	var snapshots store.MatchStore = store.NewMemoryStore()
	if cfg.Postgres.Enabled {
		pool, pgStore, err := setupDatabase(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		snapshots = pgStore
	}

	publishers, err := s.setupPublishers(ctx, cfg, snapshots)
	if err != nil {
		return nil, err
	}

	s.Dispatcher = matchsync.NewDispatcher(cfg.Sync, metrics, clock, publishers...)
	if err := s.Dispatcher.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start sync dispatcher: %w", err)
	}

	hubConfig := cfg.Hub
	hubConfig.CheckOrigin = checkOrigin(cfg.Server.AllowedOrigins)
	s.Hub = notify.NewHub(hubConfig)
	go s.Hub.Start(ctx)

	if cfg.Rosters.BaseURL != "" {
		s.Sheets = rosters_client.NewRostersClient(cfg.Rosters.BaseURL, cfg.Rosters.APIKey, cfg.Rosters.Timeout)
		log.Info().Str("base_url", cfg.Rosters.BaseURL).Msg("roster service configured")
	}

	s.Registry = session.NewRegistry(factory, s.Dispatcher, s.Hub, snapshots)
	ok = true
	return s, nil
}

func (s *Services) setupPublishers(ctx context.Context, cfg *config.Config, snapshots store.MatchStore) ([]matchsync.EventPublisher, error) {
	publishers := []matchsync.EventPublisher{
		matchsync.NewLogPublisher(zerolog.DebugLevel),
		matchsync.NewSnapshotPublisher(snapshots),
	}

	if cfg.NATS.Enabled {
		js, err := matchsync.NewJetStreamPublisher(ctx, cfg.NATS.JetStreamConfig)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = js.Close() })
		publishers = append(publishers, js)
	}

	if cfg.RabbitMQ.Enabled {
		rabbit, err := matchsync.NewRabbitMQPublisher(cfg.RabbitMQ.RabbitMQConfig)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = rabbit.Close() })
		publishers = append(publishers, rabbit)
	}

	if cfg.Firestore.Enabled {
		client, err := setupFirestore(ctx, cfg.Firestore)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		publishers = append(publishers, matchsync.NewFirestorePublisher(client))
	}

	return publishers, nil
}

func setupFirestore(ctx context.Context, cfg config.FirestoreConfig) (*firestore.Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	log.Info().Str("project_id", cfg.ProjectID).Msg("connected to firestore")
	return client, nil
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// Close ends every session, drains the sync queue and releases connections.
func (s *Services) Close() {
	s.Registry.Close()
	if err := s.Dispatcher.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop sync dispatcher")
	}
	s.closeResources()
}

func (s *Services) closeResources() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

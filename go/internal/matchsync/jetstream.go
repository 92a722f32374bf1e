package matchsync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

type JetStreamConfig struct {
	URL             string        `yaml:"url"`
	StreamName      string        `yaml:"stream_name"`
	SubjectPrefix   string        `yaml:"subject_prefix"`
	MaxReconnects   int           `yaml:"max_reconnects"`
	ReconnectWait   time.Duration `yaml:"reconnect_wait"`
	MaxAge          time.Duration `yaml:"max_age"`          // How long to keep messages
	MaxMsgs         int64         `yaml:"max_msgs"`         // Max number of messages to keep
	Replicas        int           `yaml:"replicas"`         // Number of replicas for the stream
	DuplicateWindow time.Duration `yaml:"duplicate_window"` // Window for duplicate detection
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "MATCH_EVENTS",
		SubjectPrefix:   "match.events",
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          7 * 24 * time.Hour,
		MaxMsgs:         -1,
		Replicas:        1,
		DuplicateWindow: 2 * time.Hour,
	}
}

// JetStreamPublisher publishes sync events to a JetStream stream. The event
// id is the message id, so a retried publish is deduplicated by the server.
type JetStreamPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

func NewJetStreamPublisher(ctx context.Context, cfg JetStreamConfig) (*JetStreamPublisher, error) {
	opts := []nats.Option{
		nats.Name("scorekeeper-sync"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	p := &JetStreamPublisher{nc: nc, js: js, config: cfg}
	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	return p, nil
}

func (p *JetStreamPublisher) streamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        p.config.StreamName,
		Description: "Live match scoring updates",
		Subjects:    []string{fmt.Sprintf("%s.>", p.config.SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      p.config.MaxAge,
		MaxMsgs:     p.config.MaxMsgs,
		Storage:     jetstream.FileStorage,
		Replicas:    p.config.Replicas,
		Duplicates:  p.config.DuplicateWindow,
	}
}

func (p *JetStreamPublisher) ensureStream(ctx context.Context) error {
	sc := p.streamConfig()

	stream, err := p.js.Stream(ctx, sc.Name)
	if err != nil {
		if _, err = p.js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().Str("stream", sc.Name).Msg("created JetStream stream")
		return nil
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if !isStreamConfigEqual(info.Config, sc) {
		if _, err = p.js.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().Str("stream", sc.Name).Msg("updated JetStream stream")
	}
	return nil
}

func (p *JetStreamPublisher) Name() string { return "jetstream" }

// Subject returns the subject an event is published on:
// <prefix>.<match id>.<sport>.<action>.
func (p *JetStreamPublisher) Subject(event SyncEvent) string {
	return fmt.Sprintf("%s.%s.%s", p.config.SubjectPrefix, event.MatchID, event.Topic())
}

func (p *JetStreamPublisher) Publish(ctx context.Context, event SyncEvent) error {
	data, err := envelope(event)
	if err != nil {
		return err
	}

	subject := p.Subject(event)
	ack, err := p.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Action":   []string{string(event.Action)},
			"Match-ID": []string{event.MatchID.String()},
			"Sequence": []string{strconv.FormatUint(event.Sequence, 10)},
		},
	},
		jetstream.WithMsgID(event.ID.String()),
		jetstream.WithExpectStream(p.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", event.ID.String()).
		Uint64("stream_sequence", ack.Sequence).
		Bool("duplicate", ack.Duplicate).
		Msg("published to JetStream")
	return nil
}

func (p *JetStreamPublisher) Close() error {
	if p.nc != nil {
		return p.nc.Drain()
	}
	return nil
}

func isStreamConfigEqual(a, b jetstream.StreamConfig) bool {
	return a.Name == b.Name &&
		a.MaxAge == b.MaxAge &&
		a.MaxMsgs == b.MaxMsgs &&
		a.Replicas == b.Replicas &&
		a.Duplicates == b.Duplicates
}

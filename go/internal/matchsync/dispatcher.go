package matchsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyRunning = errors.New("sync dispatcher already running")
	ErrNotRunning     = errors.New("sync dispatcher not running")
)

type Config struct {
	QueueSize      int           `yaml:"queue_size"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
}

func DefaultConfig() Config {
	return Config{
		QueueSize:      1024,
		MaxRetries:     3,
		RetryDelay:     time.Second,
		PublishTimeout: 10 * time.Second,
	}
}

// Dispatcher hands sync events to every publisher off the scoring path.
//
// Enqueue never blocks: when the queue is full the event is dropped and
// counted. A single worker publishes events in the order they were
// enqueued, so each destination sees a match's sequence numbers ascending.
type Dispatcher struct {
	publishers []EventPublisher
	config     Config
	metrics    MetricsCollector
	clock      clockwork.Clock
	queue      chan SyncEvent

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewDispatcher(cfg Config, metrics MetricsCollector, clock clockwork.Clock, publishers ...EventPublisher) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if metrics == nil {
		metrics = &NoOpMetricsCollector{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Dispatcher{
		publishers: publishers,
		config:     cfg,
		metrics:    metrics,
		clock:      clock,
		queue:      make(chan SyncEvent, cfg.QueueSize),
		stopChan:   make(chan struct{}),
	}
}

func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrAlreadyRunning
	}
	d.running = true
	d.mu.Unlock()

	d.wg.Add(1)
	go d.run(ctx)

	names := make([]string, 0, len(d.publishers))
	for _, p := range d.publishers {
		names = append(names, p.Name())
	}
	log.Info().
		Strs("publishers", names).
		Int("queue_size", d.config.QueueSize).
		Msg("sync dispatcher started")
	return nil
}

// Stop publishes whatever is still queued and waits for the worker to exit.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return ErrNotRunning
	}
	d.running = false
	d.mu.Unlock()

	close(d.stopChan)
	d.wg.Wait()

	log.Info().Msg("sync dispatcher stopped")
	return nil
}

// Enqueue schedules event for publishing. It reports false if the event was dropped.
func (d *Dispatcher) Enqueue(event SyncEvent) bool {
	select {
	case d.queue <- event:
		d.metrics.RecordQueueDepth(len(d.queue))
		return true
	default:
		d.metrics.RecordDropped(event.Action)
		log.Warn().
			Str("match_id", event.MatchID.String()).
			Uint64("sequence", event.Sequence).
			Str("action", string(event.Action)).
			Msg("sync queue full, event dropped")
		return false
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopChan:
			d.drain(ctx)
			return
		case event := <-d.queue:
			d.metrics.RecordQueueDepth(len(d.queue))
			d.dispatch(ctx, event)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case event := <-d.queue:
			d.dispatch(ctx, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, event SyncEvent) {
	for _, p := range d.publishers {
		start := d.clock.Now()
		err := d.publishWithRetry(ctx, p, event)
		d.metrics.RecordEventPublished(p.Name(), event.Action, err == nil, d.clock.Since(start))
		if err != nil {
			log.Error().
				Err(err).
				Str("publisher", p.Name()).
				Str("match_id", event.MatchID.String()).
				Uint64("sequence", event.Sequence).
				Msg("failed to publish sync event")
		}
	}
}

func (d *Dispatcher) publishWithRetry(ctx context.Context, p EventPublisher, event SyncEvent) error {
	var lastErr error

	for attempt := 0; attempt <= d.config.MaxRetries; attempt++ {
		if attempt > 0 && d.config.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-d.clock.After(d.config.RetryDelay * time.Duration(attempt)):
			}
		}

		err := d.publishOnce(ctx, p, event)
		d.metrics.RecordPublishAttempt(p.Name(), attempt+1, err == nil)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn().
			Err(err).
			Str("publisher", p.Name()).
			Str("event_id", event.ID.String()).
			Int("attempt", attempt+1).
			Msg("failed to publish sync event, retrying")
	}

	return fmt.Errorf("failed after %d attempts: %w", d.config.MaxRetries+1, lastErr)
}

func (d *Dispatcher) publishOnce(ctx context.Context, p EventPublisher, event SyncEvent) error {
	if d.config.PublishTimeout <= 0 {
		return p.Publish(ctx, event)
	}
	ctx, cancel := context.WithTimeout(ctx, d.config.PublishTimeout)
	defer cancel()
	return p.Publish(ctx, event)
}

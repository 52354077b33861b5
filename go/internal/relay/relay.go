// Package relay republishes buffered snapshots to NATS JetStream so other
// consumers (analysis jobs, a second viewer) can follow a session.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/internal/models"
)

const (
	KindTick     = "ticks"
	KindComplete = "complete"
)

// Config holds configuration for the JetStream relay
type Config struct {
	URL            string        `yaml:"url"`
	StreamName     string        `yaml:"stream"`
	SubjectPrefix  string        `yaml:"subject_prefix"` // e.g., "sim"
	MaxAge         time.Duration `yaml:"max_age"`
	QueueSize      int           `yaml:"queue_size"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
	MaxReconnects  int           `yaml:"max_reconnects"`
	ReconnectWait  time.Duration `yaml:"reconnect_wait"`
}

// DefaultConfig returns default relay configuration
func DefaultConfig() Config {
	return Config{
		URL:            nats.DefaultURL,
		StreamName:     "SIM_SNAPSHOTS",
		SubjectPrefix:  "sim",
		MaxAge:         24 * time.Hour,
		QueueSize:      1024,
		PublishTimeout: 5 * time.Second,
		MaxReconnects:  -1, // Infinite
		ReconnectWait:  2 * time.Second,
	}
}

// Publisher sends one message to a subject. msgID lets the server drop duplicates.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte, msgID string) error
}

// Envelope is the message published for each snapshot
type Envelope struct {
	ID          string             `json:"id"`
	SessionID   string             `json:"session_id"`
	Kind        string             `json:"kind"`
	Tick        int                `json:"tick"`
	PublishedAt time.Time          `json:"published_at"`
	Snapshot    models.SimSnapshot `json:"snapshot"`
}

// Relay queues snapshots and publishes them from a single worker. When the
// queue is full new snapshots are dropped; the viewer never waits on NATS.
type Relay struct {
	config    Config
	publisher Publisher
	nc        *nats.Conn

	mu        sync.RWMutex
	sessionID string
	closed    bool

	queue   chan Envelope
	done    chan struct{}
	started atomic.Bool
	dropped atomic.Int64
	sent    atomic.Int64
}

// Connect dials NATS, makes sure the stream exists and returns a relay
// publishing through it.
func Connect(ctx context.Context, config Config) (*Relay, error) {
	opts := []nats.Option{
		nats.Name("simviewer"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
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

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        config.StreamName,
		Description: "Simulation snapshots relayed by the viewer",
		Subjects:    []string{config.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      config.MaxAge,
		Storage:     jetstream.FileStorage,
		Duplicates:  2 * time.Minute,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	log.Info().
		Str("stream", stream.CachedInfo().Config.Name).
		Str("subjects", config.SubjectPrefix+".>").
		Msg("JetStream relay ready")

	r := New(&jetStreamPublisher{js: js}, config)
	r.nc = nc
	return r, nil
}

// New creates a relay on top of an existing publisher
func New(publisher Publisher, config Config) *Relay {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = DefaultConfig().PublishTimeout
	}
	if config.SubjectPrefix == "" {
		config.SubjectPrefix = DefaultConfig().SubjectPrefix
	}
	return &Relay{
		config:    config,
		publisher: publisher,
		queue:     make(chan Envelope, config.QueueSize),
		done:      make(chan struct{}),
	}
}

// SetSession sets the session id used in subjects for subsequent snapshots
func (r *Relay) SetSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionID = sessionID
}

// Subject builds "<prefix>.<session>.<kind>", replacing characters NATS
// reserves in subject tokens.
func Subject(prefix, sessionID, kind string) string {
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, sessionID)
	if token == "" {
		token = "unknown"
	}
	return prefix + "." + token + "." + kind
}

// SnapshotBuffered queues snapshot for publishing
func (r *Relay) SnapshotBuffered(snapshot models.SimSnapshot) {
	r.enqueue(KindTick, snapshot)
}

// PlayCompleted queues the final snapshot for publishing
func (r *Relay) PlayCompleted(final models.SimSnapshot, _ []models.SimSnapshot) {
	r.enqueue(KindComplete, final)
}

func (r *Relay) enqueue(kind string, snapshot models.SimSnapshot) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}

	env := Envelope{
		ID:          uuid.NewString(),
		SessionID:   r.sessionID,
		Kind:        kind,
		Tick:        snapshot.Tick,
		PublishedAt: time.Now().UTC(),
		Snapshot:    snapshot,
	}
	select {
	case r.queue <- env:
	default:
		if n := r.dropped.Add(1); n == 1 || n%100 == 0 {
			log.Warn().Int64("dropped", n).Int("tick", snapshot.Tick).Msg("relay queue full, dropping snapshot")
		}
	}
}

// Start runs the publish worker until Close
func (r *Relay) Start(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	go r.worker(ctx)
}

func (r *Relay) worker(ctx context.Context) {
	defer close(r.done)
	for env := range r.queue {
		if err := r.publish(ctx, env); err != nil {
			log.Error().
				Err(err).
				Str("session_id", env.SessionID).
				Int("tick", env.Tick).
				Msg("failed to relay snapshot")
			continue
		}
		r.sent.Add(1)
	}
}

func (r *Relay) publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, r.config.PublishTimeout)
	defer cancel()

	subject := Subject(r.config.SubjectPrefix, env.SessionID, env.Kind)
	if err := r.publisher.Publish(ctx, subject, data, env.ID); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// Stats returns how many snapshots were published and dropped
func (r *Relay) Stats() (sent, dropped int64) {
	return r.sent.Load(), r.dropped.Load()
}

// Close stops accepting snapshots, waits for the queue to drain and closes
// the NATS connection.
func (r *Relay) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	if r.started.Load() {
		<-r.done
	}
	if r.nc != nil {
		if err := r.nc.Drain(); err != nil {
			log.Warn().Err(err).Msg("NATS drain failed")
		}
	}
	sent, dropped := r.Stats()
	log.Info().Int64("sent", sent).Int64("dropped", dropped).Msg("relay closed")
}

type jetStreamPublisher struct {
	js jetstream.JetStream
}

func (p *jetStreamPublisher) Publish(ctx context.Context, subject string, data []byte, msgID string) error {
	_, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(msgID))
	return err
}

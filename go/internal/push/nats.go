package push

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// SubjectPrefix is prepended to the session id to form the snapshot subject.
const SubjectPrefix = "retro.sessions."

// NATSConfig holds configuration for the NATS transport
type NATSConfig struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
	// StreamName switches to a JetStream ordered consumer so a fresh subscriber
	// gets the last snapshot published for the session. Empty means core NATS.
	StreamName string
}

// DefaultNATSConfig returns default NATS configuration
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		Name:          "retrospekt",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// Subject returns the subject snapshots for a session are published on.
func Subject(sessionID string) string {
	return SubjectPrefix + sessionID
}

// NATSTransport receives snapshots from a NATS subject per session.
type NATSTransport struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config NATSConfig
}

// ConnectNATS dials NATS with reconnect handling. It is shared by the
// transport and the snapshot relay.
func ConnectNATS(config NATSConfig) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
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
	return nc, nil
}

// NewNATSTransport connects to NATS
func NewNATSTransport(config NATSConfig) (*NATSTransport, error) {
	nc, err := ConnectNATS(config)
	if err != nil {
		return nil, err
	}

	t := &NATSTransport{nc: nc, config: config}

	if config.StreamName != "" {
		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("create JetStream context: %w", err)
		}
		t.js = js
	}

	return t, nil
}

// Subscribe attaches a handler to the session subject.
func (t *NATSTransport) Subscribe(ctx context.Context, sessionID string, onFrame FrameHandler) (Subscription, error) {
	subject := Subject(sessionID)

	if t.js != nil {
		consumer, err := t.js.OrderedConsumer(ctx, t.config.StreamName, jetstream.OrderedConsumerConfig{
			FilterSubjects: []string{subject},
			DeliverPolicy:  jetstream.DeliverLastPerSubjectPolicy,
		})
		if err != nil {
			return nil, fmt.Errorf("create ordered consumer: %w", err)
		}

		consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
			onFrame(msg.Data())
		})
		if err != nil {
			return nil, fmt.Errorf("start consumer: %w", err)
		}

		log.Debug().Str("subject", subject).Str("stream", t.config.StreamName).Msg("JetStream subscription started")
		return &natsSubscription{stop: func() error {
			consumeCtx.Stop()
			return nil
		}}, nil
	}

	sub, err := t.nc.Subscribe(subject, func(msg *nats.Msg) {
		onFrame(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}

	log.Debug().Str("subject", subject).Msg("NATS subscription started")
	return &natsSubscription{stop: sub.Unsubscribe}, nil
}

// Close closes the NATS connection.
func (t *NATSTransport) Close() {
	t.nc.Close()
}

type natsSubscription struct {
	once sync.Once
	stop func() error
	err  error
}

func (s *natsSubscription) Close() error {
	s.once.Do(func() {
		s.err = s.stop()
	})
	return s.err
}

var _ Transport = (*NATSTransport)(nil)

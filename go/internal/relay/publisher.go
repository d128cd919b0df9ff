package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mcdev12/retrospekt/go/internal/push"
)

// Publisher delivers one snapshot frame to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, subject string, data []byte) error

func (f PublisherFunc) Publish(ctx context.Context, subject string, data []byte) error {
	return f(ctx, subject, data)
}

// Fanout publishes every frame to each of its publishers in turn.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, subject string, data []byte) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, subject, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NATSPublisher publishes snapshots to core NATS, or to JetStream when a
// stream is configured so late subscribers can replay the latest snapshot.
type NATSPublisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

// WithStream creates or updates a stream that keeps the last snapshot of
// every session and switches publishing to JetStream.
func (p *NATSPublisher) WithStream(ctx context.Context, name string) error {
	js, err := jetstream.New(p.nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:              name,
		Subjects:          []string{push.SubjectPrefix + ">"},
		MaxMsgsPerSubject: 1,
		Duplicates:        2 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", name, err)
	}

	p.js = js
	return nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, uuid.NewString())

	if p.js != nil {
		if _, err := p.js.PublishMsg(ctx, msg); err != nil {
			return fmt.Errorf("publish %s: %w", subject, err)
		}
		return nil
	}

	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Package redispub mirrors match events onto a Redis stream so downstream
// consumers (league dashboards, archival pipelines) can follow the match
// without connecting to the scorer directly. Opt-in: with no Redis address
// configured, nothing is published.
package redispub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkrishnan/kabaddi-live/internal/events"
	"github.com/mkrishnan/kabaddi-live/internal/telemetry"
)

const publishTimeout = 2 * time.Second

// Publisher appends event envelopes to a Redis stream via XADD.
type Publisher struct {
	client *redis.Client
	stream string
}

func New(addr, stream string) *Publisher {
	return &Publisher{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		stream: stream,
	}
}

// Ping verifies the Redis connection.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Attach subscribes the publisher to every event on the bus.
func (p *Publisher) Attach(bus *events.Bus) {
	bus.SubscribeAll(p.publish)
}

func (p *Publisher) publish(e events.Event) error {
	// ticks are noise at stream scale, same as in the journal
	if cp, ok := e.Payload.(events.ClockPayload); ok && cp.Action == "tick" {
		return nil
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", e.Type, err)
	}

	// off the publisher's goroutine: an unreachable Redis must not stall scoring
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		err := p.client.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			Values: map[string]interface{}{
				"event_id":   e.ID,
				"event_type": string(e.Type),
				"ts":         e.Timestamp.UTC().Format(time.RFC3339Nano),
				"data":       string(data),
			},
		}).Err()
		if err != nil {
			telemetry.Warnf("redispub: XADD %s failed: %v", p.stream, err)
		}
	}()
	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

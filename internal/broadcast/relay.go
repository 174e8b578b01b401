package broadcast

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis pub/sub channel carrying hub events.
const DefaultChannel = "quiz:events"

// Relay mirrors hub events across instances through a Redis channel, so
// observers connected to any instance see every record lifecycle event.
// Messages carry an origin instance ID; a relay ignores its own.
type Relay struct {
	hub     *Hub
	client  *redis.Client
	channel string
	origin  string
}

type envelope struct {
	Origin  string          `json:"origin"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func NewRelay(hub *Hub, client *redis.Client, channel string) *Relay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Relay{
		hub:     hub,
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
	}
}

// Emit delivers the event locally and publishes it for the other instances.
// Publish failures are logged only; local observers were already notified.
func (r *Relay) Emit(event string, payload any) {
	r.hub.Emit(event, payload)

	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("relay: marshal %s payload: %v", event, err)
		return
	}
	data, err := json.Marshal(envelope{Origin: r.origin, Event: event, Payload: raw})
	if err != nil {
		log.Printf("relay: marshal %s envelope: %v", event, err)
		return
	}
	if err := r.client.Publish(context.Background(), r.channel, data).Err(); err != nil {
		log.Printf("relay: publish %s: %v", event, err)
	}
}

// Run consumes foreign events until ctx is canceled and re-emits them on the
// local hub.
func (r *Relay) Run(ctx context.Context) {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("relay: bad message on %s: %v", r.channel, err)
				continue
			}
			if env.Origin == r.origin {
				continue
			}
			r.hub.Emit(env.Event, env.Payload)
		}
	}
}

package events

import (
	"context"
	"sync"
	"time"

	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

const (
	TopicUser    = "user_events"
	TopicProduct = "product_events"
	TopicOrder   = "order_events"
	TopicContact = "contact_events"
)

const publishTimeout = 5 * time.Second

type Event struct {
	Type    string         `json:"type"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event Event) error
}

// Emit publishes an event without failing the caller; errors are only logged.
func Emit(ctx context.Context, p Publisher, topic, key, typ string, payload map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := Event{Type: typ, At: time.Now().UTC(), Payload: payload}
	if err := p.Publish(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Error("event_publish_error", "topic", topic, "type", typ, "error", err)
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, string, string, Event) error { return nil }

type Published struct {
	Topic string
	Key   string
	Event Event
}

// Recorder keeps every published event in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Published
}

func (r *Recorder) Publish(_ context.Context, topic, key string, ev Event) error {
	r.mu.Lock()
	r.Events = append(r.Events, Published{Topic: topic, Key: key, Event: ev})
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Event.Type)
	}
	return out
}

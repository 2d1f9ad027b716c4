// Package events is netopscore's in-process pub/sub: the Config ingest
// path publishes ConfigIngested after a new Config version is parsed,
// and the analysis job controller publishes AnalysisCompleted when a job
// finishes or fails. Summary invalidation does not go through the bus;
// cmd/netopscore subscribes logging handlers only. A thin layer over a
// watermill gochannel pub/sub carrying this system's two event types.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topic names. One topic per event type.
const (
	TopicConfigIngested     = "config.ingested"
	TopicAnalysisCompleted  = "analysis.completed"
)

// ConfigIngested is published whenever a new Config document version is
// parsed into a DeviceRecord.
type ConfigIngested struct {
	ProjectID  string `json:"project_id"`
	DeviceName string `json:"device_name"`
}

// AnalysisCompleted is published when the job controller finishes (or
// fails) an LLM analysis job.
type AnalysisCompleted struct {
	ProjectID  string `json:"project_id"`
	Kind       string `json:"kind"`
	DeviceName string `json:"device_name"`
	Succeeded  bool   `json:"succeeded"`
}

// Handler processes one decoded event payload.
type Handler func(ctx context.Context, payload []byte) error

// Bus is netopscore's event bus: publish a typed event, subscribe a
// handler per topic.
type Bus struct {
	pubsub *gochannel.GoChannel
	mu     sync.Mutex
	subs   map[string][]Handler
}

// New builds a Bus backed by an in-process watermill gochannel pubsub.
// There is no persistence and no cross-process delivery: events reach
// only subscribers in the same process.
func New() *Bus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            256,
		Persistent:                     false,
		BlockPublishUntilSubscriberAck: false,
	}, watermill.NewStdLogger(false, false))

	return &Bus{pubsub: pubsub, subs: make(map[string][]Handler)}
}

// PublishConfigIngested publishes a ConfigIngested event.
func (b *Bus) PublishConfigIngested(ctx context.Context, ev ConfigIngested) error {
	return b.publish(ctx, TopicConfigIngested, ev)
}

// PublishAnalysisCompleted publishes an AnalysisCompleted event.
func (b *Bus) PublishAnalysisCompleted(ctx context.Context, ev AnalysisCompleted) error {
	return b.publish(ctx, TopicAnalysisCompleted, ev)
}

func (b *Bus) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return b.pubsub.Publish(topic, msg)
}

// Subscribe registers handler to run for every message on topic. Each
// call starts its own consumer goroutine pulling from the topic's
// channel until Close.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("events: subscribe %s: %w", topic, err)
	}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], handler)
	b.mu.Unlock()

	go func() {
		for msg := range messages {
			if err := handler(msg.Context(), msg.Payload); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

// Close releases the underlying pubsub resources.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

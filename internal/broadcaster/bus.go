// Package broadcaster fans typed progress envelopes out to subscribers
// keyed by topic, the topic-keyed generalisation of ws-broadcaster's
// single-bus Hub (§4.8).
package broadcaster

import (
	"strconv"
	"sync"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

const subscriberBufferSize = 256

// subscriber is one registered receiver within a topic.
type subscriber struct {
	id string
	ch chan models.ProgressEnvelope
}

// Bus is the in-process pub/sub used by the coordinator and the write
// queue handler to publish on scrape_progress/odds_updates/risk_alerts
// without knowing who, if anyone, is listening.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscriber // topic -> subscribers
	nextID      int
}

var _ contracts.Publisher = (*Bus)(nil)

func New() *Bus {
	return &Bus{subscribers: make(map[string][]*subscriber)}
}

// Subscribe registers a new listener on topic and returns its receive
// channel plus an Unsubscribe func. The channel is closed on
// unsubscribe, matching Hub's close(c.Send) on disconnect.
func (b *Bus) Subscribe(topic string) (<-chan models.ProgressEnvelope, func()) {
	b.mu.Lock()
	b.nextID++
	sub := &subscriber{id: topicSubscriberID(topic, b.nextID), ch: make(chan models.ProgressEnvelope, subscriberBufferSize)}
	b.subscribers[topic] = append(b.subscribers[topic], sub)
	b.mu.Unlock()

	unsubscribe := func() { b.remove(topic, sub) }
	return sub.ch, unsubscribe
}

func (b *Bus) remove(topic string, target *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for i, s := range subs {
		if s == target {
			b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
			close(s.ch)
			return
		}
	}
}

// Publish sends envelope to every subscriber of topic. A subscriber
// whose buffer is full is too slow; it is dropped — its channel closed
// and removed from the topic — rather than blocking the publisher or
// silently losing messages forever while staying registered (§4.8).
func (b *Bus) Publish(topic string, envelope models.ProgressEnvelope) {
	b.mu.RLock()
	subs := make([]*subscriber, len(b.subscribers[topic]))
	copy(subs, b.subscribers[topic])
	b.mu.RUnlock()

	for _, s := range subs {
		select {
		case s.ch <- envelope:
		default:
			b.remove(topic, s)
		}
	}
}

// SubscriberCount reports how many listeners a topic currently has,
// surfaced on admin/health endpoints.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

func topicSubscriberID(topic string, n int) string {
	return topic + "#" + strconv.Itoa(n)
}

package sse

import (
	"sync"
)

// Hub fans stage and print events out to SSE subscribers, one topic per user
// id. Channel ownership stays with the handler that subscribed it; the hub
// only ever sends and never closes a subscriber channel.
type Hub struct {
	// topics maps topic -> set of client channels
	topics map[string]map[chan []byte]bool

	subscribe   chan subscription
	unsubscribe chan subscription
	publish     chan topicMessage

	mu sync.Mutex
}

type subscription struct {
	ch    chan []byte
	topic string
}

type topicMessage struct {
	topic string
	msg   []byte
}

var defaultHub *Hub

// NewHub creates a hub. The publish channel is buffered (100) so short bursts
// of stage notifications do not block the orchestrator.
func NewHub() *Hub {
	return &Hub{
		topics:      make(map[string]map[chan []byte]bool),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		publish:     make(chan topicMessage, 100),
	}
}

// SetDefaultHub sets the package-level default hub.
func SetDefaultHub(h *Hub) {
	defaultHub = h
}

// GetHub returns the default hub (may be nil if not set).
func GetHub() *Hub {
	return defaultHub
}

// Run is the hub event loop; run it in its own goroutine. All mutation of
// topics happens here.
func (h *Hub) Run() {
	for {
		select {
		case s := <-h.subscribe:
			h.mu.Lock()
			subs, ok := h.topics[s.topic]
			if !ok {
				subs = make(map[chan []byte]bool)
				h.topics[s.topic] = subs
			}
			subs[s.ch] = true
			h.mu.Unlock()
		case s := <-h.unsubscribe:
			h.mu.Lock()
			if subs, ok := h.topics[s.topic]; ok {
				delete(subs, s.ch)
				if len(subs) == 0 {
					delete(h.topics, s.topic)
				}
			}
			h.mu.Unlock()
		case tm := <-h.publish:
			h.mu.Lock()
			if subs, ok := h.topics[tm.topic]; ok {
				for ch := range subs {
					select {
					case ch <- tm.msg:
					default:
						// drop if client not reading
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishTopic delivers msg to every subscriber of topic.
func (h *Hub) PublishTopic(topic string, msg []byte) {
	h.publish <- topicMessage{topic: topic, msg: msg}
}

// Subscribe registers ch for topic. Callers should pass a buffered channel
// and must unsubscribe before closing it.
func (h *Hub) Subscribe(ch chan []byte, topic string) {
	h.subscribe <- subscription{ch: ch, topic: topic}
}

// Unsubscribe removes ch from topic.
func (h *Hub) Unsubscribe(ch chan []byte, topic string) {
	h.unsubscribe <- subscription{ch: ch, topic: topic}
}

package store

import (
	"context"
	"sync"
)

// Message is one pubsub delivery, shaped like redis.Message so consumers can
// treat both transports the same.
type Message struct {
	Channel string
	Payload string
}

// Subscription is an in-process subscription to one or more channels.
type Subscription struct {
	mu     sync.Mutex
	ch     chan *Message
	done   chan struct{}
	closed bool
}

// Channel returns the delivery channel. It is closed when the subscription is.
func (s *Subscription) Channel() <-chan *Message {
	return s.ch
}

func (s *Subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
		close(s.ch)
	}
	return nil
}

func (s *Subscription) deliver(msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- msg:
	default:
		// Slow subscriber, drop rather than block the publisher.
	}
}

// PubSubHub is an in-process stand-in for Redis pubsub, used when the service
// runs without Redis.
type PubSubHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscription]struct{}
}

func NewPubSubHub() *PubSubHub {
	return &PubSubHub{subscribers: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers for the given channels. The subscription is torn down
// when ctx is cancelled or Close is called.
func (h *PubSubHub) Subscribe(ctx context.Context, channels ...string) *Subscription {
	sub := &Subscription{
		ch:   make(chan *Message, 64),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	for _, channel := range channels {
		if h.subscribers[channel] == nil {
			h.subscribers[channel] = make(map[*Subscription]struct{})
		}
		h.subscribers[channel][sub] = struct{}{}
	}
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
		h.remove(sub, channels)
	}()

	return sub
}

func (h *PubSubHub) remove(sub *Subscription, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, channel := range channels {
		delete(h.subscribers[channel], sub)
		if len(h.subscribers[channel]) == 0 {
			delete(h.subscribers, channel)
		}
	}
}

// Publish delivers payload to every live subscriber of channel.
func (h *PubSubHub) Publish(channel, payload string) {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subscribers[channel]))
	for sub := range h.subscribers[channel] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	msg := &Message{Channel: channel, Payload: payload}
	for _, sub := range subs {
		sub.deliver(msg)
	}
}

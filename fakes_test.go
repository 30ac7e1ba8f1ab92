package tether

import (
	"errors"
	"time"
)

var errFake = errors.New("fake failure")

// fakeClock is a manually advanced clock for debounced code.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeTransport records subscriptions and publications in memory.
type fakeTransport struct {
	subs []*fakeSubscription
	pubs []*fakePublisher
	log  []string

	subscribeErr error
	advertiseErr error
}

type fakeSubscription struct {
	t           *fakeTransport
	topic       string
	messageType string
	queueSize   int
	fn          MessageHandler
	active      bool
}

func (s *fakeSubscription) Unsubscribe() error {
	s.active = false
	s.t.log = append(s.t.log, "unsubscribe "+s.topic)
	return nil
}

type fakePublisher struct {
	t           *fakeTransport
	topic       string
	messageType string
	sent        []any
	active      bool
	publishErr  error
}

func (p *fakePublisher) Publish(msg any) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.sent = append(p.sent, msg)
	return nil
}

func (p *fakePublisher) Unadvertise() error {
	p.active = false
	p.t.log = append(p.t.log, "unadvertise "+p.topic)
	return nil
}

func (t *fakeTransport) Subscribe(topic, messageType string, queueSize int, fn MessageHandler) (Subscription, error) {
	if t.subscribeErr != nil {
		return nil, t.subscribeErr
	}
	s := &fakeSubscription{t: t, topic: topic, messageType: messageType, queueSize: queueSize, fn: fn, active: true}
	t.subs = append(t.subs, s)
	t.log = append(t.log, "subscribe "+topic)
	return s, nil
}

func (t *fakeTransport) Advertise(topic, messageType string) (Publisher, error) {
	if t.advertiseErr != nil {
		return nil, t.advertiseErr
	}
	p := &fakePublisher{t: t, topic: topic, messageType: messageType, active: true}
	t.pubs = append(t.pubs, p)
	t.log = append(t.log, "advertise "+topic)
	return p, nil
}

// active returns the live subscriptions.
func (t *fakeTransport) active() []*fakeSubscription {
	var out []*fakeSubscription
	for _, s := range t.subs {
		if s.active {
			out = append(out, s)
		}
	}
	return out
}

// deliver hands payload to every live subscription on topic.
func (t *fakeTransport) deliver(topic string, payload []byte) int {
	n := 0
	for _, s := range t.active() {
		if s.topic == topic {
			s.fn(payload)
			n++
		}
	}
	return n
}

// activePublisher returns the live publisher on topic, or nil.
func (t *fakeTransport) activePublisher(topic string) *fakePublisher {
	for _, p := range t.pubs {
		if p.active && p.topic == topic {
			return p
		}
	}
	return nil
}

package tether

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const rosbridgeWriteWait = 10 * time.Second

// ErrClientClosed is returned by operations on a closed RosbridgeClient.
var ErrClientClosed = errors.New("tether: rosbridge client closed")

// rosbridgeOp is one rosbridge v2 protocol frame. Only the fields an op
// needs are set.
type rosbridgeOp struct {
	Op          string          `json:"op"`
	ID          string          `json:"id,omitempty"`
	Topic       string          `json:"topic"`
	Type        string          `json:"type,omitempty"`
	QueueLength int             `json:"queue_length,omitempty"`
	Msg         json.RawMessage `json:"msg,omitempty"`
}

type inboundMessage struct {
	topic string
	msg   json.RawMessage
}

// RosbridgeClient is a Transport speaking the rosbridge v2 JSON protocol
// over a websocket.
//
// A background goroutine reads frames into an inbox; handlers only run when
// the owner calls Drain, so they execute on the caller's loop in arrival
// order. All other methods must also be called from that loop.
type RosbridgeClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	inbox   []inboundMessage
	readErr error
	closed  bool

	subs   map[string][]*rosbridgeSubscription
	nextID uint64
	done   chan struct{}
}

// DialRosbridge connects to a rosbridge server at url (ws:// or wss://).
func DialRosbridge(ctx context.Context, url string) (*RosbridgeClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("tether: dial rosbridge %s: %w", url, err)
	}
	return newRosbridgeClient(conn), nil
}

func newRosbridgeClient(conn *websocket.Conn) *RosbridgeClient {
	c := &RosbridgeClient{
		conn: conn,
		subs: make(map[string][]*rosbridgeSubscription),
		done: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *RosbridgeClient) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if !c.closed {
				c.readErr = err
			}
			c.mu.Unlock()
			return
		}
		var op rosbridgeOp
		if err := json.Unmarshal(data, &op); err != nil {
			logger.Warn().Err(err).Msg("rosbridge: malformed frame")
			continue
		}
		switch op.Op {
		case "publish":
			c.mu.Lock()
			c.inbox = append(c.inbox, inboundMessage{topic: op.Topic, msg: op.Msg})
			c.mu.Unlock()
		case "status":
			logger.Debug().RawJSON("frame", data).Msg("rosbridge status")
		default:
			logger.Debug().Str("op", op.Op).Msg("rosbridge: ignored op")
		}
	}
}

// Drain delivers every message received since the last call to the
// handlers subscribed to its topic. Returns the number of messages drained.
func (c *RosbridgeClient) Drain() int {
	c.mu.Lock()
	batch := c.inbox
	c.inbox = nil
	c.mu.Unlock()

	for _, m := range batch {
		subs := append([]*rosbridgeSubscription(nil), c.subs[m.topic]...)
		for _, s := range subs {
			if s.active {
				s.fn(m.msg)
			}
		}
	}
	return len(batch)
}

// Err returns the error that stopped the read loop, or nil while connected
// or after a clean Close.
func (c *RosbridgeClient) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

func (c *RosbridgeClient) id(op, topic string) string {
	c.nextID++
	return fmt.Sprintf("%s:%s:%d", op, topic, c.nextID)
}

func (c *RosbridgeClient) send(op rosbridgeOp) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClientClosed
	}

	data, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("tether: encode %s: %w", op.Op, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(rosbridgeWriteWait)); err != nil {
		return fmt.Errorf("tether: %s %s: %w", op.Op, op.Topic, err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("tether: %s %s: %w", op.Op, op.Topic, err)
	}
	return nil
}

// Subscribe implements Transport.
func (c *RosbridgeClient) Subscribe(topic, messageType string, queueSize int, fn MessageHandler) (Subscription, error) {
	if fn == nil {
		panic("tether: Subscribe with nil handler")
	}
	s := &rosbridgeSubscription{client: c, topic: topic, id: c.id("subscribe", topic), fn: fn, active: true}
	err := c.send(rosbridgeOp{
		Op:          "subscribe",
		ID:          s.id,
		Topic:       topic,
		Type:        messageType,
		QueueLength: queueSize,
	})
	if err != nil {
		return nil, err
	}
	c.subs[topic] = append(c.subs[topic], s)
	return s, nil
}

// Advertise implements Transport.
func (c *RosbridgeClient) Advertise(topic, messageType string) (Publisher, error) {
	p := &rosbridgePublisher{client: c, topic: topic, id: c.id("advertise", topic)}
	err := c.send(rosbridgeOp{Op: "advertise", ID: p.id, Topic: topic, Type: messageType})
	if err != nil {
		return nil, err
	}
	p.active = true
	return p, nil
}

// Close sends a close frame, closes the connection and waits for the read
// loop to exit. Safe to call more than once.
func (c *RosbridgeClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

type rosbridgeSubscription struct {
	client *RosbridgeClient
	topic  string
	id     string
	fn     MessageHandler
	active bool
}

func (s *rosbridgeSubscription) Unsubscribe() error {
	if !s.active {
		return nil
	}
	s.active = false

	subs := s.client.subs[s.topic]
	for i, other := range subs {
		if other == s {
			s.client.subs[s.topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(s.client.subs[s.topic]) == 0 {
		delete(s.client.subs, s.topic)
	}
	return s.client.send(rosbridgeOp{Op: "unsubscribe", ID: s.id, Topic: s.topic})
}

type rosbridgePublisher struct {
	client *RosbridgeClient
	topic  string
	id     string
	active bool
}

func (p *rosbridgePublisher) Publish(msg any) error {
	if !p.active {
		return fmt.Errorf("tether: publish on unadvertised topic %s", p.topic)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("tether: encode message for %s: %w", p.topic, err)
	}
	return p.client.send(rosbridgeOp{Op: "publish", Topic: p.topic, Msg: data})
}

func (p *rosbridgePublisher) Unadvertise() error {
	if !p.active {
		return nil
	}
	p.active = false
	return p.client.send(rosbridgeOp{Op: "unadvertise", ID: p.id, Topic: p.topic})
}

package tether

// MessageHandler receives the raw JSON payload of one inbound message.
// Transports call it on the event loop, in arrival order.
type MessageHandler func(payload []byte)

// Transport is a topic-based pub/sub connection to the robot.
type Transport interface {
	// Subscribe starts delivering messages published on topic to fn.
	Subscribe(topic, messageType string, queueSize int, fn MessageHandler) (Subscription, error)
	// Advertise declares this client as a publisher on topic.
	Advertise(topic, messageType string) (Publisher, error)
}

// Subscription is an active topic subscription.
type Subscription interface {
	Unsubscribe() error
}

// Publisher sends messages on an advertised topic.
type Publisher interface {
	Publish(msg any) error
	Unadvertise() error
}

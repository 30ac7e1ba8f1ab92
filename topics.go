package tether

import "fmt"

// TopicBinding is a named topic and its subscription state.
type TopicBinding struct {
	Name        string
	MessageType string

	sub Subscription
}

// Subscribed reports whether the binding currently has a live subscription.
func (b TopicBinding) Subscribed() bool {
	return b.sub != nil
}

// TopicManager owns the subscriptions of an interactive marker client: the
// snapshot channel it starts on, the incremental-update channel it may switch
// to once, and the feedback channel it publishes on.
type TopicManager struct {
	transport Transport
	queueSize int
	handler   MessageHandler

	current TopicBinding

	feedback     Publisher
	feedbackName string

	updateTopic *TopicName
	initialized bool
}

// NewTopicManager creates a manager for the given snapshot topic. Nothing is
// subscribed until Start.
func NewTopicManager(transport Transport, snapshot TopicName, queueSize int) *TopicManager {
	if snapshot.MessageType == "" {
		snapshot.MessageType = MessageTypeInteractiveMarkerInit
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &TopicManager{
		transport: transport,
		queueSize: queueSize,
		current:   TopicBinding{Name: snapshot.Name, MessageType: snapshot.MessageType},
	}
}

// Start subscribes to the snapshot topic, delivering payloads to handler.
func (m *TopicManager) Start(handler MessageHandler) error {
	m.handler = handler
	sub, err := m.transport.Subscribe(m.current.Name, m.current.MessageType, m.queueSize, handler)
	if err != nil {
		return fmt.Errorf("tether: subscribe %s: %w", m.current.Name, err)
	}
	m.current.sub = sub
	logger.Debug().Str("topic", m.current.Name).Msg("subscribed to snapshot topic")
	return nil
}

// Current returns the snapshot-or-update binding.
func (m *TopicManager) Current() TopicBinding {
	return m.current
}

// Initialized reports whether the first non-empty snapshot has arrived.
func (m *TopicManager) Initialized() bool {
	return m.initialized
}

// Feedback returns the bound feedback publisher, or nil.
func (m *TopicManager) Feedback() Publisher {
	return m.feedback
}

// ChangeTopic unsubscribes the current binding and subscribes to name.
// A failed subscription is logged; the binding keeps the new name.
func (m *TopicManager) ChangeTopic(name, messageType string) {
	m.Unsubscribe()
	m.current = TopicBinding{Name: name, MessageType: messageType}
	sub, err := m.transport.Subscribe(name, messageType, m.queueSize, m.handler)
	if err != nil {
		logger.Error().Err(err).Str("topic", name).Msg("subscribe failed")
		return
	}
	m.current.sub = sub
	logger.Debug().Str("topic", name).Msg("switched topic")
}

// Unsubscribe drops the current subscription, keeping the binding's name.
func (m *TopicManager) Unsubscribe() {
	if m.current.sub == nil {
		return
	}
	if err := m.current.sub.Unsubscribe(); err != nil {
		logger.Warn().Err(err).Str("topic", m.current.Name).Msg("unsubscribe failed")
	}
	m.current.sub = nil
}

// Configure applies topic-related options.
//
// The feedback publisher is rebuilt whenever a feedback topic is given and
// cleared when it is not. Once initialized, a configured update topic that
// differs from the current binding is switched to immediately; removing the
// update topic while subscribed to it drops that subscription.
func (m *TopicManager) Configure(opts Options) {
	opts = opts.normalized()
	m.queueSize = opts.QueueSize
	m.configureFeedback(opts.FeedbackTopic)

	prev := m.updateTopic
	m.updateTopic = opts.UpdateTopic

	if !m.initialized {
		return
	}
	switch {
	case opts.UpdateTopic != nil && m.current.Name != opts.UpdateTopic.Name:
		m.ChangeTopic(opts.UpdateTopic.Name, opts.UpdateTopic.MessageType)
	case opts.UpdateTopic == nil && prev != nil && m.current.Name == prev.Name:
		m.Unsubscribe()
	}
}

func (m *TopicManager) configureFeedback(topic *TopicName) {
	if m.feedback != nil {
		if err := m.feedback.Unadvertise(); err != nil {
			logger.Warn().Err(err).Str("topic", m.feedbackName).Msg("unadvertise failed")
		}
		m.feedback = nil
		m.feedbackName = ""
	}
	if topic == nil {
		return
	}
	pub, err := m.transport.Advertise(topic.Name, topic.MessageType)
	if err != nil {
		logger.Error().Err(err).Str("topic", topic.Name).Msg("advertise failed")
		return
	}
	m.feedback = pub
	m.feedbackName = topic.Name
}

// SnapshotReceived performs the one-time transition after the first
// non-empty snapshot: switch to the update topic if one is configured,
// otherwise stop listening to the snapshot topic.
func (m *TopicManager) SnapshotReceived() {
	if m.initialized {
		return
	}
	m.initialized = true
	if m.updateTopic != nil {
		m.ChangeTopic(m.updateTopic.Name, m.updateTopic.MessageType)
		return
	}
	m.Unsubscribe()
}

// Close unsubscribes and unadvertises everything.
func (m *TopicManager) Close() {
	m.Unsubscribe()
	m.configureFeedback(nil)
}

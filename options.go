package tether

import (
	"errors"
	"fmt"
)

const defaultQueueSize = 1

// TopicName names a topic and the message type carried on it.
type TopicName struct {
	Name        string
	MessageType string
}

// Options configures an InteractiveMarkers controller. The zero value is
// valid and equals DefaultOptions.
type Options struct {
	// FeedbackTopic is where drag feedback is published. Nil disables
	// feedback; drags then only move markers locally. MessageType defaults
	// to MessageTypeInteractiveMarkerFeedback.
	FeedbackTopic *TopicName
	// UpdateTopic is the incremental-update channel to switch to after the
	// first snapshot. Nil makes the snapshot one-shot. MessageType defaults
	// to MessageTypeInteractiveMarkerUpdate.
	UpdateTopic *TopicName
	// QueueSize is the transport-side queue length for subscriptions.
	// Default 1.
	QueueSize int
	// Hidden starts markers hidden. Default false.
	Hidden bool
}

// DefaultOptions returns options with no feedback or update topic, queue
// size 1 and visible markers.
func DefaultOptions() Options {
	return Options{QueueSize: defaultQueueSize}
}

var (
	errEmptyTopicName    = errors.New("topic name is empty")
	errNegativeQueueSize = errors.New("queue size is negative")
)

// Validate reports the first invalid field.
func (o Options) Validate() error {
	if o.QueueSize < 0 {
		return fmt.Errorf("tether: options: %w: %d", errNegativeQueueSize, o.QueueSize)
	}
	if o.FeedbackTopic != nil && o.FeedbackTopic.Name == "" {
		return fmt.Errorf("tether: options: feedback %w", errEmptyTopicName)
	}
	if o.UpdateTopic != nil && o.UpdateTopic.Name == "" {
		return fmt.Errorf("tether: options: update %w", errEmptyTopicName)
	}
	return nil
}

// normalized fills default message types and queue size.
func (o Options) normalized() Options {
	if o.QueueSize == 0 {
		o.QueueSize = defaultQueueSize
	}
	if o.FeedbackTopic != nil {
		t := *o.FeedbackTopic
		if t.MessageType == "" {
			t.MessageType = MessageTypeInteractiveMarkerFeedback
		}
		o.FeedbackTopic = &t
	}
	if o.UpdateTopic != nil {
		t := *o.UpdateTopic
		if t.MessageType == "" {
			t.MessageType = MessageTypeInteractiveMarkerUpdate
		}
		o.UpdateTopic = &t
	}
	return o
}

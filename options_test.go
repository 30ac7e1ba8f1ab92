package tether

import (
	"errors"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.QueueSize != 1 || o.Hidden || o.FeedbackTopic != nil || o.UpdateTopic != nil {
		t.Errorf("DefaultOptions = %+v", o)
	}
	if err := o.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestZeroOptionsShowMarkers(t *testing.T) {
	f := newMarkersFixture(t, Options{})
	f.m.Update(InteractiveMarkerUpdate{Markers: []InteractiveMarker{testMarker("a", 0, true)}})
	if obj, _ := f.m.MarkerObject("a"); !obj.Visible {
		t.Error("zero Options should show markers")
	}
	if got := f.m.Options(); got != DefaultOptions() {
		t.Errorf("Options() = %+v, want defaults", got)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"negative queue", Options{QueueSize: -1}, errNegativeQueueSize},
		{"empty feedback", Options{FeedbackTopic: &TopicName{}}, errEmptyTopicName},
		{"empty update", Options{UpdateTopic: &TopicName{MessageType: "x"}}, errEmptyTopicName},
		{"zero value", Options{}, nil},
		{"named topics", Options{FeedbackTopic: &TopicName{Name: "/fb"}, UpdateTopic: &TopicName{Name: "/up"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOptionsNormalized(t *testing.T) {
	fb := &TopicName{Name: "/fb"}
	up := &TopicName{Name: "/up", MessageType: "custom/Update"}
	o := Options{FeedbackTopic: fb, UpdateTopic: up}.normalized()

	if o.QueueSize != defaultQueueSize {
		t.Errorf("QueueSize = %d, want %d", o.QueueSize, defaultQueueSize)
	}
	if o.FeedbackTopic.MessageType != MessageTypeInteractiveMarkerFeedback {
		t.Errorf("feedback type = %q", o.FeedbackTopic.MessageType)
	}
	if o.UpdateTopic.MessageType != "custom/Update" {
		t.Errorf("update type = %q, want explicit type kept", o.UpdateTopic.MessageType)
	}
	if fb.MessageType != "" {
		t.Error("normalized mutated the caller's TopicName")
	}
}

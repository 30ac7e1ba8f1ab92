package tether

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackInterval is the trailing-edge debounce window for drag feedback.
const FeedbackInterval = 30 * time.Millisecond

// feedbackPublisher turns dragged objects into feedback messages. Drag events
// go through a debouncer, so at most one message is built per quiet window
// and the last drag position always gets through.
type feedbackPublisher struct {
	clientID string
	seq      uint32

	channel   func() Publisher
	onPublish func(FeedbackMessage)
	debounced *Debouncer[DragEvent]
}

func newFeedbackPublisher(channel func() Publisher, now func() time.Time) *feedbackPublisher {
	f := &feedbackPublisher{
		clientID: "tether-" + uuid.NewString(),
		channel:  channel,
	}
	f.debounced = NewDebouncer(FeedbackInterval, f.publish, now)
	return f
}

// message builds the feedback for a dragged object from its world transform.
// Scale is discarded. Reports false when the object carries no ControlTag.
func (f *feedbackPublisher) message(ev DragEvent) (FeedbackMessage, bool) {
	if ev.Object == nil || ev.Object.IsDisposed() {
		return FeedbackMessage{}, false
	}
	tag, ok := ev.Object.UserData.(ControlTag)
	if !ok {
		return FeedbackMessage{}, false
	}
	pos, rot, _ := decomposeMatrix(ev.Object.WorldMatrix())

	control := ev.Control
	if control == "" {
		control = tag.ControlName
	}
	return FeedbackMessage{
		Seq:         f.seq,
		ClientID:    f.clientID,
		FrameID:     tag.FrameID,
		MarkerName:  tag.MarkerName,
		ControlName: control,
		Position:    pos,
		Orientation: rot,
	}, true
}

// publish sends feedback for ev immediately. The sequence number advances on
// every published message whether or not a feedback channel is bound.
func (f *feedbackPublisher) publish(ev DragEvent) {
	msg, ok := f.message(ev)
	if !ok {
		logger.Warn().Msg("drag event without control tag, feedback skipped")
		return
	}
	f.seq++

	if pub := f.channel(); pub != nil {
		if err := pub.Publish(msg); err != nil {
			logger.Warn().Err(err).Str("marker", msg.MarkerName).Msg("publish feedback failed")
		}
	}
	if f.onPublish != nil {
		f.onPublish(msg)
	}
}

package tether

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl64"
)

// ROS message type names used on the wire.
const (
	MessageTypeInteractiveMarkerInit     = "visualization_msgs/InteractiveMarkerInit"
	MessageTypeInteractiveMarkerUpdate   = "visualization_msgs/InteractiveMarkerUpdate"
	MessageTypeInteractiveMarkerFeedback = "visualization_msgs/InteractiveMarkerFeedback"
)

// Interaction modes of an InteractiveMarkerControl.
const (
	InteractionNone         uint8 = 0
	InteractionMenu         uint8 = 1
	InteractionButton       uint8 = 2
	InteractionMoveAxis     uint8 = 3
	InteractionMovePlane    uint8 = 4
	InteractionRotateAxis   uint8 = 5
	InteractionMoveRotate   uint8 = 6
	InteractionMove3D       uint8 = 7
	InteractionRotate3D     uint8 = 8
	InteractionMoveRotate3D uint8 = 9
)

// Visual marker types (visualization_msgs/Marker).
const (
	MarkerArrow     int32 = 0
	MarkerCube      int32 = 1
	MarkerSphere    int32 = 2
	MarkerCylinder  int32 = 3
	MarkerLineStrip int32 = 4
	MarkerLineList  int32 = 5
)

// feedbackPoseUpdate is InteractiveMarkerFeedback.POSE_UPDATE.
const feedbackPoseUpdate = 1

// Header is the subset of std_msgs/Header tether reads and writes.
type Header struct {
	Seq     uint32 `json:"seq"`
	FrameID string `json:"frame_id"`
}

// ColorRGBA is a JSON-compatible std_msgs/ColorRGBA.
type ColorRGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Marker is a visual element of a control.
type Marker struct {
	Type   int32     `json:"type"`
	Pose   Pose      `json:"pose"`
	Scale  Point     `json:"scale"`
	Color  ColorRGBA `json:"color"`
	Points []Point   `json:"points,omitempty"`
}

// InteractiveMarkerControl is one draggable or clickable part of a marker.
type InteractiveMarkerControl struct {
	Name            string     `json:"name"`
	Orientation     Quaternion `json:"orientation"`
	OrientationMode uint8      `json:"orientation_mode"`
	InteractionMode uint8      `json:"interaction_mode"`
	AlwaysVisible   bool       `json:"always_visible"`
	Markers         []Marker   `json:"markers"`
	Description     string     `json:"description,omitempty"`
}

// Draggable reports whether the control moves or rotates its marker.
func (c InteractiveMarkerControl) Draggable() bool {
	return c.InteractionMode >= InteractionMoveAxis
}

// InteractiveMarker is a named, posed object with controls, owned by a
// remote marker server.
type InteractiveMarker struct {
	Header      Header                     `json:"header"`
	Name        string                     `json:"name"`
	Description string                     `json:"description,omitempty"`
	Pose        Pose                       `json:"pose"`
	Scale       float64                    `json:"scale"`
	Controls    []InteractiveMarkerControl `json:"controls"`
}

// FrameID returns the frame the marker pose is expressed in.
func (m InteractiveMarker) FrameID() string {
	return m.Header.FrameID
}

// InteractiveMarkerPose is a pose-only update for a known marker.
type InteractiveMarkerPose struct {
	Header Header `json:"header"`
	Pose   Pose   `json:"pose"`
	Name   string `json:"name"`
}

// InteractiveMarkerUpdate is the payload of both the snapshot channel
// (InteractiveMarkerInit carries only Markers) and the incremental-update
// channel.
type InteractiveMarkerUpdate struct {
	ServerID string                  `json:"server_id,omitempty"`
	SeqNum   uint64                  `json:"seq_num,omitempty"`
	Type     uint8                   `json:"type,omitempty"`
	Markers  []InteractiveMarker     `json:"markers"`
	Poses    []InteractiveMarkerPose `json:"poses,omitempty"`
	Erases   []string                `json:"erases,omitempty"`
}

// DecodeInteractiveMarkerUpdate parses a snapshot or update payload.
func DecodeInteractiveMarkerUpdate(data []byte) (InteractiveMarkerUpdate, error) {
	var msg InteractiveMarkerUpdate
	err := json.Unmarshal(data, &msg)
	return msg, err
}

// ControlTag is stored in Object.UserData of draggable marker objects. It
// carries what a feedback message needs to address the remote control.
type ControlTag struct {
	FrameID     string
	MarkerName  string
	ControlName string
}

// FeedbackMessage reports the operator's manipulation of a marker.
type FeedbackMessage struct {
	Seq         uint32
	ClientID    string
	FrameID     string
	MarkerName  string
	ControlName string
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

type feedbackWire struct {
	Header      Header `json:"header"`
	ClientID    string `json:"client_id"`
	MarkerName  string `json:"marker_name"`
	ControlName string `json:"control_name"`
	EventType   uint8  `json:"event_type"`
	Pose        Pose   `json:"pose"`
}

// MarshalJSON encodes the message as visualization_msgs/InteractiveMarkerFeedback.
func (m FeedbackMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(feedbackWire{
		Header:      Header{Seq: m.Seq, FrameID: m.FrameID},
		ClientID:    m.ClientID,
		MarkerName:  m.MarkerName,
		ControlName: m.ControlName,
		EventType:   feedbackPoseUpdate,
		Pose: Pose{
			Position:    pointFromVec3(m.Position),
			Orientation: quaternionFromQuat(m.Orientation),
		},
	})
}

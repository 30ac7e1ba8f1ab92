// Package tether shows a robot's interactive markers in a 3D viewport built
// on [Ebitengine] and lets an operator drag them, sending feedback back to
// the robot over a [rosbridge] connection.
//
// # Quick start
//
// [Run] opens a window and game loop for a [Viewer]:
//
//	client, err := tether.DialRosbridge(ctx, "ws://localhost:9090")
//	if err != nil { ... }
//	defer client.Close()
//
//	viewer := tether.NewViewer(1280, 720)
//	viewer.AddTransport(client)
//
//	opts := tether.DefaultOptions()
//	opts.UpdateTopic = &tether.TopicName{Name: "/basic_controls/update"}
//	opts.FeedbackTopic = &tether.TopicName{Name: "/basic_controls/feedback"}
//	_, err = viewer.AddInteractiveMarkers(client,
//		tether.TopicName{Name: "/basic_controls/update_full"}, opts)
//
//	tether.Run(viewer, tether.RunConfig{Title: "tether", Width: 1280, Height: 720})
//
// For full control, call [Viewer.Update], [Viewer.Draw] and [Viewer.Layout]
// from your own [ebiten.Game].
//
// # Interactive markers
//
// [InteractiveMarkers] starts on the snapshot topic. The first snapshot that
// carries markers moves it to the update topic, or ends the subscription
// when no update topic is configured. Pose entries move known markers;
// erase entries are not applied.
//
// Dragging a marker suspends camera navigation until the drag ends. Drag
// positions are debounced: at most one feedback message per
// [FeedbackInterval] of continuous motion, and the final position is always
// sent.
//
// # Navigation
//
// [Navigator] orbits (primary button, one finger), zooms (middle button,
// wheel, pinch) and pans (secondary button, two fingers) an orthographic
// camera. Orbiting only changes azimuth. Z is up.
//
// # Threading
//
// Everything runs on the ebiten update loop. [RosbridgeClient] reads on a
// background goroutine but only delivers messages from [RosbridgeClient.Drain],
// which the viewer calls once per frame.
//
// [Ebitengine]: https://ebitengine.org
// [rosbridge]: https://github.com/RobotWebTools/rosbridge_suite
package tether

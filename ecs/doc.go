// Package ecs provides ECS adapters for tether's marker control events.
//
// [NewDonburiStore] queues drag and feedback events from interactive markers
// on a [Donburi] world. Systems read them with [OnControl] or by subscribing
// to [ControlEventType] directly:
//
//	viewer.SetEntityStore(ecs.NewDonburiStore(world, "arm"))
//	ecs.OnControl(world, tether.ControlFeedback, func(w donburi.World, e tether.ControlEvent) {
//		// e.Position is where the arm marker was dropped
//	})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs

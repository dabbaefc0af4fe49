// Package ecs provides ECS adapters for aspen's frame statistics.
//
// The primary adapter is [NewDonburiObserver], which publishes the
// [aspen.FrameStats] of every rendered frame into a [Donburi] world as typed
// events. Subscribe to [FrameEventType] in your ECS systems to receive them.
//
// Usage:
//
//	renderer.SetFrameObserver(ecs.NewDonburiObserver(world))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs

package ecs

import (
	"github.com/phanxgames/aspen"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// FrameEventType is the Donburi event type for rendered frames.
var FrameEventType = events.NewEventType[aspen.FrameStats]()

type donburiObserver struct {
	world donburi.World
}

// NewDonburiObserver creates a FrameObserver backed by a Donburi world.
// Frame statistics are published to FrameEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiObserver(world donburi.World) aspen.FrameObserver {
	return &donburiObserver{world: world}
}

func (o *donburiObserver) FrameRendered(stats aspen.FrameStats) {
	FrameEventType.Publish(o.world, stats)
}

// Package aspen is a retained-mode software scene graph with damage tracking,
// presented through [Ebitengine].
//
// A scene is a tree of [Node] values. Transform, clip and opacity nodes
// shape the subtree below them, and paint nodes carry [Content] such as
// [RectFill], [TextureQuad], [RoundedRect] or [GlyphRun]. Every change to the
// tree is reported to the renderer attached to its root, which keeps one
// [RenderableNode] per paint node and repaints only what changed.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	root := aspen.NewRoot("root")
//	box := aspen.NewPaint("box", &aspen.RectFill{
//		Rect:  aspen.Rect{X: 20, Y: 20, Width: 80, Height: 40},
//		Color: aspen.Color{R: 0.3, G: 0.7, B: 1, A: 1},
//	})
//	root.AddChild(box)
//	aspen.Run(root, aspen.RunConfig{Title: "Boxes", Width: 640, Height: 480})
//
// Without a window, render into an image with [PixmapRenderer] or grab a
// single frame with [GrabImage].
//
// # Frames
//
// Each frame the renderer runs three steps:
//
//   - BuildRenderList collects the paint nodes in paint order, behind a
//     background renderable covering the whole output.
//   - OptimizeRenderList walks the list front to back, spreading damage to
//     the nodes behind and dropping what opaque nodes hide, then back to
//     front, spreading damage into blended nodes. It returns the region
//     that changed.
//   - RenderNodes paints each dirty renderable clipped to its dirty region.
//
// [SoftwareRenderer] drives these steps against a [BackingStore] and flushes
// only the painted region. [EbitenBackingStore] uploads that region to the
// GPU and presents it.
//
// # Animation
//
// Tweens (via [gween]) write node fields and report the change:
//
//	tw := aspen.TweenPosition(mover, 300, 200, 1.5, ease.OutCubic)
//	// each tick:
//	tw.Update(dt)
//
// Frame statistics can be published into a [Donburi] world with the adapter
// in aspen/ecs.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package aspen

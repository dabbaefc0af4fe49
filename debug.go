package aspen

import (
	"fmt"
	"time"
)

// FrameStats describes one rendered frame.
type FrameStats struct {
	BuildTime     time.Duration
	OptimizeTime  time.Duration
	RenderTime    time.Duration
	RenderListLen int
	DirtyNodes    int
	UpdateRegion  Region
	FlushRegion   Region
	Opaque        bool
}

// Total returns the combined build, optimize, and render time.
func (s FrameStats) Total() time.Duration {
	return s.BuildTime + s.OptimizeTime + s.RenderTime
}

// FrameObserver is notified after every rendered frame.
type FrameObserver interface {
	FrameRendered(stats FrameStats)
}

// FrameObserverFunc adapts a function to FrameObserver.
type FrameObserverFunc func(stats FrameStats)

// FrameRendered calls f(stats).
func (f FrameObserverFunc) FrameRendered(stats FrameStats) { f(stats) }

// globalDebug enables the extra tree checks in node operations, which lack a
// renderer pointer to consult.
var globalDebug bool

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and per-frame
// statistics are logged at debug level.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// DebugMode reports whether debug mode is enabled.
func DebugMode() bool {
	return globalDebug
}

// logFrame writes frame statistics to the logger at debug level.
func logFrame(kind string, stats FrameStats) {
	if !globalDebug {
		return
	}
	Logger().Debug(kind+" frame",
		"build", stats.BuildTime,
		"optimize", stats.OptimizeTime,
		"render", stats.RenderTime,
		"total", stats.Total(),
		"nodes", stats.RenderListLen,
		"dirty", stats.DirtyNodes,
		"update", stats.UpdateRegion.Bounds(),
		"flush_rects", stats.FlushRegion.RectCount(),
		"opaque", stats.Opaque,
	)
}

// countDirty counts renderables that will paint this frame.
func countDirty(list []*RenderableNode) int {
	count := 0
	for _, rn := range list {
		if rn.IsDirty() {
			count++
		}
	}
	return count
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("aspen debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "node", n.Name)
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("child count exceeds threshold",
			"node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}

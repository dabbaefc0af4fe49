package aspen

// NodeObserver receives change notifications for every node in a tree. A
// renderer registers itself on a root node to learn about geometry, material,
// matrix, opacity, and structural changes.
type NodeObserver interface {
	NodeChanged(node *Node, state DirtyState)
}

// --- ID counter ---

// nodeIDCounter is a plain counter. Scene graphs are mutated from a single
// goroutine.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is the fundamental scene graph element. A single flat struct is used for
// all node types to avoid interface dispatch during traversal; the fields that
// apply depend on Type.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	parent   *Node
	children []*Node

	// Transform properties (NodeTypeTransform). Setters recompute matrix.
	X, Y         float64
	ScaleX       float64
	ScaleY       float64
	Rotation     float64
	SkewX, SkewY float64
	PivotX       float64
	PivotY       float64
	matrix       Matrix

	// Clip (NodeTypeClip)
	clipRect Rect

	// Opacity (NodeTypeOpacity)
	opacity float64

	// Paint (NodeTypePaint)
	content Content

	// Root (NodeTypeRoot)
	observers []NodeObserver

	// Metadata
	UserData any

	disposed bool
}

func newNode(name string, typ NodeType) *Node {
	return &Node{
		ID:      nextNodeID(),
		Name:    name,
		Type:    typ,
		ScaleX:  1,
		ScaleY:  1,
		matrix:  IdentityMatrix,
		opacity: 1,
	}
}

// NewRoot creates a root node. Renderers attach to roots and receive change
// notifications for every node below them.
func NewRoot(name string) *Node {
	return newNode(name, NodeTypeRoot)
}

// NewGroup creates a plain grouping node with no state of its own.
func NewGroup(name string) *Node {
	return newNode(name, NodeTypeGroup)
}

// NewTransform creates a transform node with the identity matrix.
func NewTransform(name string) *Node {
	return newNode(name, NodeTypeTransform)
}

// NewClip creates a clip node restricting its subtree to rect, given in the
// node's local coordinates.
func NewClip(name string, rect Rect) *Node {
	n := newNode(name, NodeTypeClip)
	n.clipRect = rect
	return n
}

// NewOpacity creates an opacity node multiplying its subtree's opacity.
func NewOpacity(name string, opacity float64) *Node {
	n := newNode(name, NodeTypeOpacity)
	n.opacity = clamp01(opacity)
	return n
}

// NewPaint creates a paint node carrying content.
func NewPaint(name string, content Content) *Node {
	n := newNode(name, NodeTypePaint)
	n.content = content
	return n
}

// --- Observers ---

// AddObserver registers o for change notifications. Only valid on root nodes.
func (n *Node) AddObserver(o NodeObserver) {
	if n.Type != NodeTypeRoot {
		panic("aspen: observers can only be added to root nodes")
	}
	for _, existing := range n.observers {
		if existing == o {
			return
		}
	}
	n.observers = append(n.observers, o)
}

// RemoveObserver unregisters o. No-op if o is not registered.
func (n *Node) RemoveObserver(o NodeObserver) {
	for i, existing := range n.observers {
		if existing == o {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}

// MarkDirty notifies the observers of every root above this node that state
// changed. A root node notifies its own observers too. Call it after changing
// Content fields directly.
func (n *Node) MarkDirty(state DirtyState) {
	if n.disposed || state == 0 {
		return
	}
	for p := n; p != nil; p = p.parent {
		if p.Type != NodeTypeRoot {
			continue
		}
		for _, o := range p.observers {
			o.NodeChanged(n, state)
		}
	}
}

// --- Node state accessors ---

// SetClipRect changes a clip node's rectangle and marks it geometry dirty.
func (n *Node) SetClipRect(r Rect) {
	if n.Type != NodeTypeClip {
		panic("aspen: SetClipRect on a non-clip node")
	}
	if n.clipRect == r {
		return
	}
	n.clipRect = r
	n.MarkDirty(DirtyGeometry)
}

// ClipRect returns a clip node's rectangle in local coordinates.
func (n *Node) ClipRect() Rect {
	return n.clipRect
}

// SetOpacity changes an opacity node's value, clamped to [0, 1]. Crossing zero
// in either direction additionally reports DirtySubtreeBlocked.
func (n *Node) SetOpacity(o float64) {
	if n.Type != NodeTypeOpacity {
		panic("aspen: SetOpacity on a non-opacity node")
	}
	o = clamp01(o)
	if n.opacity == o {
		return
	}
	wasBlocked := n.IsSubtreeBlocked()
	n.opacity = o
	state := DirtyOpacity
	if wasBlocked != n.IsSubtreeBlocked() {
		state |= DirtySubtreeBlocked
	}
	n.MarkDirty(state)
}

// Opacity returns an opacity node's value. Other node types report 1.
func (n *Node) Opacity() float64 {
	if n.Type != NodeTypeOpacity {
		return 1
	}
	return n.opacity
}

// IsSubtreeBlocked reports whether nothing below this node can be visible.
func (n *Node) IsSubtreeBlocked() bool {
	return n.Type == NodeTypeOpacity && n.opacity == 0
}

// Content returns a paint node's content, or nil for other node types.
func (n *Node) Content() Content {
	return n.content
}

// SetContent replaces a paint node's content and marks it geometry and
// material dirty.
func (n *Node) SetContent(c Content) {
	if n.Type != NodeTypePaint {
		panic("aspen: SetContent on a non-paint node")
	}
	n.content = c
	n.MarkDirty(DirtyGeometry | DirtyMaterial)
}

// --- Tree manipulation ---

// Parent returns the node's parent, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// AddChild attaches child as the last (frontmost) child. A child that still
// belongs to another parent is detached from it first. Nil children, observed
// roots and ancestors of n cause a panic.
func (n *Node) AddChild(child *Node) {
	n.insertChild(child, len(n.children), false)
}

// AddChildAt attaches child at index, with the rules of AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	n.insertChild(child, index, true)
}

func (n *Node) insertChild(child *Node, index int, checkIndex bool) {
	if child == nil {
		panic("aspen: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if child.Type == NodeTypeRoot && child.parent == nil && len(child.observers) > 0 {
		panic("aspen: cannot add an observed root as a child")
	}
	if isAncestor(child, n) {
		panic("aspen: adding child would create a cycle")
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	if checkIndex && (index < 0 || index > len(n.children)) {
		panic("aspen: child index out of range")
	}
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
	child.MarkDirty(DirtyNodeAdded)
}

// RemoveChild detaches child from this node. Observers are notified while the
// child is still attached so they can find its former position.
// Panics if child.Parent() != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild (parent)")
		debugCheckDisposed(child, "RemoveChild (child)")
	}
	if child.parent != n {
		panic("aspen: child's parent is not this node")
	}
	child.MarkDirty(DirtyNodeRemoved)
	n.removeChildByPtr(child)
	child.parent = nil
}

// RemoveChildAt detaches the child at index and returns it.
func (n *Node) RemoveChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		panic("aspen: child index out of range")
	}
	child := n.children[index]
	n.RemoveChild(child)
	return child
}

// RemoveFromParent detaches n from its parent, if any.
func (n *Node) RemoveFromParent() {
	if n.parent == nil {
		return
	}
	n.parent.RemoveChild(n)
}

// RemoveChildren detaches every child. The detached nodes stay usable.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		n.RemoveChild(n.children[len(n.children)-1])
	}
}

// Children returns n's children in paint order. Callers must not modify it.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren reports how many children n has.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed, and
// recursively disposes all descendants. Disposed nodes ignore MarkDirty.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.parent = nil
		child.dispose()
	}
	n.children = nil
	n.parent = nil
	n.content = nil
	n.observers = nil
	n.UserData = nil
}

// IsDisposed reports whether Dispose has been called on n or an ancestor.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node (or node itself).
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr drops child from n.children and leaves child.parent alone.
// The vacated tail slot is cleared.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

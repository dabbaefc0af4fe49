package aspen

// updateState is the transform, clip, and opacity in effect at a point of
// the traversal, plus the parent the state was recorded under.
type updateState struct {
	opacity   float64
	clip      Region
	hasClip   bool
	transform Matrix
	parent    *Node
}

var rootState = updateState{opacity: 1, transform: IdentityMatrix}

// nodeUpdater walks scene subtrees depth-first, accumulating transform, clip,
// and opacity, and writes the result through to the renderables of paint
// nodes. It records the state seen by each visited node's children so that a
// later update of a single subtree can resume with the right context.
type nodeUpdater struct {
	renderer *Renderer
	stack    []updateState
	states   map[*Node]updateState
}

func newNodeUpdater(r *Renderer) *nodeUpdater {
	return &nodeUpdater{
		renderer: r,
		states:   make(map[*Node]updateState),
	}
}

// UpdateNodes re-runs the update for node and its subtree. For a removed node
// it only forgets the node's recorded state.
func (u *nodeUpdater) UpdateNodes(node *Node, removed bool) {
	if node == nil {
		return
	}
	u.stack = append(u.stack[:0], u.entryState(node, removed))
	if removed {
		delete(u.states, node)
		u.stack = u.stack[:0]
		return
	}
	u.visit(node)
	u.stack = u.stack[:0]
}

// entryState returns the state node's subtree starts with: the recorded state
// of its parent, or of its former parent once detached, or of the nearest
// recorded ancestor.
func (u *nodeUpdater) entryState(node *Node, removed bool) updateState {
	parent := node.Parent()
	if rec, ok := u.states[node]; ok && (parent == nil || removed) {
		parent = rec.parent
	}
	for p := parent; p != nil; p = p.Parent() {
		if st, ok := u.states[p]; ok {
			return st
		}
	}
	return rootState
}

func (u *nodeUpdater) top() updateState {
	return u.stack[len(u.stack)-1]
}

func (u *nodeUpdater) visit(n *Node) {
	st := u.top()
	switch n.Type {
	case NodeTypeTransform:
		st.transform = st.transform.Multiply(n.Matrix())
	case NodeTypeClip:
		cr := rectRound(st.transform.MapRect(n.ClipRect()))
		if st.hasClip {
			st.clip = st.clip.IntersectRect(cr)
		} else {
			st.clip = RegionFromRect(cr)
			st.hasClip = true
		}
	case NodeTypeOpacity:
		st.opacity *= n.Opacity()
	case NodeTypePaint:
		u.updateRenderable(n, st)
	}
	st.parent = n.Parent()
	u.states[n] = st

	u.stack = append(u.stack, st)
	for _, child := range n.Children() {
		u.visit(child)
	}
	u.stack = u.stack[:len(u.stack)-1]
}

// updateRenderable looks up or creates the renderable for a paint node, writes
// the accumulated state through, and updates it. A renderable whose content
// changed kind is replaced; the area it painted is carried over so it still
// gets repainted. A paint node without content loses its renderable.
func (u *nodeUpdater) updateRenderable(n *Node, st updateState) {
	c := n.Content()
	rn := u.renderer.nodes[n]
	if c == nil {
		if rn != nil {
			u.renderer.forget(n, rn)
		}
		return
	}
	if rn == nil || rn.Type() != c.RenderableType() {
		fresh := NewRenderableNode(n)
		if rn != nil {
			fresh.previousDirtyRegion = rn.previousDirtyRegion.UnionRect(rn.BoundingRectMax())
		}
		rn = fresh
		u.renderer.nodes[n] = rn
		Logger().Debug("renderable created", "node", n.Name, "id", n.ID, "type", rn.Type())
	}
	rn.SetTransform(st.transform)
	rn.SetOpacity(st.opacity)
	rn.SetClipRegion(st.clip, st.hasClip)
	rn.Update()
}

// reset forgets every recorded state.
func (u *nodeUpdater) reset() {
	clear(u.states)
	u.stack = u.stack[:0]
}

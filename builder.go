package aspen

// buildRenderList fills list with background followed by the renderables of
// the paint nodes under root in depth-first pre-order, which is paint order.
// Nodes without a renderable are walked through. list is reused and returned.
func buildRenderList(list []*RenderableNode, root *Node, background *RenderableNode, nodes map[*Node]*RenderableNode) []*RenderableNode {
	list = list[:0]
	if background != nil {
		list = append(list, background)
	}
	if root == nil {
		return list
	}
	return appendRenderables(list, root, nodes)
}

func appendRenderables(list []*RenderableNode, n *Node, nodes map[*Node]*RenderableNode) []*RenderableNode {
	if rn, ok := nodes[n]; ok {
		list = append(list, rn)
	}
	for _, child := range n.Children() {
		list = appendRenderables(list, child, nodes)
	}
	return list
}

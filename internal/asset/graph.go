package asset

import "sync"

// Mesh is a drawable leaf of the scene graph. The shadow flags are the only fields
// consumers may change, and only through SceneGraph.MarkShadows.
type Mesh struct {
	Name          string
	Primitives    int
	CastShadow    bool
	ReceiveShadow bool
}

// Node is one transform in the hierarchy. Mesh is nil for pure grouping nodes.
type Node struct {
	Name     string
	Mesh     *Mesh
	Children []*Node
}

// SceneGraph is a loaded model. It is owned by the Cache and shared read-only between frames.
type SceneGraph struct {
	URL  string // the handle it was requested with
	Path string // local file the renderer loads GPU resources from
	Root *Node

	shadows sync.Once
}

// Walk calls fn for every node, depth first, parents before children.
func (g *SceneGraph) Walk(fn func(*Node)) {
	if g == nil || g.Root == nil {
		return
	}
	var visit func(n *Node)
	visit = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(g.Root)
}

// Meshes returns every mesh in walk order.
func (g *SceneGraph) Meshes() []*Mesh {
	var out []*Mesh
	g.Walk(func(n *Node) {
		if n.Mesh != nil {
			out = append(out, n.Mesh)
		}
	})
	return out
}

// MarkShadows flags every mesh as shadow caster and receiver. Only the first call traverses;
// it returns the number of meshes marked and true. Later calls return 0, false.
func (g *SceneGraph) MarkShadows() (marked int, traversed bool) {
	g.shadows.Do(func() {
		traversed = true
		g.Walk(func(n *Node) {
			if n.Mesh == nil {
				return
			}
			n.Mesh.CastShadow = true
			n.Mesh.ReceiveShadow = true
			marked++
		})
	})
	return marked, traversed
}

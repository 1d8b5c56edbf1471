// Package scene is the node tree the renderer draws from: parent/child
// relations, world transform propagation and visibility collection.
package scene

import (
	"fmt"

	"github.com/devblok/korugl/store"
)

// Scene owns all nodes. Exactly one root exists, created with the scene,
// and it can never be removed. Mutations on handles that do not resolve
// are programmer errors and panic.
type Scene struct {
	root  store.Handle
	nodes *store.Arena[Node]
}

// New creates a scene holding only its root node.
func New() *Scene {
	nodes := store.NewArena[Node]()
	root := NewNode()
	root.Name = "root"
	return &Scene{
		root:  nodes.Insert(root),
		nodes: nodes,
	}
}

// Root returns the handle of the root node.
func (s *Scene) Root() store.Handle {
	return s.root
}

// Len returns the number of nodes, root included.
func (s *Scene) Len() int {
	return s.nodes.Len()
}

// Node returns the node h refers to. The pointer is valid until the next
// Insert into the scene.
func (s *Scene) Node(h store.Handle) (*Node, error) {
	return s.nodes.GetMut(h)
}

// Handles returns every live node handle.
func (s *Scene) Handles() []store.Handle {
	return s.nodes.Handles()
}

func (s *Scene) mustNode(h store.Handle) *Node {
	n, err := s.nodes.GetMut(h)
	if err != nil {
		panic(fmt.Sprintf("scene: %v", err))
	}
	return n
}

// Insert adds node to the scene. A node without a parent is attached to
// the root. Any children listed on node are ignored, use SetParent.
func (s *Scene) Insert(node Node) store.Handle {
	parent := node.Parent
	if parent.IsNil() {
		parent = s.root
	}
	s.mustNode(parent)

	node.Parent = parent
	node.Children = nil
	h := s.nodes.Insert(node)

	p := s.mustNode(parent)
	p.Children = append(p.Children, h)
	return h
}

// SetParent moves child under parent. The child is removed from its old
// parent's list before it is appended to the new one.
func (s *Scene) SetParent(child, parent store.Handle) {
	if child == s.root {
		panic("scene: the root node cannot be reparented")
	}
	if s.isDescendant(parent, child) {
		panic(fmt.Sprintf("scene: %s is a descendant of %s", parent, child))
	}
	c := s.mustNode(child)
	s.mustNode(parent)

	if !c.Parent.IsNil() {
		old := s.mustNode(c.Parent)
		old.Children = without(old.Children, child)
	}
	c.Parent = parent

	p := s.mustNode(parent)
	p.Children = append(p.Children, child)
}

// isDescendant reports whether h lies in the subtree rooted at ancestor,
// ancestor itself included.
func (s *Scene) isDescendant(h, ancestor store.Handle) bool {
	for !h.IsNil() {
		if h == ancestor {
			return true
		}
		n := s.mustNode(h)
		h = n.Parent
	}
	return false
}

// Remove deletes h and its whole subtree, then detaches h from its parent.
func (s *Scene) Remove(h store.Handle) {
	if h == s.root {
		panic("scene: the root node cannot be removed")
	}
	parent := s.mustNode(h).Parent
	s.removeSubtree(h)

	p := s.mustNode(parent)
	p.Children = without(p.Children, h)
}

func (s *Scene) removeSubtree(h store.Handle) {
	children := append([]store.Handle(nil), s.mustNode(h).Children...)
	for _, child := range children {
		s.removeSubtree(child)
	}
	if _, err := s.nodes.Remove(h); err != nil {
		panic(fmt.Sprintf("scene: %v", err))
	}
}

// UpdateWorldTransforms recomputes the world matrix of every node reachable
// from the root: world = parent world * local. It is not incremental, any
// transform change needs a full pass before the next draw.
func (s *Scene) UpdateWorldTransforms() {
	root := s.mustNode(s.root)
	root.World = root.LocalMatrix()
	s.updateChildren(root)
}

func (s *Scene) updateChildren(parent *Node) {
	for _, h := range parent.Children {
		n := s.mustNode(h)
		n.World = parent.World.Mul4(n.LocalMatrix())
		s.updateChildren(n)
	}
}

// CollectVisible walks the subtree at root depth first, parents before
// children and siblings in insertion order. Invisible nodes are skipped
// together with their descendants. Only nodes carrying a mesh are returned.
func (s *Scene) CollectVisible(root store.Handle) []store.Handle {
	var visible []store.Handle
	s.collect(root, &visible)
	return visible
}

func (s *Scene) collect(h store.Handle, visible *[]store.Handle) {
	n := s.mustNode(h)
	if !n.Visible {
		return
	}
	if !n.Mesh.IsNil() {
		*visible = append(*visible, h)
	}
	for _, child := range n.Children {
		s.collect(child, visible)
	}
}

func without(handles []store.Handle, h store.Handle) []store.Handle {
	for idx, v := range handles {
		if v == h {
			return append(handles[:idx], handles[idx+1:]...)
		}
	}
	return handles
}

package scene

import (
	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Node is a scene graph entry. Parent and Children are relations into the
// owning Scene's arena, the Scene is their only owner.
type Node struct {
	Parent   store.Handle
	Children []store.Handle

	Position glm.Vec3
	Rotation glm.Quat
	Scale    glm.Vec3

	// World is valid only right after Scene.UpdateWorldTransforms.
	World glm.Mat4

	// Mesh is the nil handle for nodes that only group others.
	Mesh    store.Handle
	Visible bool
	Name    string
}

// NewNode returns a visible node with an identity transform.
func NewNode() Node {
	return Node{
		Rotation: glm.QuatIdent(),
		Scale:    glm.Vec3{1, 1, 1},
		World:    glm.Ident4(),
		Visible:  true,
	}
}

// LocalMatrix composes the node's local transform.
func (n *Node) LocalMatrix() glm.Mat4 {
	return ComposeMatrix(n.Position, n.Rotation, n.Scale)
}

// ComposeMatrix builds translation * rotation * scale.
func ComposeMatrix(position glm.Vec3, rotation glm.Quat, scale glm.Vec3) glm.Mat4 {
	t := glm.Translate3D(position.X(), position.Y(), position.Z())
	r := rotation.Normalize().Mat4()
	s := glm.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

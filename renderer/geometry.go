package renderer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Geometry is vertex data built on the CPU. Normals and UVs are optional,
// an empty Indices means non-indexed triangles.
type Geometry struct {
	Positions []glm.Vec3
	Normals   []glm.Vec3
	UVs       []glm.Vec2
	Indices   []uint32
}

// CuboidGeometry builds a box centered on the origin with four vertices
// per face, so each face gets its own normal.
func CuboidGeometry(width, height, depth float32) Geometry {
	hx, hy, hz := width/2, height/2, depth/2
	faces := []struct {
		normal   glm.Vec3
		u, v     glm.Vec3
		halfNorm float32
		halfU    float32
		halfV    float32
	}{
		{glm.Vec3{0, 0, 1}, glm.Vec3{1, 0, 0}, glm.Vec3{0, 1, 0}, hz, hx, hy},
		{glm.Vec3{0, 0, -1}, glm.Vec3{-1, 0, 0}, glm.Vec3{0, 1, 0}, hz, hx, hy},
		{glm.Vec3{1, 0, 0}, glm.Vec3{0, 0, -1}, glm.Vec3{0, 1, 0}, hx, hz, hy},
		{glm.Vec3{-1, 0, 0}, glm.Vec3{0, 0, 1}, glm.Vec3{0, 1, 0}, hx, hz, hy},
		{glm.Vec3{0, 1, 0}, glm.Vec3{1, 0, 0}, glm.Vec3{0, 0, -1}, hy, hx, hz},
		{glm.Vec3{0, -1, 0}, glm.Vec3{1, 0, 0}, glm.Vec3{0, 0, 1}, hy, hx, hz},
	}

	var g Geometry
	for _, f := range faces {
		base := uint32(len(g.Positions))
		center := f.normal.Mul(f.halfNorm)
		u := f.u.Mul(f.halfU)
		v := f.v.Mul(f.halfV)
		// counter clockwise seen from outside, uv origin top left
		g.Positions = append(g.Positions,
			center.Sub(u).Sub(v),
			center.Add(u).Sub(v),
			center.Add(u).Add(v),
			center.Sub(u).Add(v),
		)
		g.Normals = append(g.Normals, f.normal, f.normal, f.normal, f.normal)
		g.UVs = append(g.UVs, glm.Vec2{0, 1}, glm.Vec2{1, 1}, glm.Vec2{1, 0}, glm.Vec2{0, 0})
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// SphereGeometry builds a UV sphere. Segment counts below 3 and 2 are
// raised to those minimums.
func SphereGeometry(radius float32, widthSegments, heightSegments int) Geometry {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}

	var g Geometry
	for y := 0; y <= heightSegments; y++ {
		v := float32(y) / float32(heightSegments)
		theta := v * math32.Pi
		for x := 0; x <= widthSegments; x++ {
			u := float32(x) / float32(widthSegments)
			phi := u * 2 * math32.Pi
			normal := glm.Vec3{
				-math32.Cos(phi) * math32.Sin(theta),
				math32.Cos(theta),
				math32.Sin(phi) * math32.Sin(theta),
			}
			g.Positions = append(g.Positions, normal.Mul(radius))
			g.Normals = append(g.Normals, normal)
			g.UVs = append(g.UVs, glm.Vec2{u, v})
		}
	}

	row := uint32(widthSegments + 1)
	for y := 0; y < heightSegments; y++ {
		for x := 0; x < widthSegments; x++ {
			a := uint32(y)*row + uint32(x) + 1
			b := uint32(y)*row + uint32(x)
			c := uint32(y+1)*row + uint32(x)
			d := uint32(y+1)*row + uint32(x) + 1
			if y != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if y != heightSegments-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}

// QuadGeometry builds a rectangle in the XY plane facing +Z
func QuadGeometry(width, height float32) Geometry {
	hx, hy := width/2, height/2
	return Geometry{
		Positions: []glm.Vec3{{-hx, -hy, 0}, {hx, -hy, 0}, {hx, hy, 0}, {-hx, hy, 0}},
		Normals:   []glm.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		UVs:       []glm.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

func encode(data interface{}) []byte {
	var buf bytes.Buffer
	// writes to a bytes.Buffer of fixed size values cannot fail
	_ = binary.Write(&buf, binary.LittleEndian, data)
	return buf.Bytes()
}

func (r *Renderer) bakeAttribute(data interface{}, count, size int32) (store.Handle, error) {
	buf, err := r.CreateBuffer(device.ArrayBuffer, device.StaticDraw, encode(data))
	if err != nil {
		return store.Handle{}, err
	}
	return r.accessors.Insert(Accessor{
		Buffer: buf,
		Count:  count,
		Options: device.AttributeOptions{
			Type: device.Float,
			Size: size,
		},
	}), nil
}

// BakeGeometry uploads g and stores it as a single primitive mesh drawn
// with material. Indices are stored as 16 bit when every vertex fits.
func (r *Renderer) BakeGeometry(g Geometry, material store.Handle) (store.Handle, error) {
	if len(g.Positions) == 0 {
		return store.Handle{}, fmt.Errorf("bake geometry: no positions")
	}
	prim := Primitive{
		Attributes: make(map[AttributeName]store.Handle),
		Count:      int32(len(g.Positions)),
		Material:   material,
	}

	h, err := r.bakeAttribute(g.Positions, int32(len(g.Positions)), 3)
	if err != nil {
		return store.Handle{}, err
	}
	prim.Attributes[Position] = h

	if len(g.Normals) > 0 {
		if h, err = r.bakeAttribute(g.Normals, int32(len(g.Normals)), 3); err != nil {
			return store.Handle{}, err
		}
		prim.Attributes[Normal] = h
	}
	if len(g.UVs) > 0 {
		if h, err = r.bakeAttribute(g.UVs, int32(len(g.UVs)), 2); err != nil {
			return store.Handle{}, err
		}
		prim.Attributes[UV] = h
	}

	if len(g.Indices) > 0 {
		var (
			data interface{} = g.Indices
			kind             = device.UnsignedInt
		)
		if len(g.Positions) <= math.MaxUint16+1 {
			short := make([]uint16, len(g.Indices))
			for idx, v := range g.Indices {
				short[idx] = uint16(v)
			}
			data, kind = short, device.UnsignedShort
		}
		buf, err := r.CreateBuffer(device.ElementArrayBuffer, device.StaticDraw, encode(data))
		if err != nil {
			return store.Handle{}, err
		}
		prim.Indices = r.accessors.Insert(Accessor{
			Buffer:  buf,
			Count:   int32(len(g.Indices)),
			Options: device.AttributeOptions{Type: kind, Size: 1},
		})
		prim.Count = int32(len(g.Indices))
	}

	return r.meshes.Insert(Mesh{Primitives: []Primitive{prim}}), nil
}

// BakeCuboid bakes CuboidGeometry
func (r *Renderer) BakeCuboid(width, height, depth float32, material store.Handle) (store.Handle, error) {
	return r.BakeGeometry(CuboidGeometry(width, height, depth), material)
}

// BakeSphere bakes SphereGeometry
func (r *Renderer) BakeSphere(radius float32, widthSegments, heightSegments int, material store.Handle) (store.Handle, error) {
	return r.BakeGeometry(SphereGeometry(radius, widthSegments, heightSegments), material)
}

// BakeQuad bakes QuadGeometry
func (r *Renderer) BakeQuad(width, height float32, material store.Handle) (store.Handle, error) {
	return r.BakeGeometry(QuadGeometry(width, height), material)
}

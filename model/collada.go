package model

import (
	"encoding/xml"
	"fmt"

	"github.com/devblok/korugl/renderer"
	"github.com/devblok/korugl/store"
	"github.com/devblok/korugl/util/collada"
	glm "github.com/go-gl/mathgl/mgl32"
)

// ImportCollada reads the triangles of the first geometry in a Collada
// document and bakes them into a mesh drawn with material. Vertices are
// expanded per corner, so the mesh is not indexed.
func ImportCollada(data []byte, r *renderer.Renderer, material store.Handle) (store.Handle, error) {
	var doc collada.Collada
	if err := xml.Unmarshal(data, &doc); err != nil {
		return store.Handle{}, fmt.Errorf("collada: %w", err)
	}
	if len(doc.Geometries) == 0 {
		return store.Handle{}, fmt.Errorf("collada: %w: no geometry", ErrInvalidDocument)
	}

	mesh := &doc.Geometries[0].Mesh
	g, err := colladaGeometry(mesh)
	if err != nil {
		return store.Handle{}, fmt.Errorf("collada geometry %s: %w", doc.Geometries[0].ID, err)
	}
	return r.BakeGeometry(g, material)
}

func item(source *collada.Source, idx, size int) ([]float32, error) {
	v, err := source.Item(idx)
	if err != nil {
		return nil, err
	}
	if len(v) < size {
		return nil, fmt.Errorf("%w: source %s items have %d values, need %d", ErrInvalidDocument, source.ID, len(v), size)
	}
	return v, nil
}

// positionSource follows the VERTEX input through <vertices> to the
// source holding positions.
func positionSource(mesh *collada.Mesh) (*collada.Source, uint, error) {
	in, ok := mesh.Triangles.Input("VERTEX")
	if !ok {
		return nil, 0, fmt.Errorf("%w: triangles without VERTEX input", ErrInvalidDocument)
	}
	ref := in.Source
	for _, vin := range mesh.Vertices.Inputs {
		if vin.Semantic == "POSITION" && "#"+mesh.Vertices.ID == in.Source {
			ref = vin.Source
		}
	}
	source, err := mesh.FindSource(ref)
	return source, in.Offset, err
}

func colladaGeometry(mesh *collada.Mesh) (renderer.Geometry, error) {
	var g renderer.Geometry
	positions, positionOffset, err := positionSource(mesh)
	if err != nil {
		return g, err
	}

	var normals, uvs *collada.Source
	var normalOffset, uvOffset uint
	if in, ok := mesh.Triangles.Input("NORMAL"); ok {
		if normals, err = mesh.FindSource(in.Source); err != nil {
			return g, err
		}
		normalOffset = in.Offset
	}
	if in, ok := mesh.Triangles.Input("TEXCOORD"); ok {
		if uvs, err = mesh.FindSource(in.Source); err != nil {
			return g, err
		}
		uvOffset = in.Offset
	}

	stride := mesh.Triangles.Stride()
	index := mesh.Triangles.Index
	if len(index)%stride != 0 {
		return g, fmt.Errorf("%w: %d indices do not split into %d inputs", ErrInvalidDocument, len(index), stride)
	}
	for corner := 0; corner < len(index)/stride; corner++ {
		refs := index[corner*stride : (corner+1)*stride]

		p, err := item(positions, refs[positionOffset], 3)
		if err != nil {
			return g, fmt.Errorf("corner %d position: %w", corner, err)
		}
		g.Positions = append(g.Positions, glm.Vec3{p[0], p[1], p[2]})

		if normals != nil {
			n, err := item(normals, refs[normalOffset], 3)
			if err != nil {
				return g, fmt.Errorf("corner %d normal: %w", corner, err)
			}
			g.Normals = append(g.Normals, glm.Vec3{n[0], n[1], n[2]})
		}
		if uvs != nil {
			uv, err := item(uvs, refs[uvOffset], 2)
			if err != nil {
				return g, fmt.Errorf("corner %d uv: %w", corner, err)
			}
			// Collada puts the texture origin at the bottom left
			g.UVs = append(g.UVs, glm.Vec2{uv[0], 1 - uv[1]})
		}
	}
	return g, nil
}

package model

import (
	"bytes"
	"fmt"

	"github.com/devblok/korugl/core"
	"github.com/devblok/korugl/utility/kar"
	"github.com/qmuntal/gltf"
)

// LoadGLTF reads a .gltf or .glb file together with the buffers it
// references relative to its path.
func LoadGLTF(path string) (*gltf.Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, nil
}

// LoadArchivedGLTF decodes the named archive entry. The entry must be
// self-contained, a GLB file or a glTF with data URIs.
func LoadArchivedGLTF(ar *kar.Archive, name string) (*gltf.Document, error) {
	data, err := ar.ReadAll(name)
	if err != nil {
		return nil, err
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return doc, nil
}

// LoadConfigured loads the scene named by assets, from the archive when
// one is configured and from the file system otherwise.
func LoadConfigured(assets core.AssetConfiguration) (*gltf.Document, error) {
	if assets.Scene == "" {
		return nil, fmt.Errorf("no scene configured")
	}
	if assets.Archive == "" {
		return LoadGLTF(assets.Scene)
	}
	ar, err := kar.OpenFile(assets.Archive)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", assets.Archive, err)
	}
	defer ar.Close()
	return LoadArchivedGLTF(ar.Archive, assets.Scene)
}

// Package model bakes interchange scene files into a renderer: glTF
// documents become buffers, accessors, materials, meshes and scene nodes,
// and Collada geometry becomes a single mesh.
package model

import (
	"errors"
)

// package errors
var (
	// ErrUnsupportedFeature fails a whole import, nothing is partially baked
	ErrUnsupportedFeature = errors.New("unsupported feature")
	ErrMissingBufferData  = errors.New("missing buffer data")
	ErrInvalidDocument    = errors.New("invalid document")
)

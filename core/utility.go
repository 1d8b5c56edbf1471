package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const shaderSuffix = ".glsl"

// loadShaderFilesFromDirectory get the list of GLSL shader files,
// it is important that the file name does not contain more than two dots
// before the suffix, the first is always the name of the shader and the
// second is its type.
func loadShaderFilesFromDirectory(dir string) ([]string, []ShaderType, error) {
	var (
		shaders     []string
		shaderTypes []ShaderType
	)
	if err := filepath.Walk(dir, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if f.IsDir() || !strings.HasSuffix(f.Name(), shaderSuffix) {
			return nil
		}
		nodes := strings.Split(strings.TrimSuffix(f.Name(), shaderSuffix), ".")
		if len(nodes) != 2 {
			return nil
		}

		switch nodes[1] {
		case "frag":
			shaderTypes = append(shaderTypes, FragmentShaderType)
			shaders = append(shaders, path)
		case "vert":
			shaderTypes = append(shaderTypes, VertexShaderType)
			shaders = append(shaders, path)
		}
		return nil
	}); err != nil {
		return nil, nil, err
	}
	return shaders, shaderTypes, nil
}

// LoadShaderSources reads every <name>.vert.glsl and <name>.frag.glsl pair
// under dir. A name missing one of its stages is an error.
func LoadShaderSources(dir string) (map[string]ShaderSource, error) {
	paths, types, err := loadShaderFilesFromDirectory(dir)
	if err != nil {
		return nil, fmt.Errorf("shader directory %s: %w", dir, err)
	}

	sources := make(map[string]ShaderSource)
	for idx, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		name := strings.SplitN(filepath.Base(path), ".", 2)[0]
		src := sources[name]
		switch types[idx] {
		case VertexShaderType:
			src.Vertex = string(data)
		case FragmentShaderType:
			src.Fragment = string(data)
		}
		sources[name] = src
	}

	for name, src := range sources {
		if src.Vertex == "" || src.Fragment == "" {
			return nil, fmt.Errorf("shader %s in %s lacks a vertex or fragment stage", name, dir)
		}
	}
	return sources, nil
}

// SafeString null terminates s for handing it to C
func SafeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return fmt.Sprintf("%s\x00", s)
}

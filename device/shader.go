package device

import (
	"fmt"
	"strconv"
	"strings"
)

// GLSLVersion is the version line every program source starts with
const GLSLVersion = "#version 330 core"

// Define is a preprocessor definition injected into shader sources
type Define struct {
	Name  string
	Value string
}

// Def defines name without a value
func Def(name string) Define {
	return Define{Name: name}
}

// IntDefine defines name with an integer value
func IntDefine(name string, v int) Define {
	return Define{Name: name, Value: strconv.Itoa(v)}
}

// FloatDefine defines name with a float value. The value always carries a
// decimal point so GLSL reads it as a float literal.
func FloatDefine(name string, v float32) Define {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return Define{Name: name, Value: s}
}

func (d Define) String() string {
	if d.Value == "" {
		return "#define " + d.Name
	}
	return "#define " + d.Name + " " + d.Value
}

// AddHeader prefixes src with the version line, the float precision for
// fragment sources and one line per define.
func AddHeader(src string, defines []Define, stage ShaderStage) string {
	var b strings.Builder
	b.WriteString(GLSLVersion)
	b.WriteString("\n\n")
	if stage == FragmentStage {
		b.WriteString("precision highp float;\n\n")
	}
	if len(defines) > 0 {
		for _, d := range defines {
			b.WriteString(d.String())
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString(src)
	return b.String()
}

// AddRowNumbers prefixes every line of src with its 1-based line number
func AddRowNumbers(src string) string {
	var b strings.Builder
	for idx, row := range strings.Split(src, "\n") {
		fmt.Fprintf(&b, "%d  %s\n", idx+1, row)
	}
	return b.String()
}

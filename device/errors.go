package device

import (
	"errors"
	"fmt"
)

// package errors
var (
	ErrResourceCreation = errors.New("device refused resource creation")
)

// CompileError is returned by CreateProgram when a stage fails to compile
// or the program fails to link. Source is the full text handed to the
// compiler, headers included.
type CompileError struct {
	Stage  ShaderStage
	Log    string
	Source string
}

func (e *CompileError) Error() string {
	if e.Stage == LinkStage {
		return fmt.Sprintf("link program: %s", e.Log)
	}
	return fmt.Sprintf("compile %s shader: %s", e.Stage, e.Log)
}

// Annotated returns the compiler log followed by the line numbered source
func (e *CompileError) Annotated() string {
	return fmt.Sprintf("%s\n\n%s", e.Log, AddRowNumbers(e.Source))
}

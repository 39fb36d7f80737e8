package models

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// BytecodeObject holds the creation-bytecode section of a build artifact.
type BytecodeObject struct {
	Object         string         `json:"object"`
	SourceMap      string         `json:"sourceMap,omitempty"`
	LinkReferences map[string]any `json:"linkReferences,omitempty"`
}

// Artifact is a compilation artifact as the build toolchain writes it: the
// ABI plus the creation bytecode needed to instantiate the component.
type Artifact struct {
	Name     string          `json:"-"`
	Path     string          `json:"-"`
	ABI      json.RawMessage `json:"abi"`
	Bytecode BytecodeObject  `json:"bytecode"`
}

// CreationCode decodes the artifact's creation bytecode.
func (a *Artifact) CreationCode() ([]byte, error) {
	object := strings.TrimPrefix(a.Bytecode.Object, "0x")
	if object == "" {
		return nil, fmt.Errorf("artifact %s has no creation bytecode", a.Name)
	}
	code, err := hex.DecodeString(object)
	if err != nil {
		return nil, fmt.Errorf("artifact %s bytecode is not hex: %w", a.Name, err)
	}
	return code, nil
}

// HasLinkReferences reports whether the bytecode still needs library
// linking. Unlinked artifacts cannot be instantiated.
func (a *Artifact) HasLinkReferences() bool {
	return len(a.Bytecode.LinkReferences) > 0
}

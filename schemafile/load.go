// Package schemafile reads type declarations from YAML, TOML or JSONC files.
//
// Every format shares one shape: a top-level "types" list whose entries carry
// name, kind, options, fields, values and variants. Fields and variants hold a
// name and a "proto" directive string. YAML input records line and column
// positions, which show up in the DeclErrors reported by Build.
package schemafile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/protoserde"
)

// Format identifies a declaration file syntax.
type Format int

const (
	FormatYAML Format = iota + 1
	FormatTOML
	FormatJSONC
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatJSONC:
		return "jsonc"
	}
	return "unknown"
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json", ".jsonc":
		return FormatJSONC, nil
	}
	return 0, fmt.Errorf("%s: unsupported declaration file extension", path)
}

// Parse decodes declarations from data. file is recorded in every declaration
// position and may be empty.
func Parse(data []byte, f Format, file string) ([]protoserde.TypeDecl, error) {
	var (
		doc document
		err error
	)
	switch f {
	case FormatYAML:
		doc, err = parseYAML(data)
	case FormatTOML:
		doc, err = parseTOML(data)
	case FormatJSONC:
		doc, err = parseJSONC(data)
	default:
		return nil, fmt.Errorf("unsupported format %s", f)
	}
	if err != nil {
		return nil, err
	}
	return doc.decls(file), nil
}

// Load reads a declaration file whose format follows from its extension.
func Load(path string) ([]protoserde.TypeDecl, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	decls, err := Parse(data, f, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return decls, nil
}

// Build loads every file in order and builds one registry from all of them.
// Declarations may reference types from any of the files.
func Build(paths []string, opts ...protoserde.BuilderOption) (*protoserde.Registry, error) {
	b := protoserde.NewBuilder(opts...)
	for _, p := range paths {
		decls, err := Load(p)
		if err != nil {
			return nil, err
		}
		b.Add(decls...)
	}
	return b.Build()
}

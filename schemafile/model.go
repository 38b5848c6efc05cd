package schemafile

import "github.com/reoring/protoserde"

// document is the on-disk shape shared by every format:
//
//	types:
//	  - name: User
//	    kind: message
//	    options: [ignore_unknown_fields]
//	    fields:
//	      - name: id
//	        proto: 'int32, tag="1"'
type document struct {
	Types []typeDoc `yaml:"types" toml:"types" json:"types"`
}

type typeDoc struct {
	Name     string     `yaml:"name" toml:"name" json:"name"`
	Kind     string     `yaml:"kind" toml:"kind" json:"kind"`
	Kinds    []string   `yaml:"kinds" toml:"kinds" json:"kinds"`
	Options  []string   `yaml:"options" toml:"options" json:"options"`
	Fields   []fieldDoc `yaml:"fields" toml:"fields" json:"fields"`
	Values   []valueDoc `yaml:"values" toml:"values" json:"values"`
	Variants []fieldDoc `yaml:"variants" toml:"variants" json:"variants"`

	pos protoserde.Pos
}

// fieldDoc is a message field or a oneof variant. Proto holds the directive;
// Protos exists so that stray extra directives reach the builder and are
// reported there.
type fieldDoc struct {
	Name   string   `yaml:"name" toml:"name" json:"name"`
	Proto  string   `yaml:"proto" toml:"proto" json:"proto"`
	Protos []string `yaml:"protos" toml:"protos" json:"protos"`

	pos protoserde.Pos
}

type valueDoc struct {
	Name  string `yaml:"name" toml:"name" json:"name"`
	Value int32  `yaml:"value" toml:"value" json:"value"`

	pos protoserde.Pos
}

func (d document) decls(file string) []protoserde.TypeDecl {
	at := func(p protoserde.Pos) protoserde.Pos {
		p.File = file
		return p
	}
	fields := func(in []fieldDoc) []protoserde.FieldDecl {
		if len(in) == 0 {
			return nil
		}
		out := make([]protoserde.FieldDecl, len(in))
		for i, f := range in {
			var dirs []string
			if f.Proto != "" {
				dirs = append(dirs, f.Proto)
			}
			dirs = append(dirs, f.Protos...)
			out[i] = protoserde.FieldDecl{Name: f.Name, Directives: dirs, Pos: at(f.pos)}
		}
		return out
	}

	out := make([]protoserde.TypeDecl, 0, len(d.Types))
	for _, t := range d.Types {
		var kinds []string
		if t.Kind != "" {
			kinds = append(kinds, t.Kind)
		}
		kinds = append(kinds, t.Kinds...)

		var values []protoserde.EnumValueDecl
		for _, v := range t.Values {
			values = append(values, protoserde.EnumValueDecl{Name: v.Name, Value: v.Value, Pos: at(v.pos)})
		}
		out = append(out, protoserde.TypeDecl{
			Name:     t.Name,
			Kinds:    kinds,
			Options:  t.Options,
			Fields:   fields(t.Fields),
			Values:   values,
			Variants: fields(t.Variants),
			Pos:      at(t.pos),
		})
	}
	return out
}

package protoserde

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// FieldType is a declared type plus its resolved reference.
type FieldType struct {
	Kind    Kind
	Message *MessageSchema // KindMessage
	Enum    EnumRegistry   // KindEnum
	Oneof   OneofRegistry  // KindOneof
}

// FieldSchema describes one field of a message.
type FieldSchema struct {
	Name        string
	Type        FieldType
	Cardinality Cardinality
	Tag         int32   // non-oneof fields
	Tags        []int32 // oneof fields: the tags of all variants
}

// MessageSchema is an immutable, compiled message description. It is safe for
// concurrent use once built.
type MessageSchema struct {
	name   string
	policy PolicySet
	fields []compiledField
	byName map[string]int
	byWire map[string]variantRef
}

type compiledField struct {
	FieldSchema
	codec fieldCodec  // nil for oneof fields
	oneof *oneofCodec // oneof fields only
}

type variantRef struct {
	index int
	wire  string
}

// NewMessageSchema validates and compiles a message from programmatic field
// descriptions. Nested message types must already be built. Failures are
// reported as DeclErrors.
func NewMessageSchema(name string, policy PolicySet, fields ...FieldSchema) (*MessageSchema, error) {
	if name == "" {
		return nil, DeclErrors{{Message: "message without a name"}}
	}
	s := &MessageSchema{name: name, policy: policy}
	if errs := s.compile(fields, nil, zerolog.Nop()); len(errs) > 0 {
		return nil, errs
	}
	return s, nil
}

// compile validates fields and resolves the per-field strategy table. pos
// carries declaration positions aligned with fields (nil when unknown).
func (s *MessageSchema) compile(fields []FieldSchema, pos []Pos, log zerolog.Logger) DeclErrors {
	var errs DeclErrors
	at := func(i int) Pos {
		if i < len(pos) {
			return pos[i]
		}
		return Pos{}
	}
	fail := func(i int, field, format string, args ...any) {
		errs = append(errs, DeclError{Pos: at(i), Type: s.name, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	s.byName = make(map[string]int, len(fields))
	s.byWire = map[string]variantRef{}
	tags := map[int32]string{}
	useTag := func(i int, field string, tag int32) {
		if prev, ok := tags[tag]; ok {
			fail(i, field, "tag %d already used by %s", tag, prev)
			return
		}
		tags[tag] = field
	}

	for i, f := range fields {
		if f.Name == "" {
			fail(i, "", "field without a name")
			continue
		}
		if _, dup := s.byName[f.Name]; dup {
			fail(i, f.Name, "duplicate field name")
			continue
		}
		if msg := typeRefProblem(f.Type); msg != "" {
			fail(i, f.Name, "%s", msg)
			continue
		}
		cf := compiledField{FieldSchema: f}
		if f.Type.Kind == KindOneof {
			if f.Cardinality != Singular {
				fail(i, f.Name, "oneof fields take no cardinality modifier")
				continue
			}
			variants := f.Type.Oneof.Variants()
			if !sameTags(f.Tags, variants) {
				fail(i, f.Name, "tags %v do not match the variants of %s", f.Tags, f.Type.Oneof.Name())
				continue
			}
			for _, v := range variants {
				useTag(i, f.Name+"."+v.Ident, v.Tag)
				if prev, ok := s.byWire[v.WireName]; ok {
					fail(i, f.Name, "variant key %q already used by %s", v.WireName, fields[prev.index].Name)
					continue
				}
				s.byWire[v.WireName] = variantRef{index: i, wire: v.WireName}
			}
			cf.oneof = newOneofCodec(f.Type.Oneof)
		} else {
			if f.Tag <= 0 {
				fail(i, f.Name, "missing tag")
				continue
			}
			useTag(i, f.Name, f.Tag)
			cf.codec = resolveCodec(f.Type, f.Cardinality)
			s.byName[f.Name] = i
		}
		s.fields = append(s.fields, cf)
	}
	// A field and a variant sharing a key could not both be written or read.
	for i, f := range fields {
		if f.Type.Kind == KindOneof {
			continue
		}
		if ref, ok := s.byWire[f.Name]; ok {
			fail(i, f.Name, "key %q already used by a variant of %s", f.Name, fields[ref.index].Name)
		}
	}
	if len(errs) > 0 {
		log.Warn().Str("message", s.name).Int("errors", len(errs)).Msg("message schema rejected")
		return errs
	}
	log.Debug().Str("message", s.name).Int("fields", len(s.fields)).Int("variants", len(s.byWire)).Msg("compiled message schema")
	return nil
}

func typeRefProblem(t FieldType) string {
	switch t.Kind {
	case KindMessage:
		if t.Message == nil {
			return "message field without a schema"
		}
	case KindEnum:
		if t.Enum == nil {
			return "enumeration field without a registry"
		}
	case KindOneof:
		if t.Oneof == nil {
			return "oneof field without a registry"
		}
	case KindInvalid:
		return "field without a type"
	default:
		if t.Kind > KindOneof {
			return "unrecognized type"
		}
	}
	return ""
}

func sameTags(tags []int32, variants []OneofVariant) bool {
	if len(tags) != len(variants) {
		return false
	}
	a := append([]int32(nil), tags...)
	b := make([]int32, 0, len(variants))
	for _, v := range variants {
		b = append(b, v.Tag)
	}
	sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Name returns the declared message name.
func (s *MessageSchema) Name() string { return s.name }

// Policy returns the decode policy the message was declared with.
func (s *MessageSchema) Policy() PolicySet { return s.policy }

// Fields returns copies of the field descriptions in declaration order.
func (s *MessageSchema) Fields() []FieldSchema {
	out := make([]FieldSchema, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.FieldSchema
		out[i].Tags = append([]int32(nil), f.Tags...)
	}
	return out
}

// Field looks a field up by its declared name. Oneof fields are included.
func (s *MessageSchema) Field(name string) (FieldSchema, bool) {
	if i := s.index(name); i >= 0 {
		return s.fields[i].FieldSchema, true
	}
	return FieldSchema{}, false
}

func (s *MessageSchema) index(name string) int {
	if i, ok := s.byName[name]; ok {
		return i
	}
	for i, f := range s.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

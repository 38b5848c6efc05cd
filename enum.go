package protoserde

import (
	"fmt"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/protoserde/internal/engine"
)

// EnumRegistry maps enumeration names to discriminants and back.
type EnumRegistry interface {
	Name() string
	// NameFor returns the declared name of v. Aliased numbers resolve to the
	// first declared name.
	NameFor(v int32) (string, bool)
	// ValueFor resolves an exact, case-sensitive name.
	ValueFor(name string) (int32, bool)
	// Default is the value used when a field is filled with its zero value.
	Default() int32
}

// EnumValue is one named discriminant.
type EnumValue struct {
	Name   string
	Number int32
}

// Enum is the built-in EnumRegistry.
type Enum struct {
	name     string
	values   []EnumValue
	byName   map[string]int32
	byNumber map[int32]string
	def      int32
}

var _ EnumRegistry = (*Enum)(nil)

// NewEnum builds an Enum. The default is the value 0 when declared, otherwise
// the first declared value.
func NewEnum(name string, values ...EnumValue) (*Enum, error) {
	if name == "" {
		return nil, fmt.Errorf("enumeration without a name")
	}
	if probs := enumProblems(values); len(probs) > 0 {
		return nil, fmt.Errorf("enumeration %s: %s", name, probs[0].msg)
	}
	e := &Enum{
		name:     name,
		values:   append([]EnumValue(nil), values...),
		byName:   make(map[string]int32, len(values)),
		byNumber: make(map[int32]string, len(values)),
		def:      values[0].Number,
	}
	for _, v := range values {
		e.byName[v.Name] = v.Number
		if _, ok := e.byNumber[v.Number]; !ok {
			e.byNumber[v.Number] = v.Name
		}
		if v.Number == 0 {
			e.def = 0
		}
	}
	return e, nil
}

type enumProblem struct {
	index int
	msg   string
}

func enumProblems(values []EnumValue) []enumProblem {
	if len(values) == 0 {
		return []enumProblem{{index: -1, msg: "no values declared"}}
	}
	var out []enumProblem
	seen := make(map[string]struct{}, len(values))
	for i, v := range values {
		if v.Name == "" {
			out = append(out, enumProblem{index: i, msg: "value without a name"})
			continue
		}
		if _, ok := seen[v.Name]; ok {
			out = append(out, enumProblem{index: i, msg: fmt.Sprintf("duplicate value name %q", v.Name)})
			continue
		}
		seen[v.Name] = struct{}{}
	}
	return out
}

func (e *Enum) Name() string { return e.name }

func (e *Enum) NameFor(v int32) (string, bool) {
	n, ok := e.byNumber[v]
	return n, ok
}

func (e *Enum) ValueFor(name string) (int32, bool) {
	v, ok := e.byName[name]
	return v, ok
}

func (e *Enum) Default() int32 { return e.def }

// Values returns the declared values in declaration order.
func (e *Enum) Values() []EnumValue { return append([]EnumValue(nil), e.values...) }

// enumCodec renders discriminants as names.
type enumCodec struct{ enum EnumRegistry }

func (c enumCodec) decode(d *decoder, tok eng.Token, path string) (any, error) {
	switch tok.Kind {
	case eng.KindString:
		v, ok := c.enum.ValueFor(tok.String)
		if !ok {
			iss := newIssue(CodeUnknownVariant, path, nil)
			iss.Hint = "not a variant of " + c.enum.Name()
			iss.Value = tok.String
			iss.Offset = tok.Offset
			return nil, iss
		}
		return v, nil
	}
	return nil, typeMismatch(path, "string ("+c.enum.Name()+")", tok)
}

func (c enumCodec) encode(e *encoder, v any, path string) error {
	n, ok := v.(int32)
	if !ok {
		return invalidGoValue(path, "int32", v)
	}
	name, err := enumName(c.enum, n, path)
	if err != nil {
		return err
	}
	return e.writeString(name)
}

func (c enumCodec) zero() any { return c.enum.Default() }

func (c enumCodec) null(any) bool { return false }

func (c enumCodec) check(v any) error { return expectType[int32](v) }

func enumName(e EnumRegistry, v int32, path string) (string, error) {
	name, ok := e.NameFor(v)
	if !ok {
		iss := newIssue(CodeInvalidEnumValue, path, nil)
		iss.Hint = "no name in " + e.Name()
		iss.Value = strconv.FormatInt(int64(v), 10)
		return "", iss
	}
	return name, nil
}

// MarshalEnum renders v as a JSON string holding its name.
func MarshalEnum(e EnumRegistry, v int32) ([]byte, error) {
	name, err := enumName(e, v, "/")
	if err != nil {
		return nil, err
	}
	return j.Marshal(name)
}

// UnmarshalEnum parses a JSON string naming a variant of e.
func UnmarshalEnum(e EnumRegistry, data []byte) (int32, error) {
	src := EngineTokenSource(JSONBytes(data))
	d := &decoder{src: src}
	tok, err := d.next("")
	if err != nil {
		return 0, err
	}
	v, err := enumCodec{enum: e}.decode(d, tok, "/")
	if err != nil {
		return 0, err
	}
	if err := d.expectEOF(); err != nil {
		return 0, err
	}
	return v.(int32), nil
}

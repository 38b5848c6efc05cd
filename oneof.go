package protoserde

import (
	"fmt"
	"strings"

	"github.com/viant/tagly/format/text"

	eng "github.com/reoring/protoserde/internal/engine"
)

// OneofRegistry describes a tagged union whose variants are flattened into the
// key space of the enclosing message.
type OneofRegistry interface {
	Name() string
	// Variants returns the variants in declaration order.
	Variants() []OneofVariant
	// Variant looks a variant up by its JSON key.
	Variant(wireName string) (OneofVariant, bool)
}

// OneofVariant is one alternative of a oneof. WireName defaults to the
// snake_case form of Ident.
type OneofVariant struct {
	Ident    string
	WireName string
	Type     FieldType
	Tag      int32
}

// OneofValue is the active variant of a oneof slot.
type OneofValue struct {
	Variant string // wire name
	Value   any
}

// NewOneofValue constructs the content of a oneof slot.
func NewOneofValue(wireName string, payload any) *OneofValue {
	return &OneofValue{Variant: wireName, Value: payload}
}

// Oneof is the built-in OneofRegistry.
type Oneof struct {
	name     string
	variants []OneofVariant
	byWire   map[string]int
}

var _ OneofRegistry = (*Oneof)(nil)

// NewOneof builds a Oneof from its variants.
func NewOneof(name string, variants ...OneofVariant) (*Oneof, error) {
	if name == "" {
		return nil, fmt.Errorf("oneof without a name")
	}
	o := &Oneof{name: name, byWire: make(map[string]int, len(variants))}
	for _, v := range variants {
		if v.WireName == "" {
			v.WireName = WireName(v.Ident)
		}
		if msg := variantProblem(v); msg != "" {
			return nil, fmt.Errorf("oneof %s: variant %s: %s", name, v.Ident, msg)
		}
		if _, ok := o.byWire[v.WireName]; ok {
			return nil, fmt.Errorf("oneof %s: duplicate variant key %q", name, v.WireName)
		}
		o.byWire[v.WireName] = len(o.variants)
		o.variants = append(o.variants, v)
	}
	if len(o.variants) == 0 {
		return nil, fmt.Errorf("oneof %s: no variants declared", name)
	}
	return o, nil
}

func variantProblem(v OneofVariant) string {
	switch {
	case v.Ident == "":
		return "missing name"
	case v.Tag <= 0:
		return "missing tag"
	case v.Type.Kind == KindOneof:
		return "a oneof cannot nest another oneof"
	}
	return typeRefProblem(v.Type)
}

func (o *Oneof) Name() string { return o.name }

func (o *Oneof) Variants() []OneofVariant { return append([]OneofVariant(nil), o.variants...) }

func (o *Oneof) Variant(wireName string) (OneofVariant, bool) {
	i, ok := o.byWire[wireName]
	if !ok {
		return OneofVariant{}, false
	}
	return o.variants[i], true
}

// WireName converts a variant identifier such as "BlackCat" or "blackCat" into
// its JSON key ("black_cat").
func WireName(ident string) string {
	src := text.DetectCaseFormat(ident)
	if !src.IsDefined() {
		return strings.ToLower(ident)
	}
	return src.Format(ident, text.CaseFormatLowerUnderscore)
}

// oneofCodec encodes the active variant as a single key/value pair.
type oneofCodec struct {
	reg      OneofRegistry
	payloads map[string]fieldCodec
}

func newOneofCodec(reg OneofRegistry) *oneofCodec {
	c := &oneofCodec{reg: reg, payloads: map[string]fieldCodec{}}
	for _, v := range reg.Variants() {
		c.payloads[v.WireName] = singularCodec(v.Type)
	}
	return c
}

func (c *oneofCodec) check(v any) error {
	if v == nil {
		return nil
	}
	ov, ok := v.(*OneofValue)
	if !ok {
		return fmt.Errorf("expected *OneofValue, got %T", v)
	}
	if ov == nil {
		return nil
	}
	p, ok := c.payloads[ov.Variant]
	if !ok {
		return fmt.Errorf("%q is not a variant of %s", ov.Variant, c.reg.Name())
	}
	return p.check(ov.Value)
}

// decodeVariant reads the payload of variant wire. A null payload leaves the
// slot unset.
func (c *oneofCodec) decodeVariant(d *decoder, wire string, tok eng.Token, path string) (*OneofValue, error) {
	if tok.Kind == eng.KindNull {
		return nil, nil
	}
	v, err := c.payloads[wire].decode(d, tok, path)
	if err != nil {
		return nil, err
	}
	return &OneofValue{Variant: wire, Value: v}, nil
}

package protoserde

import (
	"fmt"
	"strconv"

	eng "github.com/reoring/protoserde/internal/engine"
)

// fieldCodec is the strategy chosen once per field from its cardinality and
// kind. The set of implementations is closed: scalarCodec, enumCodec,
// bytesCodec, messageCodec, repeatedCodec and optionalCodec.
type fieldCodec interface {
	// decode reads the value starting at tok.
	decode(d *decoder, tok eng.Token, path string) (any, error)
	encode(e *encoder, v any, path string) error
	zero() any
	// null reports whether v renders as JSON null.
	null(v any) bool
	// check validates the Go representation of a value.
	check(v any) error
}

func resolveCodec(t FieldType, c Cardinality) fieldCodec {
	single := singularCodec(t)
	switch c {
	case Repeated:
		return repeatedCodec{elem: single}
	case Optional:
		return optionalCodec{inner: single}
	}
	return single
}

func singularCodec(t FieldType) fieldCodec {
	switch t.Kind {
	case KindEnum:
		return enumCodec{enum: t.Enum}
	case KindBytes:
		return bytesCodec{}
	case KindMessage:
		return messageCodec{schema: t.Message}
	}
	return scalarCodec{kind: t.Kind}
}

// messageCodec handles a nested message. An unset message is nil and renders
// as null.
type messageCodec struct{ schema *MessageSchema }

func (c messageCodec) decode(d *decoder, tok eng.Token, path string) (any, error) {
	switch tok.Kind {
	case eng.KindBeginObject:
		return d.decodeMessage(c.schema, path)
	case eng.KindNull:
		return (*Message)(nil), nil
	}
	return nil, typeMismatch(path, "object ("+c.schema.Name()+")", tok)
}

func (c messageCodec) encode(e *encoder, v any, path string) error {
	m, ok := v.(*Message)
	if !ok {
		return invalidGoValue(path, "*Message", v)
	}
	if m == nil {
		e.buf.WriteString("null")
		return nil
	}
	return e.encodeMessage(m, path)
}

func (c messageCodec) zero() any { return (*Message)(nil) }

func (c messageCodec) null(v any) bool {
	m, _ := v.(*Message)
	return m == nil
}

func (c messageCodec) check(v any) error {
	m, ok := v.(*Message)
	if !ok {
		return fmt.Errorf("expected *Message, got %T", v)
	}
	if m != nil && m.schema != c.schema {
		return fmt.Errorf("expected message %s, got %s", c.schema.Name(), m.schema.Name())
	}
	return nil
}

// repeatedCodec maps a JSON array element-wise. Elements may not be null.
type repeatedCodec struct{ elem fieldCodec }

func (c repeatedCodec) decode(d *decoder, tok eng.Token, path string) (any, error) {
	if tok.Kind != eng.KindBeginArray {
		return nil, typeMismatch(path, "array", tok)
	}
	out := []any{}
	for i := 0; ; i++ {
		ep := eng.JoinPointer(path, strconv.Itoa(i))
		t, err := d.next(ep)
		if err != nil {
			return nil, err
		}
		if t.Kind == eng.KindEndArray {
			return out, nil
		}
		if t.Kind == eng.KindNull {
			return nil, typeMismatch(ep, "non-null element", t)
		}
		v, err := c.elem.decode(d, t, ep)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func (c repeatedCodec) encode(e *encoder, v any, path string) error {
	list, ok := v.([]any)
	if !ok && v != nil {
		return invalidGoValue(path, "[]any", v)
	}
	e.buf.WriteByte('[')
	for i, el := range list {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		ep := eng.JoinPointer(path, strconv.Itoa(i))
		if el == nil || c.elem.null(el) {
			return invalidGoValue(ep, "non-null element", el)
		}
		if err := c.elem.encode(e, el, ep); err != nil {
			return err
		}
	}
	e.buf.WriteByte(']')
	return nil
}

func (c repeatedCodec) zero() any { return []any{} }

func (c repeatedCodec) null(any) bool { return false }

func (c repeatedCodec) check(v any) error {
	if v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return fmt.Errorf("expected []any, got %T", v)
	}
	for i, el := range list {
		if el == nil || c.elem.null(el) {
			return fmt.Errorf("element %d: null elements are not allowed", i)
		}
		if err := c.elem.check(el); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// optionalCodec wraps a singular strategy. Absent and null both decode to nil.
type optionalCodec struct{ inner fieldCodec }

func (c optionalCodec) decode(d *decoder, tok eng.Token, path string) (any, error) {
	if tok.Kind == eng.KindNull {
		return nil, nil
	}
	return c.inner.decode(d, tok, path)
}

func (c optionalCodec) encode(e *encoder, v any, path string) error {
	if c.null(v) {
		e.buf.WriteString("null")
		return nil
	}
	return c.inner.encode(e, v, path)
}

func (c optionalCodec) zero() any { return nil }

func (c optionalCodec) null(v any) bool { return v == nil || c.inner.null(v) }

func (c optionalCodec) check(v any) error {
	if v == nil {
		return nil
	}
	return c.inner.check(v)
}

func expectType[T any](v any) error {
	if _, ok := v.(T); !ok {
		var want T
		return fmt.Errorf("expected %T, got %T", want, v)
	}
	return nil
}

func invalidGoValue(path, want string, v any) *Issue {
	iss := newIssue(CodeInvalidValue, path, nil)
	iss.Hint = fmt.Sprintf("expected %s, got %T", want, v)
	return iss
}

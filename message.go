package protoserde

import (
	"bytes"
	"fmt"
)

// Message is a dynamic message value: a schema plus one slot per field.
type Message struct {
	schema *MessageSchema
	slots  []any
}

// NewMessage returns a message whose fields hold their zero values: scalars are
// zero, enums hold their default, repeated fields are empty and optional,
// message and oneof fields are unset.
func NewMessage(s *MessageSchema) *Message {
	m := &Message{schema: s, slots: make([]any, len(s.fields))}
	for i, f := range s.fields {
		m.slots[i] = f.zero()
	}
	return m
}

func (f compiledField) zero() any {
	if f.oneof != nil {
		return nil
	}
	return f.codec.zero()
}

func (f compiledField) check(v any) error {
	if f.oneof != nil {
		return f.oneof.check(v)
	}
	return f.codec.check(v)
}

func (m *Message) Schema() *MessageSchema { return m.schema }

// Get returns the value of the named field. ok is false for unknown names.
func (m *Message) Get(name string) (v any, ok bool) {
	i := m.schema.index(name)
	if i < 0 {
		return nil, false
	}
	return m.slots[i], true
}

// Set stores v after checking it against the field's declared type.
func (m *Message) Set(name string, v any) error {
	i := m.schema.index(name)
	if i < 0 {
		return fmt.Errorf("%s has no field %q", m.schema.name, name)
	}
	if err := m.schema.fields[i].check(v); err != nil {
		return fmt.Errorf("%s.%s: %w", m.schema.name, name, err)
	}
	m.slots[i] = v
	return nil
}

// MustSet is like Set but panics on error. It returns m for chaining.
func (m *Message) MustSet(name string, v any) *Message {
	if err := m.Set(name, v); err != nil {
		panic(err)
	}
	return m
}

// Clear resets the named field to its zero value.
func (m *Message) Clear(name string) error {
	i := m.schema.index(name)
	if i < 0 {
		return fmt.Errorf("%s has no field %q", m.schema.name, name)
	}
	m.slots[i] = m.schema.fields[i].zero()
	return nil
}

// Oneof returns the active variant of the named oneof field, or nil.
func (m *Message) Oneof(name string) *OneofValue {
	v, _ := m.Get(name)
	ov, _ := v.(*OneofValue)
	return ov
}

// Equal reports whether both messages share a schema and hold equal values.
// Nil and empty byte slices and lists compare equal.
func (m *Message) Equal(o *Message) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.schema != o.schema {
		return false
	}
	for i := range m.slots {
		if !valueEqual(m.slots[i], o.slots[i]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return isNilValue(b)
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case []any:
		y, ok := b.([]any)
		if !ok && b != nil {
			return false
		}
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valueEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Message:
		if isNilValue(b) {
			return x == nil
		}
		y, ok := b.(*Message)
		return ok && x.Equal(y)
	case *OneofValue:
		if isNilValue(b) {
			return x == nil
		}
		y, ok := b.(*OneofValue)
		if !ok || x == nil || y == nil {
			return ok && x == y
		}
		return x.Variant == y.Variant && valueEqual(x.Value, y.Value)
	}
	return a == b
}

func isNilValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *Message:
		return x == nil
	case *OneofValue:
		return x == nil
	case []any:
		return len(x) == 0
	}
	return false
}

// Clone returns a deep copy of m.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := &Message{schema: m.schema, slots: make([]any, len(m.slots))}
	for i, v := range m.slots {
		c.slots[i] = cloneValue(v)
	}
	return c
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return append([]byte{}, x...)
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i := range x {
			out[i] = cloneValue(x[i])
		}
		return out
	case *Message:
		return x.Clone()
	case *OneofValue:
		if x == nil {
			return x
		}
		return &OneofValue{Variant: x.Variant, Value: cloneValue(x.Value)}
	}
	return v
}

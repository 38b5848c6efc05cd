package protoserde

import (
	"bytes"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/protoserde/internal/engine"
)

// encoder owns the output buffer of one Marshal call.
type encoder struct {
	buf      *bytes.Buffer
	opt      EncodeOpt
	presence PresenceMap // non-nil in preserving mode
}

func (e *encoder) writeString(s string) error {
	b, err := j.Marshal(s)
	if err != nil {
		iss := newIssue(CodeInvalidValue, "", nil)
		iss.Cause = err
		return iss
	}
	e.buf.Write(b)
	return nil
}

func (e *encoder) writeKey(first *bool, key string) error {
	if !*first {
		e.buf.WriteByte(',')
	}
	*first = false
	if err := e.writeString(key); err != nil {
		return err
	}
	e.buf.WriteByte(':')
	return nil
}

// encodeMessage writes m as an object whose keys follow declaration order.
func (e *encoder) encodeMessage(m *Message, path string) error {
	e.buf.WriteByte('{')
	first := true
	for i, f := range m.schema.fields {
		v := m.slots[i]
		if f.oneof != nil {
			if err := e.encodeOneof(&first, f, v, path); err != nil {
				return err
			}
			continue
		}
		fp := eng.JoinPointer(path, f.Name)
		if !e.keep(f, v, fp) {
			continue
		}
		if err := e.writeKey(&first, f.Name); err != nil {
			return err
		}
		if err := f.codec.encode(e, v, fp); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) keep(f compiledField, v any, path string) bool {
	if e.presence != nil {
		if e.presence[path]&PresenceSeen != 0 {
			return true
		}
		return !f.codec.null(v) && !valueEqual(v, f.codec.zero())
	}
	return !(e.opt.OmitNull && f.codec.null(v))
}

// encodeOneof contributes "variant":payload when a variant is active.
func (e *encoder) encodeOneof(first *bool, f compiledField, v any, path string) error {
	ov, _ := v.(*OneofValue)
	if ov == nil {
		if wire := e.nullVariant(f, path); wire != "" {
			if err := e.writeKey(first, wire); err != nil {
				return err
			}
			e.buf.WriteString("null")
		}
		return nil
	}
	vp := eng.JoinPointer(path, ov.Variant)
	codec, ok := f.oneof.payloads[ov.Variant]
	if !ok {
		iss := newIssue(CodeInvalidValue, vp, nil)
		iss.Field = f.Name
		iss.Hint = "not a variant of " + f.oneof.reg.Name()
		iss.Value = ov.Variant
		return iss
	}
	if e.presence == nil && e.opt.OmitNull && codec.null(ov.Value) {
		return nil
	}
	if err := e.writeKey(first, ov.Variant); err != nil {
		return err
	}
	return codec.encode(e, ov.Value, vp)
}

// nullVariant finds the variant key that was present as null in preserving mode.
func (e *encoder) nullVariant(f compiledField, path string) string {
	if e.presence == nil {
		return ""
	}
	for _, v := range f.oneof.reg.Variants() {
		if e.presence[eng.JoinPointer(path, v.WireName)]&PresenceWasNull != 0 {
			return v.WireName
		}
	}
	return ""
}

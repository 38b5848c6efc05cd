package protoserde

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"

	eng "github.com/reoring/protoserde/internal/engine"
)

// decoder owns the per-call state of one Unmarshal.
type decoder struct {
	ctx      context.Context
	src      eng.TokenSource
	presence PresenceMap // nil unless presence is collected
}

// decodeState is the position of the key-dispatch loop within one object.
type decodeState int

const (
	stateScanning decodeState = iota
	stateDispatching
	stateConsuming
	stateFinalizing
)

func (d *decoder) log() *zerolog.Logger {
	if d.ctx == nil {
		l := zerolog.Nop()
		return &l
	}
	return zerolog.Ctx(d.ctx)
}

func (d *decoder) next(path string) (eng.Token, error) {
	tok, err := d.src.NextToken()
	if err != nil {
		return eng.Token{}, toIssue(err, path, d.src.Location())
	}
	return tok, nil
}

// expectEOF fails when anything follows the top-level value.
func (d *decoder) expectEOF() error {
	tok, err := d.src.NextToken()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return toIssue(err, "/", d.src.Location())
	}
	iss := newIssue(CodeParseError, "/", nil)
	iss.Hint = "unexpected " + tok.Kind.String() + " after top-level value"
	iss.Offset = tok.Offset
	return iss
}

func (d *decoder) mark(path string, p Presence) {
	if d.presence != nil {
		d.presence[path] |= p
	}
}

// decodeTop reads one top-level object followed by end of input.
func (d *decoder) decodeTop(s *MessageSchema) (*Message, error) {
	tok, err := d.next("/")
	if err != nil {
		return nil, err
	}
	if tok.Kind != eng.KindBeginObject {
		return nil, typeMismatch("/", "object ("+s.Name()+")", tok)
	}
	d.mark("/", PresenceSeen)
	m, err := d.decodeMessage(s, "")
	if err != nil {
		return nil, err
	}
	if err := d.expectEOF(); err != nil {
		return nil, err
	}
	return m, nil
}

// decodeMessage runs the key-dispatch loop for an object whose '{' has been
// consumed.
func (d *decoder) decodeMessage(s *MessageSchema, path string) (*Message, error) {
	m := &Message{schema: s, slots: make([]any, len(s.fields))}
	seen := make([]bool, len(s.fields))

	var (
		key     string
		keyPath string
		idx     int
		wire    string // non-empty when the key selects a oneof variant
	)
	state := stateScanning
	for {
		switch state {
		case stateScanning:
			tok, err := d.next(path)
			if err != nil {
				return nil, err
			}
			if tok.Kind == eng.KindEndObject {
				state = stateFinalizing
				continue
			}
			if tok.Kind != eng.KindKey {
				iss := newIssue(CodeParseError, path, nil)
				iss.Hint = "expected object key, got " + tok.Kind.String()
				return nil, iss
			}
			key, keyPath = tok.String, eng.JoinPointer(path, tok.String)
			state = stateDispatching

		case stateDispatching:
			if ref, ok := s.byWire[key]; ok {
				idx, wire = ref.index, ref.wire
			} else if i, ok := s.byName[key]; ok {
				idx, wire = i, ""
			} else {
				if !s.policy.IgnoreUnknownFields {
					iss := newIssue(CodeUnknownField, keyPath, nil)
					iss.Hint = "not a field of " + s.name
					iss.Field = key
					return nil, iss
				}
				tok, err := d.next(keyPath)
				if err != nil {
					return nil, err
				}
				if err := eng.Skip(d.src, tok); err != nil {
					return nil, toIssue(err, keyPath, d.src.Location())
				}
				d.log().Debug().Str("message", s.name).Str("key", key).Msg("skipped unknown field")
				state = stateScanning
				continue
			}
			if seen[idx] {
				iss := newIssue(CodeDuplicateField, keyPath, nil)
				iss.Field = s.fields[idx].Name
				if wire != "" {
					iss.Hint = "oneof " + s.fields[idx].Name + " already set"
				}
				return nil, iss
			}
			seen[idx] = true
			d.mark(keyPath, PresenceSeen)
			state = stateConsuming

		case stateConsuming:
			tok, err := d.next(keyPath)
			if err != nil {
				return nil, err
			}
			if tok.Kind == eng.KindNull {
				d.mark(keyPath, PresenceWasNull)
			}
			f := s.fields[idx]
			var v any
			if wire != "" {
				v, err = d.decodeField(s, keyPath, tok, func(sub *decoder, t eng.Token) (any, error) {
					ov, err := f.oneof.decodeVariant(sub, wire, t, keyPath)
					if err != nil || ov == nil {
						return nil, err
					}
					return ov, nil
				}, nil)
			} else {
				v, err = d.decodeField(s, keyPath, tok, func(sub *decoder, t eng.Token) (any, error) {
					return f.codec.decode(sub, t, keyPath)
				}, f.codec.zero)
			}
			if err != nil {
				return nil, err
			}
			m.slots[idx] = v
			state = stateScanning

		case stateFinalizing:
			for i, f := range s.fields {
				if seen[i] {
					continue
				}
				switch {
				case f.oneof != nil, f.Cardinality != Singular:
					m.slots[i] = f.zero()
				case s.policy.UseDefaultForMissingFields:
					m.slots[i] = f.zero()
					d.mark(eng.JoinPointer(path, f.Name), PresenceDefaultApplied)
				default:
					iss := newIssue(CodeMissingField, eng.JoinPointer(path, f.Name), nil)
					iss.Field = f.Name
					iss.Hint = "required by " + s.name
					return nil, iss
				}
			}
			return m, nil
		}
	}
}

// decodeField applies read to the value starting at tok. Under OmitTypeErrors
// the value is captured first so that a type mismatch anywhere inside it can be
// replaced by zero without losing the stream position.
func (d *decoder) decodeField(s *MessageSchema, path string, tok eng.Token, read func(*decoder, eng.Token) (any, error), zero func() any) (any, error) {
	if !s.policy.OmitTypeErrors {
		return read(d, tok)
	}
	tokens, err := eng.Capture(d.src, tok)
	if err != nil {
		return nil, toIssue(err, path, d.src.Location())
	}
	replay := eng.NewReplay(tokens)
	first, _ := replay.NextToken()
	sub := &decoder{ctx: d.ctx, src: replay, presence: d.presence}
	v, err := read(sub, first)
	if err == nil {
		return v, nil
	}
	if !isCode(err, CodeTypeMismatch) {
		return nil, err
	}
	d.log().Debug().Str("message", s.name).Str("path", path).Err(err).Msg("masked type error")
	d.forget(path)
	if zero == nil {
		return nil, nil
	}
	return zero(), nil
}

// forget drops presence recorded below path by a masked decode.
func (d *decoder) forget(path string) {
	if d.presence == nil {
		return
	}
	prefix := path + "/"
	for k := range d.presence {
		if strings.HasPrefix(k, prefix) {
			delete(d.presence, k)
		}
	}
}

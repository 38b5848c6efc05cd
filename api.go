package protoserde

import (
	"bytes"
	"context"
	"io"

	"github.com/rs/zerolog"
)

// Unmarshal decodes a JSON object into a message of schema s.
func Unmarshal(ctx context.Context, s *MessageSchema, data []byte, opts ...DecodeOpt) (*Message, error) {
	return UnmarshalFrom(ctx, s, JSONBytes(data), opts...)
}

// UnmarshalFrom is the primary decode entry point. It consumes tokens from src
// and fails with exactly one *Issue; no partial message is returned.
func UnmarshalFrom(ctx context.Context, s *MessageSchema, src Source, opts ...DecodeOpt) (*Message, error) {
	if s == nil {
		return nil, nilSchema()
	}
	opt := lastDecodeOpt(opts)
	d := &decoder{ctx: ctx, src: enforce(src, opt)}
	m, err := d.decodeTop(s)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Str("message", s.Name()).Err(err).Msg("unmarshal failed")
		return nil, err
	}
	return m, nil
}

// UnmarshalReader decodes a JSON object read from r. When MaxBytes is set
// the size cap is enforced up front.
func UnmarshalReader(ctx context.Context, s *MessageSchema, r io.Reader, opts ...DecodeOpt) (*Message, error) {
	opt := lastDecodeOpt(opts)
	if opt.MaxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, opt.MaxBytes+1))
		if err != nil {
			return nil, toIssue(err, "/", -1)
		}
		if int64(len(data)) > opt.MaxBytes {
			iss := newIssue(CodeTruncated, "/", nil)
			iss.Hint = "max bytes exceeded"
			iss.Offset = opt.MaxBytes
			return nil, iss
		}
		return UnmarshalFrom(ctx, s, JSONBytes(data), opts...)
	}
	return UnmarshalFrom(ctx, s, JSONReader(r), opts...)
}

// UnmarshalWithMeta decodes like UnmarshalFrom and additionally records which
// keys were present, null or defaulted.
func UnmarshalWithMeta(ctx context.Context, s *MessageSchema, src Source, opts ...DecodeOpt) (Decoded, error) {
	if s == nil {
		return Decoded{}, nilSchema()
	}
	opt := lastDecodeOpt(opts)
	d := &decoder{ctx: ctx, src: enforce(src, opt), presence: PresenceMap{}}
	m, err := d.decodeTop(s)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{Value: m, Presence: applyPresenceOptions(d.presence, opt.Presence)}, nil
}

// Marshal renders m as a JSON object with keys in declaration order.
func Marshal(ctx context.Context, m *Message, opts ...EncodeOpt) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshal(ctx, &buf, m, nil, lastEncodeOpt(opts)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalTo writes the JSON form of m to w. Nothing is written on failure.
func MarshalTo(ctx context.Context, w io.Writer, m *Message, opts ...EncodeOpt) error {
	var buf bytes.Buffer
	if err := marshal(ctx, &buf, m, nil, lastEncodeOpt(opts)); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// MarshalPreserving renders d.Value guided by d.Presence: keys that were null
// in the input are written as null again and keys that were absent are left
// out unless the value has since been changed from its zero value.
func MarshalPreserving(ctx context.Context, d Decoded, opts ...EncodeOpt) ([]byte, error) {
	pm := d.Presence
	if pm == nil {
		pm = PresenceMap{}
	}
	var buf bytes.Buffer
	if err := marshal(ctx, &buf, d.Value, pm, lastEncodeOpt(opts)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshal(ctx context.Context, buf *bytes.Buffer, m *Message, pm PresenceMap, opt EncodeOpt) error {
	if m == nil {
		iss := newIssue(CodeInvalidValue, "/", nil)
		iss.Hint = "nil message"
		return iss
	}
	e := &encoder{buf: buf, opt: opt, presence: pm}
	if err := e.encodeMessage(m, ""); err != nil {
		zerolog.Ctx(ctx).Debug().Str("message", m.schema.Name()).Err(err).Msg("marshal failed")
		return err
	}
	return nil
}

func nilSchema() *Issue {
	iss := newIssue(CodeParseError, "/", nil)
	iss.Hint = "nil schema"
	return iss
}

package protoserde

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/protoserde/internal/engine"
)

// scalarCodec handles bool, string and numeric kinds. Numbers must be JSON
// numbers; quoted numbers are a type mismatch.
type scalarCodec struct{ kind Kind }

func (c scalarCodec) decode(d *decoder, tok eng.Token, path string) (any, error) {
	switch c.kind {
	case KindBool:
		if tok.Kind == eng.KindBool {
			return tok.Bool, nil
		}
	case KindString:
		if tok.Kind == eng.KindString {
			return tok.String, nil
		}
	default:
		if tok.Kind == eng.KindNumber {
			if v, ok := c.parseNumber(tok.Number); ok {
				return v, nil
			}
			iss := typeMismatch(path, c.kind.String(), tok)
			iss.Hint = fmt.Sprintf("%s does not fit %s", tok.Number, c.kind)
			iss.Value = tok.Number
			return nil, iss
		}
	}
	return nil, typeMismatch(path, c.kind.String(), tok)
}

func (c scalarCodec) parseNumber(s string) (any, bool) {
	switch c.kind {
	case KindInt32:
		n, err := strconv.ParseInt(s, 10, 32)
		return int32(n), err == nil
	case KindInt64:
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	case KindFixed32, KindUint32:
		n, err := strconv.ParseUint(s, 10, 32)
		return uint32(n), err == nil
	case KindFixed64, KindUint64:
		n, err := strconv.ParseUint(s, 10, 64)
		return n, err == nil
	case KindFloat:
		f, err := strconv.ParseFloat(s, 32)
		return float32(f), err == nil
	case KindDouble:
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return nil, false
}

func (c scalarCodec) encode(e *encoder, v any, path string) error {
	switch c.kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return invalidGoValue(path, "bool", v)
		}
		e.buf.WriteString(strconv.FormatBool(b))
		return nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return invalidGoValue(path, "string", v)
		}
		return e.writeString(s)
	case KindInt32:
		n, ok := v.(int32)
		if !ok {
			return invalidGoValue(path, "int32", v)
		}
		e.buf.WriteString(strconv.FormatInt(int64(n), 10))
	case KindInt64:
		n, ok := v.(int64)
		if !ok {
			return invalidGoValue(path, "int64", v)
		}
		e.buf.WriteString(strconv.FormatInt(n, 10))
	case KindFixed32, KindUint32:
		n, ok := v.(uint32)
		if !ok {
			return invalidGoValue(path, "uint32", v)
		}
		e.buf.WriteString(strconv.FormatUint(uint64(n), 10))
	case KindFixed64, KindUint64:
		n, ok := v.(uint64)
		if !ok {
			return invalidGoValue(path, "uint64", v)
		}
		e.buf.WriteString(strconv.FormatUint(n, 10))
	case KindFloat:
		f, ok := v.(float32)
		if !ok {
			return invalidGoValue(path, "float32", v)
		}
		return e.writeFloat(float64(f), f, path)
	case KindDouble:
		f, ok := v.(float64)
		if !ok {
			return invalidGoValue(path, "float64", v)
		}
		return e.writeFloat(f, f, path)
	default:
		return invalidGoValue(path, c.kind.String(), v)
	}
	return nil
}

func (c scalarCodec) zero() any {
	switch c.kind {
	case KindBool:
		return false
	case KindString:
		return ""
	case KindInt32:
		return int32(0)
	case KindInt64:
		return int64(0)
	case KindFixed32, KindUint32:
		return uint32(0)
	case KindFixed64, KindUint64:
		return uint64(0)
	case KindFloat:
		return float32(0)
	case KindDouble:
		return float64(0)
	}
	return nil
}

func (c scalarCodec) null(any) bool { return false }

func (c scalarCodec) check(v any) error {
	switch c.kind {
	case KindBool:
		return expectType[bool](v)
	case KindString:
		return expectType[string](v)
	case KindInt32:
		return expectType[int32](v)
	case KindInt64:
		return expectType[int64](v)
	case KindFixed32, KindUint32:
		return expectType[uint32](v)
	case KindFixed64, KindUint64:
		return expectType[uint64](v)
	case KindFloat:
		return expectType[float32](v)
	case KindDouble:
		return expectType[float64](v)
	}
	return fmt.Errorf("unsupported kind %s", c.kind)
}

// bytesCodec renders []byte as padded standard base64.
type bytesCodec struct{}

func (bytesCodec) decode(d *decoder, tok eng.Token, path string) (any, error) {
	switch tok.Kind {
	case eng.KindString:
		b, err := base64.StdEncoding.DecodeString(tok.String)
		if err != nil {
			iss := newIssue(CodeInvalidBytes, path, nil)
			iss.Hint = "expected a padded base64 string"
			iss.Value = tok.String
			iss.Offset = tok.Offset
			iss.Cause = err
			return nil, iss
		}
		return b, nil
	}
	return nil, typeMismatch(path, "base64 string", tok)
}

func (bytesCodec) encode(e *encoder, v any, path string) error {
	b, ok := v.([]byte)
	if !ok {
		return invalidGoValue(path, "[]byte", v)
	}
	e.buf.WriteByte('"')
	e.buf.WriteString(base64.StdEncoding.EncodeToString(b))
	e.buf.WriteByte('"')
	return nil
}

func (bytesCodec) zero() any { return []byte{} }

func (bytesCodec) null(any) bool { return false }

func (bytesCodec) check(v any) error { return expectType[[]byte](v) }

// writeFloat renders f using go-json, which picks the shortest form for the
// value's own width. NaN and infinities have no JSON form.
func (e *encoder) writeFloat(f float64, v any, path string) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		iss := newIssue(CodeInvalidValue, path, nil)
		iss.Hint = "NaN and Inf cannot be encoded"
		iss.Value = strconv.FormatFloat(f, 'g', -1, 64)
		return iss
	}
	b, err := j.Marshal(v)
	if err != nil {
		iss := newIssue(CodeInvalidValue, path, nil)
		iss.Cause = err
		return iss
	}
	e.buf.Write(b)
	return nil
}

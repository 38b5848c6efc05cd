// Package gojson is the default token driver, built on github.com/goccy/go-json.
package gojson

import (
	"bytes"
	"errors"
	"io"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/protoserde/internal/engine"
)

var errTrailing = errors.New("invalid character after top-level value")

// source streams tokens from a go-json Decoder. Decoder.Token does not check
// the commas and colons between tokens, so the input is validated as a whole
// before the first token is handed out; err holds the validation failure.
type source struct {
	dec    *j.Decoder
	framer eng.Framer
	err    error
}

// NewReader reads all of r and returns a token source over it.
func NewReader(r io.Reader) eng.TokenSource {
	b, err := io.ReadAll(r)
	if err != nil {
		return &source{err: err}
	}
	return NewBytes(b)
}

// NewBytes returns a token source over b. Malformed JSON surfaces as an error
// from the first NextToken call.
func NewBytes(b []byte) eng.TokenSource {
	if err := validate(b); err != nil {
		return &source{err: err}
	}
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return &source{dec: dec}
}

// validate decodes one value like json.Valid does but keeps the decoder's
// error. Only whitespace may follow the value.
func validate(b []byte) error {
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	off := dec.InputOffset()
	if off < 0 || off > int64(len(b)) {
		off = int64(len(b))
	}
	if len(bytes.TrimLeft(b[off:], " \t\r\n")) > 0 {
		return errTrailing
	}
	return nil
}

func (s *source) NextToken() (eng.Token, error) {
	if s.err != nil {
		return eng.Token{}, s.err
	}
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	return s.framer.Token(tok, -1), nil
}

// go-json does not expose a byte offset on its token decoder.
func (s *source) Location() int64 { return -1 }

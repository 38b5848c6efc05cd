// Package json is the encoding/json token driver. It is slower than the
// go-json driver but records the byte offset of every token.
package json

import (
	"bytes"
	"encoding/json"
	"io"

	eng "github.com/reoring/protoserde/internal/engine"
)

type source struct {
	dec    *json.Decoder
	framer eng.Framer
	off    int64
}

func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec, off: -1}
}

func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.off = s.dec.InputOffset()
	return s.framer.Token(tok, s.off), nil
}

// Location is the offset just past the last token read.
func (s *source) Location() int64 { return s.off }

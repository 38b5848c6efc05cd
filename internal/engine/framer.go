package engine

import (
	"encoding/json"
	"strconv"
)

// Framer turns the untyped tokens of encoding/json style decoders into Tokens.
// Those decoders report object keys and string values alike, so Framer keeps
// the nesting needed to tell them apart.
type Framer struct {
	stack []level
}

type level struct {
	object  bool
	wantKey bool
}

// Token converts tok (json.Delim, string, bool, json.Number, float64 or nil)
// and records it. off is stored as the token offset.
func (f *Framer) Token(tok any, off int64) Token {
	switch v := tok.(type) {
	case json.Delim:
		return Token{Kind: f.delim(rune(v)), Offset: off}
	case string:
		return Token{Kind: f.text(), String: v, Offset: off}
	case bool:
		f.valueDone()
		return Token{Kind: KindBool, Bool: v, Offset: off}
	case json.Number:
		f.valueDone()
		return Token{Kind: KindNumber, Number: string(v), Offset: off}
	case float64:
		f.valueDone()
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: off}
	}
	f.valueDone()
	return Token{Kind: KindNull, Offset: off}
}

func (f *Framer) delim(c rune) Kind {
	switch c {
	case '{':
		f.stack = append(f.stack, level{object: true, wantKey: true})
		return KindBeginObject
	case '[':
		f.stack = append(f.stack, level{})
		return KindBeginArray
	}
	if n := len(f.stack); n > 0 {
		f.stack = f.stack[:n-1]
	}
	f.valueDone()
	if c == '}' {
		return KindEndObject
	}
	return KindEndArray
}

func (f *Framer) text() Kind {
	if n := len(f.stack); n > 0 && f.stack[n-1].wantKey {
		f.stack[n-1].wantKey = false
		return KindKey
	}
	f.valueDone()
	return KindString
}

// valueDone makes the enclosing object expect its next key.
func (f *Framer) valueDone() {
	if n := len(f.stack); n > 0 && f.stack[n-1].object {
		f.stack[n-1].wantKey = true
	}
}

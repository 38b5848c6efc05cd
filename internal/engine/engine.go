package engine

import (
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// String names the JSON shape a token starts.
func (k Kind) String() string {
	switch k {
	case KindBeginObject, KindEndObject:
		return "object"
	case KindBeginArray, KindEndArray:
		return "array"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	}
	return "unknown"
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string // kept as text; callers choose the numeric interpretation
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Skip consumes the rest of the value that starts with first. Nested
// containers are drained so the source is positioned after the value.
func Skip(src TokenSource, first Token) error {
	return walk(src, first, nil)
}

// Capture consumes the value that starts with first and returns all of its
// tokens, first included.
func Capture(src TokenSource, first Token) ([]Token, error) {
	out := make([]Token, 0, 8)
	err := walk(src, first, func(t Token) { out = append(out, t) })
	if err != nil {
		return nil, err
	}
	return out, nil
}

func walk(src TokenSource, first Token, visit func(Token)) error {
	if visit != nil {
		visit(first)
	}
	switch first.Kind {
	case KindBeginObject, KindBeginArray:
	case KindEndObject, KindEndArray, KindKey:
		return io.ErrUnexpectedEOF
	default:
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := src.NextToken()
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		if visit != nil {
			visit(tok)
		}
		switch tok.Kind {
		case KindBeginObject, KindBeginArray:
			depth++
		case KindEndObject, KindEndArray:
			depth--
		}
	}
	return nil
}

// NewReplay returns a TokenSource that yields the given tokens in order and
// io.EOF afterwards.
func NewReplay(tokens []Token) TokenSource {
	return &replaySource{tokens: tokens}
}

type replaySource struct {
	tokens []Token
	idx    int
}

func (r *replaySource) NextToken() (Token, error) {
	if r.idx >= len(r.tokens) {
		return Token{}, io.EOF
	}
	t := r.tokens[r.idx]
	r.idx++
	return t, nil
}

func (r *replaySource) Location() int64 {
	if r.idx == 0 || r.idx > len(r.tokens) {
		return -1
	}
	return r.tokens[r.idx-1].Offset
}

package protoserde

import (
	"io"
	"sync"

	eng "github.com/reoring/protoserde/internal/engine"
	gojsonsrc "github.com/reoring/protoserde/source/gojson"
	jsonsrc "github.com/reoring/protoserde/source/json"
	"github.com/reoring/protoserde/source/tree"
)

// TokenKind enumerates JSON token kinds. Values mirror internal/engine.Kind.
type TokenKind int

const (
	TokenBeginObject TokenKind = iota
	TokenEndObject
	TokenBeginArray
	TokenEndArray
	TokenKey
	TokenString
	TokenNumber
	TokenBool
	TokenNull
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token struct {
	Kind   TokenKind
	String string // key and string tokens
	Number string // number tokens, as written
	Bool   bool
	Offset int64
}

// Source abstracts over token producers. NextToken returns io.EOF after the
// last token.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source. The default implementation is
// based on github.com/goccy/go-json and may be swapped with SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = goJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default go-json driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = goJSONDriver{}
	jsonDriverMu.Unlock()
}

func getJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

type goJSONDriver struct{}

func (goJSONDriver) NewReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: gojsonsrc.NewReader(r)}
}
func (goJSONDriver) NewBytes(b []byte) Source {
	return &engineSourceAdapter{inner: gojsonsrc.NewBytes(b)}
}
func (goJSONDriver) Name() string { return "go-json" }

type stdJSONDriver struct{}

func (stdJSONDriver) NewReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: jsonsrc.NewReader(r)}
}
func (stdJSONDriver) NewBytes(b []byte) Source {
	return &engineSourceAdapter{inner: jsonsrc.NewBytes(b)}
}
func (stdJSONDriver) Name() string { return "encoding/json" }

// StdJSONDriver returns the encoding/json driver. It is slower than the
// default but reports byte offsets in issues.
func StdJSONDriver() JSONDriver { return stdJSONDriver{} }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return getJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return getJSONDriver().NewBytes(b) }

// ValueSource walks an in-memory JSON value (map[string]any, []any, string,
// bool, nil, json.Number or Go numbers). Object keys are visited in sorted
// order.
func ValueSource(v any) (Source, error) {
	inner, err := tree.New(v)
	if err != nil {
		return nil, err
	}
	return &engineSourceAdapter{inner: inner}, nil
}

// EngineTokenSource exposes the engine view of a Source.
func EngineTokenSource(s Source) eng.TokenSource {
	if ea, ok := s.(*engineSourceAdapter); ok {
		return ea.inner
	}
	return &tokenSourceAdapter{inner: s}
}

func enforce(s Source, opt DecodeOpt) eng.TokenSource {
	return eng.WrapWithEnforcement(EngineTokenSource(s), eng.EnforceOptions{
		RejectDuplicateKeys: true,
		MaxDepth:            opt.maxDepth(),
		MaxBytes:            opt.MaxBytes,
	})
}

type engineSourceAdapter struct{ inner eng.TokenSource }

func (s *engineSourceAdapter) NextToken() (Token, error) {
	t, err := s.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: TokenKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}
func (s *engineSourceAdapter) Location() int64 { return s.inner.Location() }

type tokenSourceAdapter struct{ inner Source }

func (a *tokenSourceAdapter) NextToken() (eng.Token, error) {
	t, err := a.inner.NextToken()
	if err != nil {
		return eng.Token{}, err
	}
	return eng.Token{Kind: eng.Kind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}
func (a *tokenSourceAdapter) Location() int64 { return a.inner.Location() }

package protoserde

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/reoring/protoserde/i18n"
	eng "github.com/reoring/protoserde/internal/engine"
)

// Issue codes
const (
	CodeTypeMismatch     = "type_mismatch"
	CodeUnknownVariant   = "unknown_variant"
	CodeInvalidBytes     = "invalid_bytes"
	CodeDuplicateField   = "duplicate_field"
	CodeUnknownField     = "unknown_field"
	CodeMissingField     = "missing_field"
	CodeInvalidEnumValue = "invalid_enum_value"
	CodeInvalidValue     = "invalid_value"
	CodeParseError       = "parse_error"
	CodeTooDeep          = "too_deep"
	CodeTruncated        = "truncated"
)

// Issue describes why a single Marshal or Unmarshal call failed.
type Issue struct {
	Path    string // JSON Pointer (for example: /pets/2/name).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: expected shape, offending token kind, etc.
	Field   string // Declared field or variant name when known.
	Value   string // Offending value (enum name or discriminant) when relevant.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
	Cause   error  // Optional: underlying error.
}

func (i *Issue) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s at %s", i.Code, i.pathOrRoot())
	if i.Message != "" {
		b.WriteString(": ")
		b.WriteString(i.Message)
	}
	if i.Value != "" {
		fmt.Fprintf(b, " (%q)", i.Value)
	}
	return b.String()
}

func (i *Issue) Unwrap() error { return i.Cause }

// Is reports whether target is a sentinel carrying the same code.
func (i *Issue) Is(target error) bool {
	t, ok := target.(*Issue)
	if !ok || t == nil {
		return false
	}
	return t.Path == "" && t.Message == "" && t.Code == i.Code
}

func (i *Issue) pathOrRoot() string {
	if i.Path == "" {
		return "/"
	}
	return i.Path
}

// Sentinels for errors.Is. They match any Issue with the same code.
var (
	ErrTypeMismatch     = &Issue{Code: CodeTypeMismatch}
	ErrUnknownVariant   = &Issue{Code: CodeUnknownVariant}
	ErrInvalidBytes     = &Issue{Code: CodeInvalidBytes}
	ErrDuplicateField   = &Issue{Code: CodeDuplicateField}
	ErrUnknownField     = &Issue{Code: CodeUnknownField}
	ErrMissingField     = &Issue{Code: CodeMissingField}
	ErrInvalidEnumValue = &Issue{Code: CodeInvalidEnumValue}
	ErrInvalidValue     = &Issue{Code: CodeInvalidValue}
	ErrParse            = &Issue{Code: CodeParseError}
	ErrTooDeep          = &Issue{Code: CodeTooDeep}
	ErrTruncated        = &Issue{Code: CodeTruncated}
)

// AsIssue extracts an Issue from an error using errors.As internally.
func AsIssue(err error) (*Issue, bool) {
	if err == nil {
		return nil, false
	}
	var iss *Issue
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func newIssue(code, path string, data map[string]string) *Issue {
	if path == "" {
		path = "/"
	}
	return &Issue{Code: code, Path: path, Message: i18n.T(code, data), Offset: -1}
}

func typeMismatch(path string, want string, tok eng.Token) *Issue {
	iss := newIssue(CodeTypeMismatch, path, map[string]string{"expected": want})
	iss.Hint = "expected " + want + ", got " + tok.Kind.String()
	iss.Offset = tok.Offset
	return iss
}

func isCode(err error, code string) bool {
	iss, ok := AsIssue(err)
	return ok && iss.Code == code
}

// toIssue maps token-level failures into a single Issue.
func toIssue(err error, path string, offset int64) *Issue {
	if iss, ok := AsIssue(err); ok {
		return iss
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		iss := newIssue(ie.Code, ie.Path, nil)
		iss.Hint = ie.Message
		iss.Offset = ie.Offset
		return iss
	}
	iss := newIssue(CodeParseError, path, nil)
	iss.Offset = offset
	iss.Cause = err
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		iss.Hint = "unexpected end of input"
	} else {
		iss.Hint = err.Error()
	}
	return iss
}

// DeclError is a single problem found while building schemas.
type DeclError struct {
	Pos     Pos
	Type    string
	Field   string
	Message string
}

func (e DeclError) Error() string {
	b := &strings.Builder{}
	if p := e.Pos.String(); p != "" {
		b.WriteString(p)
		b.WriteString(": ")
	}
	if e.Type != "" {
		b.WriteString(e.Type)
		if e.Field != "" {
			b.WriteByte('.')
			b.WriteString(e.Field)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// DeclErrors is the list of problems returned by Builder.Build.
type DeclErrors []DeclError

// Error summarizes the first few errors.
func (d DeclErrors) Error() string {
	if len(d) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(d)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(d[i].Error())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsDeclErrors extracts DeclErrors from an error using errors.As internally.
func AsDeclErrors(err error) (DeclErrors, bool) {
	if err == nil {
		return nil, false
	}
	var de DeclErrors
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

package engine

import (
	"errors"
	"io"
	"testing"
)

func toks(kinds ...Token) []Token { return kinds }

func drain(src TokenSource) error {
	for {
		_, err := src.NextToken()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// {"a":1,"a":2}
func dupObject() []Token {
	return toks(
		Token{Kind: KindBeginObject},
		Token{Kind: KindKey, String: "a"},
		Token{Kind: KindNumber, Number: "1"},
		Token{Kind: KindKey, String: "a"},
		Token{Kind: KindNumber, Number: "2"},
		Token{Kind: KindEndObject},
	)
}

func TestEnforce_DuplicateKeyRejected(t *testing.T) {
	src := WrapWithEnforcement(NewReplay(dupObject()), EnforceOptions{RejectDuplicateKeys: true})
	err := drain(src)
	var ie IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Code != CodeDuplicateKey || ie.Path != "/a" {
		t.Fatalf("unexpected issue: %+v", ie.SimpleIssue)
	}
}

func TestEnforce_DuplicateKeyAllowedWhenDisabled(t *testing.T) {
	src := WrapWithEnforcement(NewReplay(dupObject()), EnforceOptions{})
	if err := drain(src); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestEnforce_DuplicateKeyNestedPath(t *testing.T) {
	// [{"a":1,"a":2}]
	in := append([]Token{{Kind: KindBeginArray}}, dupObject()...)
	in = append(in, Token{Kind: KindEndArray})
	err := drain(WrapWithEnforcement(NewReplay(in), EnforceOptions{RejectDuplicateKeys: true}))
	var ie IssueError
	if !errors.As(err, &ie) || ie.Path != "/0/a" {
		t.Fatalf("expected duplicate at /0/a, got %v", err)
	}
}

func TestEnforce_MaxDepth(t *testing.T) {
	// {"a":{"b":{"c":1}}}
	in := toks(
		Token{Kind: KindBeginObject},
		Token{Kind: KindKey, String: "a"},
		Token{Kind: KindBeginObject},
		Token{Kind: KindKey, String: "b"},
		Token{Kind: KindBeginObject},
		Token{Kind: KindKey, String: "c"},
		Token{Kind: KindNumber, Number: "1"},
		Token{Kind: KindEndObject},
		Token{Kind: KindEndObject},
		Token{Kind: KindEndObject},
	)
	err := drain(WrapWithEnforcement(NewReplay(in), EnforceOptions{MaxDepth: 2}))
	var ie IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Code != CodeTooDeep || ie.Path != "/a/b" {
		t.Fatalf("unexpected issue: %+v", ie.SimpleIssue)
	}
}

func TestSkipAndCapture(t *testing.T) {
	// skip [1,[2,3],{"k":null}] then read the trailing true
	in := toks(
		Token{Kind: KindBeginArray},
		Token{Kind: KindNumber, Number: "1"},
		Token{Kind: KindBeginArray},
		Token{Kind: KindNumber, Number: "2"},
		Token{Kind: KindNumber, Number: "3"},
		Token{Kind: KindEndArray},
		Token{Kind: KindBeginObject},
		Token{Kind: KindKey, String: "k"},
		Token{Kind: KindNull},
		Token{Kind: KindEndObject},
		Token{Kind: KindEndArray},
		Token{Kind: KindBool, Bool: true},
	)
	src := NewReplay(in)
	first, _ := src.NextToken()
	captured, err := Capture(src, first)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if len(captured) != 11 {
		t.Fatalf("expected 11 tokens, got %d", len(captured))
	}
	next, err := src.NextToken()
	if err != nil || next.Kind != KindBool {
		t.Fatalf("expected trailing bool, got %v %v", next, err)
	}

	replay := NewReplay(captured)
	first, _ = replay.NextToken()
	if err := Skip(replay, first); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if _, err := replay.NextToken(); err != io.EOF {
		t.Fatalf("expected EOF after skip, got %v", err)
	}
}

func TestSkip_Truncated(t *testing.T) {
	src := NewReplay(toks(Token{Kind: KindBeginArray}, Token{Kind: KindNumber, Number: "1"}))
	first, _ := src.NextToken()
	if err := Skip(src, first); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

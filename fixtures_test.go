package protoserde_test

import (
	"context"
	"errors"
	"testing"

	"github.com/reoring/protoserde"
)

// testDecls covers every kind and cardinality used across the package tests.
func testDecls() []protoserde.TypeDecl {
	return []protoserde.TypeDecl{
		protoserde.EnumDecl("Color",
			protoserde.Value("RED", 0),
			protoserde.Value("GREEN", 1),
			protoserde.Value("BLUE", 2),
		),
		protoserde.MessageDecl("Cat", nil,
			protoserde.Field("name", `string, tag="1"`),
			protoserde.Field("color", `string, tag="2"`),
		),
		protoserde.MessageDecl("Dog", nil,
			protoserde.Field("name", `string, tag="1"`),
		),
		protoserde.OneofDecl("Animal",
			protoserde.Field("Cat", `message="Cat", tag="1"`),
			protoserde.Field("Dog", `message="Dog", tag="2"`),
		),
		protoserde.MessageDecl("Pet", nil,
			protoserde.Field("animal", `oneof="Animal", tags="1, 2"`),
		),
		protoserde.MessageDecl("User", nil,
			protoserde.Field("id", `int32, tag="1"`),
			protoserde.Field("name", `string, optional, tag="2"`),
		),
		protoserde.MessageDecl("Profile", nil,
			protoserde.Field("id", `int64, tag="1"`),
			protoserde.Field("color", `enumeration="Color", tag="2"`),
			protoserde.Field("avatar", `bytes, tag="3"`),
			protoserde.Field("scores", `double, repeated, tag="4"`),
			protoserde.Field("nickname", `string, optional, tag="5"`),
			protoserde.Field("owner", `message="User", optional, tag="6"`),
			protoserde.Field("active", `bool, tag="7"`),
			protoserde.Field("ratio", `float, tag="8"`),
			protoserde.Field("count", `uint32, tag="9"`),
			protoserde.Field("total", `uint64, tag="10"`),
		),
		protoserde.MessageDecl("Lenient",
			[]string{"omit_type_errors", "use_default_for_missing_fields", "ignore_unknown_fields"},
			protoserde.Field("address", `string, tag="1"`),
			protoserde.Field("is_valid", `bool, tag="2"`),
			protoserde.Field("color", `enumeration="Color", tag="3"`),
			protoserde.Field("data", `bytes, tag="4"`),
			protoserde.Field("nums", `int32, repeated, tag="5"`),
			protoserde.Field("owner", `message="User", tag="6"`),
		),
		protoserde.MessageDecl("Node", nil,
			protoserde.Field("value", `int32, tag="1"`),
			protoserde.Field("next", `message="Node", optional, tag="2"`),
		),
	}
}

func mustRegistry(t *testing.T) *protoserde.Registry {
	t.Helper()
	reg, err := protoserde.NewBuilder().Add(testDecls()...).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return reg
}

func mustUnmarshal(t *testing.T, s *protoserde.MessageSchema, js string) *protoserde.Message {
	t.Helper()
	m, err := protoserde.Unmarshal(context.Background(), s, []byte(js))
	if err != nil {
		t.Fatalf("unmarshal %s: %v", js, err)
	}
	return m
}

func mustMarshal(t *testing.T, m *protoserde.Message, opts ...protoserde.EncodeOpt) string {
	t.Helper()
	out, err := protoserde.Marshal(context.Background(), m, opts...)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(out)
}

// expectIssue asserts that err is an *Issue with the given code and path.
func expectIssue(t *testing.T, err error, sentinel error, path string) *protoserde.Issue {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", sentinel)
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected %v, got: %v", sentinel, err)
	}
	iss, ok := protoserde.AsIssue(err)
	if !ok {
		t.Fatalf("expected *Issue, got %T", err)
	}
	if path != "" && iss.Path != path {
		t.Fatalf("expected path=%s, got %s (%v)", path, iss.Path, err)
	}
	return iss
}

func get(t *testing.T, m *protoserde.Message, name string) any {
	t.Helper()
	v, ok := m.Get(name)
	if !ok {
		t.Fatalf("no field %q", name)
	}
	return v
}

package protoserde_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/reoring/protoserde"
)

func TestParseDirective_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want protoserde.Directive
	}{
		{`int32, tag="1"`, protoserde.Directive{Kind: protoserde.KindInt32, Tag: 1, HasTag: true}},
		{`string, optional, tag="2"`, protoserde.Directive{Kind: protoserde.KindString, Cardinality: protoserde.Optional, Tag: 2, HasTag: true}},
		{` double , repeated , tag = "15" `, protoserde.Directive{Kind: protoserde.KindDouble, Cardinality: protoserde.Repeated, Tag: 15, HasTag: true}},
		{`bytes="vec", tag="3"`, protoserde.Directive{Kind: protoserde.KindBytes, Tag: 3, HasTag: true}},
		{`enumeration="Color", tag="4"`, protoserde.Directive{Kind: protoserde.KindEnum, Ref: "Color", Tag: 4, HasTag: true}},
		{`message="User", optional, tag="5"`, protoserde.Directive{Kind: protoserde.KindMessage, Ref: "User", Cardinality: protoserde.Optional, Tag: 5, HasTag: true}},
		{`oneof="Animal", tags="1, 2"`, protoserde.Directive{Kind: protoserde.KindOneof, Ref: "Animal", Tags: []int32{1, 2}}},
	}
	for _, tc := range cases {
		got, err := protoserde.ParseDirective(tc.in)
		if err != nil {
			t.Fatalf("%q: unexpected err: %v", tc.in, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%q: got %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseDirective_Errors(t *testing.T) {
	cases := map[string]string{
		``:                                  "empty directive",
		`int128, tag="1"`:                   "unrecognized type",
		`int32`:                             "missing tag",
		`int32, optional, repeated, tag="1"`: "redundant modifier",
		`int32, optional, optional, tag="1"`: "redundant modifier",
		`int32, tag="1", tag="2"`:           "duplicate directive",
		`int32, string, tag="1"`:            "duplicate directive",
		`int32, tag=1`:                      "double quoted",
		`int32, tag="x"`:                    "invalid tag",
		`int32, tag="0"`:                    "invalid tag",
		`int32, packed, tag="1"`:            "unknown directive item",
		`bytes="list", tag="1"`:             "unrecognized bytes type",
		`enumeration, tag="1"`:              "requires a type name",
		`oneof="A", optional, tags="1"`:     "no cardinality modifier",
		`oneof="A", tag="1"`:                "use tags",
		`oneof="A"`:                         "missing tags",
		`int32, tags="1, 2"`:                "only valid on oneof",
		`int32, tag="1" junk`:               "unexpected text",
		`int32, , tag="1"`:                  "empty directive item",
		`tag="6", fixed64`:                  "unrecognized type",
	}
	for in, want := range cases {
		_, err := protoserde.ParseDirective(in)
		if err == nil {
			t.Fatalf("%q: expected error containing %q", in, want)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("%q: expected error containing %q, got %v", in, want, err)
		}
	}
}

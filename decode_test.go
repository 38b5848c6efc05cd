package protoserde_test

import (
	"context"
	"strings"
	"testing"

	"github.com/reoring/protoserde"
)

func TestUnmarshal_EndToEnd_NullOptional(t *testing.T) {
	user := mustRegistry(t).MustMessage("User")
	m := mustUnmarshal(t, user, `{"id":39,"name":null}`)
	if id := get(t, m, "id"); id != int32(39) {
		t.Fatalf("id: got %#v", id)
	}
	if name := get(t, m, "name"); name != nil {
		t.Fatalf("name: expected nil, got %#v", name)
	}
	if out := mustMarshal(t, m); out != `{"id":39,"name":null}` {
		t.Fatalf("re-encode: got %s", out)
	}
}

func TestUnmarshal_MissingField_StrictVsDefault(t *testing.T) {
	reg := mustRegistry(t)
	_, err := protoserde.Unmarshal(context.Background(), reg.MustMessage("User"), []byte(`{"name":"x"}`))
	iss := expectIssue(t, err, protoserde.ErrMissingField, "/id")
	if iss.Field != "id" {
		t.Fatalf("expected field id, got %q", iss.Field)
	}

	m := mustUnmarshal(t, reg.MustMessage("Lenient"), `{}`)
	if v := get(t, m, "address"); v != "" {
		t.Fatalf("address: got %#v", v)
	}
	if v := get(t, m, "is_valid"); v != false {
		t.Fatalf("is_valid: got %#v", v)
	}
	if v := get(t, m, "color"); v != int32(0) {
		t.Fatalf("color: got %#v", v)
	}
	if v := get(t, m, "nums"); len(v.([]any)) != 0 {
		t.Fatalf("nums: got %#v", v)
	}
	if v := get(t, m, "owner"); v.(*protoserde.Message) != nil {
		t.Fatalf("owner: expected unset, got %#v", v)
	}
}

func TestUnmarshal_MissingRepeatedAndOptional_NeverFail(t *testing.T) {
	profile := mustRegistry(t).MustMessage("Profile")
	m := mustUnmarshal(t, profile, `{"id":1,"color":"RED","avatar":"","active":true,"ratio":1.5,"count":3,"total":4}`)
	if v := get(t, m, "scores"); len(v.([]any)) != 0 {
		t.Fatalf("scores: got %#v", v)
	}
	if v := get(t, m, "nickname"); v != nil {
		t.Fatalf("nickname: got %#v", v)
	}
	if v := get(t, m, "owner"); v != nil {
		t.Fatalf("owner: got %#v", v)
	}
}

func TestUnmarshal_UnknownField_StrictVsIgnore(t *testing.T) {
	reg := mustRegistry(t)
	_, err := protoserde.Unmarshal(context.Background(), reg.MustMessage("User"), []byte(`{"id":1,"zzz":true}`))
	expectIssue(t, err, protoserde.ErrUnknownField, "/zzz")

	m := mustUnmarshal(t, reg.MustMessage("Lenient"), `{"zzz":{"deep":[1,{"x":null}]},"address":"a"}`)
	if v := get(t, m, "address"); v != "a" {
		t.Fatalf("address: got %#v", v)
	}
}

func TestUnmarshal_DuplicateKey_FailsUnderEveryPolicy(t *testing.T) {
	reg := mustRegistry(t)
	cases := []struct {
		schema string
		input  string
		path   string
	}{
		{"User", `{"id":1,"id":2}`, "/id"},
		{"Lenient", `{"address":"a","address":"b"}`, "/address"},
		{"Lenient", `{"is_valid":"bad","is_valid":"worse"}`, "/is_valid"},
		{"Lenient", `{"zzz":1,"zzz":2}`, "/zzz"},
		{"Lenient", `{"zzz":{"a":1,"a":2}}`, "/zzz/a"},
		{"Profile", `{"owner":{"id":1,"id":1}}`, "/owner/id"},
	}
	for _, tc := range cases {
		_, err := protoserde.Unmarshal(context.Background(), reg.MustMessage(tc.schema), []byte(tc.input))
		expectIssue(t, err, protoserde.ErrDuplicateField, tc.path)
	}
}

func TestUnmarshal_TypeMismatch_Strict(t *testing.T) {
	reg := mustRegistry(t)
	user := reg.MustMessage("User")
	cases := []struct {
		input string
		path  string
	}{
		{`{"id":"39"}`, "/id"},
		{`{"id":1.5}`, "/id"},
		{`{"id":2147483648}`, "/id"},
		{`{"id":null}`, "/id"},
		{`{"id":1,"name":7}`, "/name"},
	}
	for _, tc := range cases {
		_, err := protoserde.Unmarshal(context.Background(), user, []byte(tc.input))
		expectIssue(t, err, protoserde.ErrTypeMismatch, tc.path)
	}

	profile := reg.MustMessage("Profile")
	_, err := protoserde.Unmarshal(context.Background(), profile, []byte(`{"scores":[1,null]}`))
	expectIssue(t, err, protoserde.ErrTypeMismatch, "/scores/1")

	_, err = protoserde.Unmarshal(context.Background(), profile, []byte(`{"scores":null}`))
	expectIssue(t, err, protoserde.ErrTypeMismatch, "/scores")

	_, err = protoserde.Unmarshal(context.Background(), profile, []byte(`{"count":-1}`))
	expectIssue(t, err, protoserde.ErrTypeMismatch, "/count")
}

func TestUnmarshal_OmitTypeErrors_MasksOnlyTypeMismatch(t *testing.T) {
	lenient := mustRegistry(t).MustMessage("Lenient")

	m := mustUnmarshal(t, lenient, `{"address":null,"is_valid":"FFFF","color":1,"data":5,"nums":[1,"x",3],"owner":{"id":"bad"}}`)
	if v := get(t, m, "address"); v != "" {
		t.Fatalf("address: got %#v", v)
	}
	if v := get(t, m, "is_valid"); v != false {
		t.Fatalf("is_valid: got %#v", v)
	}
	if v := get(t, m, "color"); v != int32(0) {
		t.Fatalf("color: got %#v", v)
	}
	if v := get(t, m, "data"); len(v.([]byte)) != 0 {
		t.Fatalf("data: got %#v", v)
	}
	if v := get(t, m, "nums"); len(v.([]any)) != 0 {
		t.Fatalf("nums: got %#v", v)
	}
	if v := get(t, m, "owner"); v.(*protoserde.Message) != nil {
		t.Fatalf("owner: got %#v", v)
	}

	_, err := protoserde.Unmarshal(context.Background(), lenient, []byte(`{"color":"PURPLE"}`))
	expectIssue(t, err, protoserde.ErrUnknownVariant, "/color")

	_, err = protoserde.Unmarshal(context.Background(), lenient, []byte(`{"data":"***"}`))
	expectIssue(t, err, protoserde.ErrInvalidBytes, "/data")

	// nested strict message: missing_field is not a type error
	_, err = protoserde.Unmarshal(context.Background(), lenient, []byte(`{"owner":{}}`))
	expectIssue(t, err, protoserde.ErrMissingField, "/owner/id")
}

func TestUnmarshal_NestedUsesOwnPolicy(t *testing.T) {
	profile := mustRegistry(t).MustMessage("Profile")
	_, err := protoserde.Unmarshal(context.Background(), profile, []byte(`{"owner":{"id":1,"zzz":1}}`))
	expectIssue(t, err, protoserde.ErrUnknownField, "/owner/zzz")
}

func TestUnmarshal_TopLevelShape(t *testing.T) {
	user := mustRegistry(t).MustMessage("User")
	ctx := context.Background()

	_, err := protoserde.Unmarshal(ctx, user, []byte(`[1]`))
	expectIssue(t, err, protoserde.ErrTypeMismatch, "/")

	_, err = protoserde.Unmarshal(ctx, user, []byte(`{"id":1} {}`))
	expectIssue(t, err, protoserde.ErrParse, "")

	_, err = protoserde.Unmarshal(ctx, user, []byte(`{"id":`))
	expectIssue(t, err, protoserde.ErrParse, "")

	_, err = protoserde.Unmarshal(ctx, user, nil)
	expectIssue(t, err, protoserde.ErrParse, "")

	_, err = protoserde.Unmarshal(ctx, nil, []byte(`{}`))
	expectIssue(t, err, protoserde.ErrParse, "/")
}

func TestUnmarshal_MalformedJSON(t *testing.T) {
	user := mustRegistry(t).MustMessage("User")
	inputs := []string{
		`{,"id":39}`,
		`{"id":39,}`,
		`{"id" 39}`,
		`{"id":39 "name":null}`,
		`{"id":39}]`,
		`{"id":39},`,
	}
	drivers := []protoserde.JSONDriver{nil, protoserde.StdJSONDriver()}
	for _, drv := range drivers {
		name := "go-json"
		if drv != nil {
			name = drv.Name()
		}
		t.Run(name, func(t *testing.T) {
			if drv != nil {
				protoserde.SetJSONDriver(drv)
				defer protoserde.UseDefaultJSONDriver()
			}
			for _, in := range inputs {
				m, err := protoserde.Unmarshal(context.Background(), user, []byte(in))
				if m != nil {
					t.Fatalf("%s: expected no message", in)
				}
				expectIssue(t, err, protoserde.ErrParse, "/")

				_, err = protoserde.UnmarshalReader(context.Background(), user, strings.NewReader(in))
				expectIssue(t, err, protoserde.ErrParse, "/")
			}
		})
	}
}

func nested(depth int) string {
	var b strings.Builder
	for i := 0; i < depth; i++ {
		b.WriteString(`{"value":1,"next":`)
	}
	b.WriteString(`null`)
	for i := 0; i < depth; i++ {
		b.WriteString(`}`)
	}
	return b.String()
}

func TestUnmarshal_DepthLimit(t *testing.T) {
	node := mustRegistry(t).MustMessage("Node")
	ctx := context.Background()

	if _, err := protoserde.Unmarshal(ctx, node, []byte(nested(10))); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err := protoserde.Unmarshal(ctx, node, []byte(nested(10)), protoserde.DecodeOpt{MaxDepth: 3})
	expectIssue(t, err, protoserde.ErrTooDeep, "")

	_, err = protoserde.Unmarshal(ctx, node, []byte(nested(protoserde.DefaultMaxDepth+1)))
	expectIssue(t, err, protoserde.ErrTooDeep, "")

	m, err := protoserde.Unmarshal(ctx, node, []byte(nested(protoserde.DefaultMaxDepth+1)), protoserde.DecodeOpt{MaxDepth: -1})
	if err != nil {
		t.Fatalf("unexpected err with the limit disabled: %v", err)
	}
	if !m.Clone().Equal(m) {
		t.Fatalf("clone of a deep message should be equal")
	}
}

func TestUnmarshal_Idempotent(t *testing.T) {
	reg := mustRegistry(t)
	inputs := map[string]string{
		"Profile": `{"id":9007199254740993,"color":"BLUE","avatar":"/+I/","scores":[1.5,-2,0],"nickname":"z","owner":{"id":1,"name":"u"},"active":true,"ratio":0.1,"count":4294967295,"total":18446744073709551615}`,
		"Pet":     `{"dog":{"name":"rex"}}`,
		"Lenient": `{"address":"x","color":"GREEN","nums":[3,2,1]}`,
	}
	for name, js := range inputs {
		s := reg.MustMessage(name)
		first := mustUnmarshal(t, s, js)
		second := mustUnmarshal(t, s, mustMarshal(t, first))
		if !first.Equal(second) {
			t.Fatalf("%s: decode(encode(decode(J))) != decode(J)", name)
		}
	}
}

func TestUnmarshal_64BitValuesKeepPrecision(t *testing.T) {
	profile := mustRegistry(t).MustMessage("Profile")
	m := mustUnmarshal(t, profile, `{"id":9007199254740993,"color":"RED","avatar":"","active":false,"ratio":0,"count":0,"total":18446744073709551615}`)
	if v := get(t, m, "id"); v != int64(9007199254740993) {
		t.Fatalf("id: got %#v", v)
	}
	if v := get(t, m, "total"); v != uint64(18446744073709551615) {
		t.Fatalf("total: got %#v", v)
	}
}

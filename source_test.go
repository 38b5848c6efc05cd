package protoserde_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/reoring/protoserde"
)

func TestValueSource(t *testing.T) {
	s := mustRegistry(t).MustMessage("User")
	src, err := protoserde.ValueSource(map[string]any{"name": "amy", "id": 39})
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	m, err := protoserde.UnmarshalFrom(context.Background(), s, src)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := mustMarshal(t, m); got != `{"id":39,"name":"amy"}` {
		t.Fatalf("got %s", got)
	}

	if _, err := protoserde.ValueSource(make(chan int)); err == nil {
		t.Fatalf("expected an error for unsupported values")
	}
}

// sliceSource is a Source backed by a fixed token list.
type sliceSource struct {
	toks []protoserde.Token
	i    int
}

func (s *sliceSource) NextToken() (protoserde.Token, error) {
	if s.i >= len(s.toks) {
		return protoserde.Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func (s *sliceSource) Location() int64 { return -1 }

func TestUnmarshalFrom_CustomSource(t *testing.T) {
	s := mustRegistry(t).MustMessage("User")
	src := &sliceSource{toks: []protoserde.Token{
		{Kind: protoserde.TokenBeginObject},
		{Kind: protoserde.TokenKey, String: "id"},
		{Kind: protoserde.TokenNumber, Number: "5"},
		{Kind: protoserde.TokenKey, String: "id"},
		{Kind: protoserde.TokenNumber, Number: "6"},
		{Kind: protoserde.TokenEndObject},
	}}
	_, err := protoserde.UnmarshalFrom(context.Background(), s, src)
	expectIssue(t, err, protoserde.ErrDuplicateField, "/id")

	src = &sliceSource{toks: []protoserde.Token{
		{Kind: protoserde.TokenBeginObject},
		{Kind: protoserde.TokenKey, String: "id"},
		{Kind: protoserde.TokenNumber, Number: "5"},
	}}
	_, err = protoserde.UnmarshalFrom(context.Background(), s, src)
	expectIssue(t, err, protoserde.ErrParse, "")
}

func TestJSONDriver_Offsets(t *testing.T) {
	s := mustRegistry(t).MustMessage("User")
	in := []byte(`{"id":"x"}`)

	_, err := protoserde.Unmarshal(context.Background(), s, in)
	iss := expectIssue(t, err, protoserde.ErrTypeMismatch, "/id")
	if iss.Offset != -1 {
		t.Fatalf("go-json driver should not report offsets, got %d", iss.Offset)
	}

	protoserde.SetJSONDriver(protoserde.StdJSONDriver())
	defer protoserde.UseDefaultJSONDriver()
	_, err = protoserde.Unmarshal(context.Background(), s, in)
	iss = expectIssue(t, err, protoserde.ErrTypeMismatch, "/id")
	if iss.Offset <= 0 {
		t.Fatalf("encoding/json driver should report an offset, got %d", iss.Offset)
	}

	m := mustUnmarshal(t, s, `{"id":1,"name":"amy"}`)
	if got := mustMarshal(t, m); got != `{"id":1,"name":"amy"}` {
		t.Fatalf("got %s", got)
	}
}

func TestUnmarshalReader(t *testing.T) {
	s := mustRegistry(t).MustMessage("User")
	ctx := context.Background()
	in := `{"id":12,"name":"some long name"}`

	m, err := protoserde.UnmarshalReader(ctx, s, strings.NewReader(in))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v := get(t, m, "id"); v != int32(12) {
		t.Fatalf("got %v", v)
	}

	if _, err := protoserde.UnmarshalReader(ctx, s, strings.NewReader(in), protoserde.DecodeOpt{MaxBytes: int64(len(in))}); err != nil {
		t.Fatalf("input at the limit: %v", err)
	}

	_, err = protoserde.UnmarshalReader(ctx, s, strings.NewReader(in), protoserde.DecodeOpt{MaxBytes: 10})
	iss := expectIssue(t, err, protoserde.ErrTruncated, "/")
	if iss.Offset != 10 {
		t.Fatalf("offset: got %d", iss.Offset)
	}
}

func TestConcurrentUse(t *testing.T) {
	s := mustRegistry(t).MustMessage("Profile")
	in := `{"id":1,"color":"BLUE","avatar":"AQI=","scores":[0.5],"nickname":"n","owner":{"id":2,"name":null},"active":true,"ratio":1.5,"count":3,"total":4}`
	want := mustMarshal(t, mustUnmarshal(t, s, in))

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := protoserde.Unmarshal(context.Background(), s, []byte(in))
			if err != nil {
				errs <- err
				return
			}
			out, err := protoserde.Marshal(context.Background(), m)
			if err != nil {
				errs <- err
				return
			}
			if string(out) != want {
				errs <- fmt.Errorf("got %s want %s", out, want)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent decode: %v", err)
	}
}

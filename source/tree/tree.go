// Package tree materializes engine tokens from an in-memory JSON value tree
// (map[string]any, []any, string, bool, nil, json.Number and Go numbers).
package tree

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	eng "github.com/reoring/protoserde/internal/engine"
)

// New returns a TokenSource over v. Object keys are emitted in sorted order so
// that the token stream is deterministic.
func New(v any) (eng.TokenSource, error) {
	buf := make([]eng.Token, 0, 64)
	buf, err := appendValueTokens(buf, v)
	if err != nil {
		return nil, err
	}
	return eng.NewReplay(buf), nil
}

func appendValueTokens(out []eng.Token, v any) ([]eng.Token, error) {
	var err error
	switch x := v.(type) {
	case map[string]any:
		out = append(out, eng.Token{Kind: eng.KindBeginObject, Offset: -1})
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, eng.Token{Kind: eng.KindKey, String: k, Offset: -1})
			if out, err = appendValueTokens(out, x[k]); err != nil {
				return nil, err
			}
		}
		out = append(out, eng.Token{Kind: eng.KindEndObject, Offset: -1})
	case []any:
		out = append(out, eng.Token{Kind: eng.KindBeginArray, Offset: -1})
		for _, e := range x {
			if out, err = appendValueTokens(out, e); err != nil {
				return nil, err
			}
		}
		out = append(out, eng.Token{Kind: eng.KindEndArray, Offset: -1})
	case string:
		out = append(out, eng.Token{Kind: eng.KindString, String: x, Offset: -1})
	case bool:
		out = append(out, eng.Token{Kind: eng.KindBool, Bool: x, Offset: -1})
	case nil:
		out = append(out, eng.Token{Kind: eng.KindNull, Offset: -1})
	case json.Number:
		out = append(out, eng.Token{Kind: eng.KindNumber, Number: string(x), Offset: -1})
	case float64:
		out = append(out, eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(x, 'g', -1, 64), Offset: -1})
	case float32:
		out = append(out, eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(float64(x), 'g', -1, 32), Offset: -1})
	case int, int8, int16, int32, int64:
		out = append(out, eng.Token{Kind: eng.KindNumber, Number: strconv.FormatInt(toInt64(x), 10), Offset: -1})
	case uint, uint8, uint16, uint32, uint64:
		out = append(out, eng.Token{Kind: eng.KindNumber, Number: strconv.FormatUint(toUint64(x), 10), Offset: -1})
	default:
		return nil, fmt.Errorf("tree: unsupported value of type %T", v)
	}
	return out, nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	}
	return 0
}

func toUint64(v any) uint64 {
	switch n := v.(type) {
	case uint:
		return uint64(n)
	case uint8:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint32:
		return uint64(n)
	case uint64:
		return n
	}
	return 0
}

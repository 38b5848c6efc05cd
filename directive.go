package protoserde

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Directive is the parsed form of a field directive string.
type Directive struct {
	Kind        Kind
	Ref         string // enumeration, message or oneof name
	Cardinality Cardinality
	Tag         int32
	HasTag      bool
	Tags        []int32
}

const (
	whitespaceToken = iota
	commaToken
	equalsToken
	quotedToken
)

var (
	whitespaceMatcher = parsly.NewToken(whitespaceToken, " ", matcher.NewWhiteSpace())
	commaMatcher      = parsly.NewToken(commaToken, ",", matcher.NewTerminator(',', true))
	equalsMatcher     = parsly.NewToken(equalsToken, "=", matcher.NewTerminator('=', true))
	quotedMatcher     = parsly.NewToken(quotedToken, `" .... "`, matcher.NewQuote('"', '\\'))
)

type directiveItem struct {
	key      string
	value    string
	hasValue bool
}

// ParseDirective parses a directive such as `int32, optional, tag="1"` or
// `oneof="Pet", tags="4, 5"`. The first item names the type.
func ParseDirective(s string) (Directive, error) {
	var d Directive
	items, err := splitDirective(s)
	if err != nil {
		return d, err
	}
	if len(items) == 0 {
		return d, fmt.Errorf("empty directive")
	}
	if err := d.setType(items[0]); err != nil {
		return d, err
	}
	var hasModifier, hasTags bool
	for _, it := range items[1:] {
		switch it.key {
		case "repeated", "optional":
			if it.hasValue {
				return d, fmt.Errorf("%s takes no value", it.key)
			}
			if hasModifier {
				return d, fmt.Errorf("redundant modifier %q", it.key)
			}
			hasModifier = true
			d.Cardinality = Repeated
			if it.key == "optional" {
				d.Cardinality = Optional
			}
		case "tag":
			if d.HasTag {
				return d, fmt.Errorf("duplicate directive %q", it.key)
			}
			n, err := parseTag(it)
			if err != nil {
				return d, err
			}
			d.Tag, d.HasTag = n, true
		case "tags":
			if hasTags {
				return d, fmt.Errorf("duplicate directive %q", it.key)
			}
			if !it.hasValue {
				return d, fmt.Errorf("tags requires a quoted list")
			}
			hasTags = true
			for _, part := range strings.Split(it.value, ",") {
				n, err := parseTag(directiveItem{key: "tags", value: strings.TrimSpace(part), hasValue: true})
				if err != nil {
					return d, err
				}
				d.Tags = append(d.Tags, n)
			}
		default:
			if _, ok := typeWord(it.key); ok || isRefType(it.key) {
				return d, fmt.Errorf("duplicate directive: type %q after %q", it.key, items[0].key)
			}
			return d, fmt.Errorf("unknown directive item %q", it.key)
		}
	}
	if d.Kind == KindOneof {
		switch {
		case hasModifier:
			return d, fmt.Errorf("oneof fields take no cardinality modifier")
		case d.HasTag:
			return d, fmt.Errorf("oneof fields use tags, not tag")
		case !hasTags:
			return d, fmt.Errorf("missing tags")
		}
		return d, nil
	}
	if hasTags {
		return d, fmt.Errorf("tags is only valid on oneof fields")
	}
	if !d.HasTag {
		return d, fmt.Errorf("missing tag")
	}
	return d, nil
}

func (d *Directive) setType(it directiveItem) error {
	if k, ok := typeWord(it.key); ok {
		switch {
		case k == KindBytes && it.hasValue:
			if it.value != "bytes" && it.value != "vec" {
				return fmt.Errorf("unrecognized bytes type %q", it.value)
			}
		case k == KindMessage && it.hasValue:
			if it.value == "" {
				return fmt.Errorf("message requires a type name")
			}
			d.Ref = it.value
		case it.hasValue:
			return fmt.Errorf("%s takes no value", it.key)
		}
		d.Kind = k
		return nil
	}
	switch it.key {
	case "enumeration", "oneof":
		if !it.hasValue || it.value == "" {
			return fmt.Errorf("%s requires a type name", it.key)
		}
		d.Kind = KindEnum
		if it.key == "oneof" {
			d.Kind = KindOneof
		}
		d.Ref = it.value
		return nil
	}
	return fmt.Errorf("unrecognized type %q", it.key)
}

func typeWord(s string) (Kind, bool) {
	switch s {
	case "string":
		return KindString, true
	case "message":
		return KindMessage, true
	case "bool":
		return KindBool, true
	case "int32":
		return KindInt32, true
	case "fixed32":
		return KindFixed32, true
	case "uint32":
		return KindUint32, true
	case "int64":
		return KindInt64, true
	case "fixed64":
		return KindFixed64, true
	case "uint64":
		return KindUint64, true
	case "float":
		return KindFloat, true
	case "double":
		return KindDouble, true
	case "bytes":
		return KindBytes, true
	}
	return KindInvalid, false
}

func isRefType(s string) bool { return s == "enumeration" || s == "oneof" }

func parseTag(it directiveItem) (int32, error) {
	if !it.hasValue {
		return 0, fmt.Errorf("%s requires a quoted number", it.key)
	}
	n, err := strconv.ParseInt(it.value, 10, 32)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", it.key, it.value)
	}
	return int32(n), nil
}

// splitDirective breaks s into comma separated items. Values are double quoted
// and may contain commas.
func splitDirective(s string) ([]directiveItem, error) {
	var items []directiveItem
	cursor := parsly.NewCursor("", []byte(s), 0)
	for cursor.Pos < len(cursor.Input) {
		rest := cursor.Input[cursor.Pos:]
		if len(bytes.TrimSpace(rest)) == 0 {
			break
		}
		eqIndex := bytes.IndexByte(rest, '=')
		commaIndex := bytes.IndexByte(rest, ',')
		var it directiveItem
		switch {
		case eqIndex != -1 && (commaIndex == -1 || eqIndex < commaIndex):
			match := cursor.MatchAfterOptional(whitespaceMatcher, equalsMatcher)
			if match.Code != equalsToken {
				return nil, fmt.Errorf("malformed directive item at %d", cursor.Pos)
			}
			text := match.Text(cursor)
			it.key = strings.TrimSpace(text[:len(text)-1])
			match = cursor.MatchAfterOptional(whitespaceMatcher, quotedMatcher)
			if match.Code != quotedToken {
				return nil, fmt.Errorf("value of %q must be double quoted", it.key)
			}
			value, err := strconv.Unquote(match.Text(cursor))
			if err != nil {
				return nil, fmt.Errorf("value of %q: %w", it.key, err)
			}
			it.value, it.hasValue = value, true
			if err := expectSeparator(cursor, it.key); err != nil {
				return nil, err
			}
		case commaIndex != -1:
			match := cursor.MatchAfterOptional(whitespaceMatcher, commaMatcher)
			if match.Code != commaToken {
				return nil, fmt.Errorf("malformed directive item at %d", cursor.Pos)
			}
			text := match.Text(cursor)
			it.key = strings.TrimSpace(text[:len(text)-1])
		default:
			it.key = strings.TrimSpace(string(rest))
			cursor.Pos = len(cursor.Input)
		}
		if it.key == "" {
			return nil, fmt.Errorf("empty directive item")
		}
		items = append(items, it)
	}
	return items, nil
}

// expectSeparator consumes the comma after a quoted value, or the end of input.
func expectSeparator(cursor *parsly.Cursor, key string) error {
	rest := cursor.Input[cursor.Pos:]
	if len(bytes.TrimSpace(rest)) == 0 {
		cursor.Pos = len(cursor.Input)
		return nil
	}
	match := cursor.MatchAfterOptional(whitespaceMatcher, commaMatcher)
	if match.Code != commaToken {
		return fmt.Errorf("unexpected text after value of %q", key)
	}
	text := match.Text(cursor)
	if strings.TrimSpace(text[:len(text)-1]) != "" {
		return fmt.Errorf("unexpected text after value of %q", key)
	}
	return nil
}

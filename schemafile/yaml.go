package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/protoserde"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

func parseYAML(data []byte) (document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return document{}, err
	}
	if err := checkDuplicateKeys(&root); err != nil {
		return document{}, err
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return document{}, nil
		}
		return document{}, err
	}
	annotate(&doc, &root)
	return doc, nil
}

func checkDuplicateKeys(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if pos, dup := first[k.Value]; dup {
				return &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[k.Value] = [2]int{k.Line, k.Column}
		}
	}
	for _, c := range n.Content {
		if err := checkDuplicateKeys(c); err != nil {
			return err
		}
	}
	return nil
}

// annotate copies node positions onto the decoded document. Sequence items
// line up one to one with the decoded slices.
func annotate(doc *document, root *yaml.Node) {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return
	}
	types := mappingValue(root.Content[0], "types")
	if types == nil || types.Kind != yaml.SequenceNode {
		return
	}
	for i, item := range types.Content {
		if i >= len(doc.Types) {
			break
		}
		t := &doc.Types[i]
		t.pos = nodePos(item)
		for j, n := range sequence(item, "fields") {
			if j < len(t.Fields) {
				t.Fields[j].pos = nodePos(n)
			}
		}
		for j, n := range sequence(item, "variants") {
			if j < len(t.Variants) {
				t.Variants[j].pos = nodePos(n)
			}
		}
		for j, n := range sequence(item, "values") {
			if j < len(t.Values) {
				t.Values[j].pos = nodePos(n)
			}
		}
	}
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func sequence(n *yaml.Node, key string) []*yaml.Node {
	v := mappingValue(n, key)
	if v == nil || v.Kind != yaml.SequenceNode {
		return nil
	}
	return v.Content
}

func nodePos(n *yaml.Node) protoserde.Pos {
	return protoserde.Pos{Line: n.Line, Col: n.Column}
}

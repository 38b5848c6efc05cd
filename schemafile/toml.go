package schemafile

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// parseTOML decodes a document written as [[types]] tables. Keys that do not
// map onto the document shape are rejected.
func parseTOML(data []byte) (document, error) {
	var doc document
	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		return document{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return document{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return doc, nil
}

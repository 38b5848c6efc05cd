package schemafile

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
)

// parseJSONC strips comments and trailing commas, then decodes strictly.
func parseJSONC(data []byte) (document, error) {
	stripped := jsonc.ToJSON(data)

	var doc document
	dec := json.NewDecoder(bytes.NewReader(stripped))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return document{}, fmt.Errorf("parsing declarations: %w", err)
	}
	return doc, nil
}

package events

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema describes the document Encode produces.
//
//go:embed schema.json
var Schema string

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// Validate checks serialized output against Schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("document does not match schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}

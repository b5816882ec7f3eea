package change

import _ "embed"

// SchemaJSON is the JSON Schema of the change input document.
//
//go:embed change-schema.json
var SchemaJSON []byte

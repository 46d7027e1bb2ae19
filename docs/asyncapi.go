package docs

import _ "embed"

// AsyncAPISpec describes the browser websocket event surface served at
// /asyncapi.yaml.
//
//go:embed asyncapi.yaml
var AsyncAPISpec []byte

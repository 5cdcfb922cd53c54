package sqlite

import (
	_ "embed"
	"encoding/json"
)

// schemaSQL creates the tables. Elements keep their insertion sequence so
// Fetch returns records in the order they were first stored; properties
// keep their ordinal so each element comes back in its original property
// order.
//
//go:embed schema.sql
var schemaSQL string

// JSONL file names in DataDir.
const (
	elementsJSONL   = "elements.jsonl"
	propertiesJSONL = "element_properties.jsonl"
)

// elementJSON is one line of elements.jsonl.
type elementJSON struct {
	ElementID string `json:"element_id"`
	Class     string `json:"class"`
	Seq       int64  `json:"seq"`
	CreatedAt string `json:"created_at"`
}

// propertyJSON is one line of element_properties.jsonl. Value holds the
// payload in the form produced by ply.EncodeValue.
type propertyJSON struct {
	ElementID string          `json:"element_id"`
	Name      string          `json:"name"`
	Ordinal   int             `json:"ordinal"`
	Type      string          `json:"type"`
	Value     json.RawMessage `json:"value"`
}

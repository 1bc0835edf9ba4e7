package container

import (
	"fmt"

	"github.com/hamba/avro/v2"
)

// Schema is a parsed schema descriptor for container records.
type Schema = avro.Schema

// ParseSchema parses an Avro schema declaration.
func ParseSchema(text string) (Schema, error) {
	schema, err := avro.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("container: parsing schema: %w", err)
	}
	return schema, nil
}

// MustParseSchema is ParseSchema for schemas known to be valid; it panics
// on a parse error.
func MustParseSchema(text string) Schema {
	schema, err := ParseSchema(text)
	if err != nil {
		panic(err)
	}
	return schema
}

package hlt

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

//go:embed constants.schema.json
var constantsSchemaJSON []byte

var (
	constantsSchemaOnce sync.Once
	constantsSchema     *jsonschema.Schema
	constantsSchemaErr  error
)

func loadConstantsSchema() (*jsonschema.Schema, error) {
	constantsSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("constants.schema.json", bytes.NewReader(constantsSchemaJSON)); err != nil {
			constantsSchemaErr = err
			return
		}
		constantsSchema, constantsSchemaErr = c.Compile("constants.schema.json")
	})
	return constantsSchema, constantsSchemaErr
}

// ParseConstants validates the engine's constants line and decodes it on top
// of the standard defaults, so keys the engine omits keep their usual values.
func ParseConstants(line []byte) (halite.Constants, error) {
	schema, err := loadConstantsSchema()
	if err != nil {
		return halite.Constants{}, fmt.Errorf("load constants schema: %w", err)
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return halite.Constants{}, fmt.Errorf("%w: constants: %v", ErrProtocol, err)
	}
	if err := schema.Validate(raw); err != nil {
		return halite.Constants{}, fmt.Errorf("%w: constants: %v", ErrProtocol, err)
	}
	c := halite.DefaultConstants()
	if err := json.Unmarshal(line, &c); err != nil {
		return halite.Constants{}, fmt.Errorf("%w: constants: %v", ErrProtocol, err)
	}
	return c, nil
}

// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseResult is the outcome of a successful parse.
type ParseResult[T any] struct {
	// Value is the decoded struct.
	Value *T
	// Unified is the schema-unified CUE value, for callers needing fields
	// the Go struct does not carry.
	Unified cue.Value
}

// ParseAndDecode validates data against the definition at schemaPath in
// schema (e.g. "#Module") and decodes the result into a T. Schema failures
// are returned as a *SchemaError naming the offending fields.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	definition, err := lookupDefinition(ctx, schema, schemaPath)
	if err != nil {
		return nil, err
	}

	input := ctx.CompileBytes(data, cue.Filename(o.filename))
	if input.Err() != nil {
		return nil, FormatError(input.Err(), o.filename)
	}

	unified := definition.Unify(input)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, FormatError(err, o.filename)
	}

	result := new(T)
	if err := unified.Decode(result); err != nil {
		return nil, FormatError(err, o.filename)
	}
	return &ParseResult[T]{Value: result, Unified: unified}, nil
}

// lookupDefinition compiles schema and returns the definition at path.
// Failures here are programming errors in the embedded schema.
func lookupDefinition(ctx *cue.Context, schema []byte, path string) (cue.Value, error) {
	compiled := ctx.CompileBytes(schema)
	if err := compiled.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", err)
	}
	definition := compiled.LookupPath(cue.ParsePath(path))
	if err := definition.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", path, err)
	}
	return definition, nil
}

// ParseAndDecodeString is ParseAndDecode with the schema given as a string,
// the form produced by //go:embed into a string variable.
func ParseAndDecodeString[T any](schema string, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	return ParseAndDecode[T]([]byte(schema), data, schemaPath, opts...)
}

// ParseFile reads path and parses it with ParseAndDecodeString, using path
// as the file name in errors.
func ParseFile[T any](schema, path, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseAndDecodeString[T](schema, data, schemaPath, append([]Option{WithFilename(path)}, opts...)...)
}

// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE parsing flow shared by module descriptors
// and the configuration file:
//
//  1. Compile the embedded schema
//  2. Compile the user file and unify it with the schema definition
//  3. Validate and decode into a Go struct
//
// # Usage
//
//	//go:embed module_schema.cue
//	var schema string
//
//	result, err := cueutil.ParseAndDecodeString[Descriptor](
//	    schema,
//	    data,
//	    "#Module",
//	    cueutil.WithFilename("module.cue"),
//	)
//	if err != nil {
//	    return nil, err // includes the CUE path of the offending field
//	}
//	return result.Value, nil
package cueutil

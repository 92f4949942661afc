// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrFileTooLarge is returned when an input exceeds the parse size limit.
var ErrFileTooLarge = errors.New("file too large")

type (
	// ValidationError is one failed constraint of a parsed file. It is used
	// for CUE schema failures and for Go-side checks the schema cannot
	// express (uniqueness across list entries, identifier syntax).
	ValidationError struct {
		// FilePath is the file being validated.
		FilePath string
		// CUEPath is the field the error refers to (e.g. "targets[1].name").
		CUEPath string
		// Message describes the problem.
		Message string
	}

	// SchemaError groups the failures CUE reported for one file.
	SchemaError struct {
		FilePath string
		Issues   []*ValidationError
	}

	// FileTooLargeError wraps ErrFileTooLarge.
	FileTooLargeError struct {
		FilePath string
		Size     int64
		Limit    int64
	}
)

func (e *ValidationError) Error() string {
	return e.FilePath + ": " + e.detail()
}

// detail is the message without the file name.
func (e *ValidationError) detail() string {
	if e.CUEPath == "" {
		return e.Message
	}
	return e.CUEPath + ": " + e.Message
}

// Error lists the issues, one per line when there are several.
func (e *SchemaError) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0].Error()
	}
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = issue.detail()
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(lines, "\n  "))
}

// Unwrap exposes the individual issues to errors.As.
func (e *SchemaError) Unwrap() []error {
	errs := make([]error, len(e.Issues))
	for i, issue := range e.Issues {
		errs[i] = issue
	}
	return errs
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: file size %d bytes exceeds maximum %d bytes", e.FilePath, e.Size, e.Limit)
}

// Unwrap returns ErrFileTooLarge for errors.Is() compatibility.
func (e *FileTooLargeError) Unwrap() error { return ErrFileTooLarge }

// FormatError converts a CUE error into a *SchemaError whose issues carry
// the field path of each failure, e.g.
//
//	module.cue: targets[0].depends: expected list, got string
//
// Errors that are not CUE errors are wrapped with the file name.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	schemaErr := &SchemaError{FilePath: filePath, Issues: make([]*ValidationError, 0, len(cueErrs))}
	for _, ce := range cueErrs {
		path := formatPath(cueerrors.Path(ce))
		msg := ce.Error()
		// CUE may repeat the path in front of the message.
		if path != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		}
		schemaErr.Issues = append(schemaErr.Issues, &ValidationError{FilePath: filePath, CUEPath: path, Message: msg})
	}
	return schemaErr
}

// formatPath turns ["targets", "0", "name"] into "targets[0].name".
func formatPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		switch {
		case i == 0:
			sb.WriteString(part)
		case isIndex(part):
			sb.WriteString("[" + part + "]")
		default:
			sb.WriteString("." + part)
		}
	}
	return sb.String()
}

func isIndex(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}

// CheckFileSize returns a *FileTooLargeError when data is larger than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if size := int64(len(data)); size > maxSize {
		return &FileTooLargeError{FilePath: filename, Size: size, Limit: maxSize}
	}
	return nil
}

// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// FormatText renders reports as styled terminal text.
	FormatText OutputFormat = "text"
	// FormatJSON renders reports as indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatYAML renders reports as YAML.
	FormatYAML OutputFormat = "yaml"

	// DefaultRepositoryPath is the index looked up when none is configured.
	DefaultRepositoryPath RepositoryPath = "repository.toml"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidRepositoryPath is returned when a RepositoryPath is blank.
	ErrInvalidRepositoryPath = errors.New("invalid repository path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError wraps ErrInvalidColorScheme.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// OutputFormat selects how reports are printed.
	OutputFormat string

	// InvalidOutputFormatError wraps ErrInvalidOutputFormat.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// RepositoryPath is the location of a repository index file.
	RepositoryPath string

	// InvalidRepositoryPathError wraps ErrInvalidRepositoryPath.
	InvalidRepositoryPathError struct {
		Value RepositoryPath
	}

	// InvalidConfigError collects the field errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Repository is the index used to resolve imports.
		Repository RepositoryPath `json:"repository" mapstructure:"repository"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Report sets report defaults for the CLI.
		Report ReportConfig `json:"report" mapstructure:"report"`

		// source is the file the configuration was read from, if any.
		source string
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}

	// ReportConfig sets report defaults.
	ReportConfig struct {
		// Format is the default output format of report commands.
		Format OutputFormat `json:"format" mapstructure:"format"`
		// IncludeImports selects available (true) or local (false) views by default.
		IncludeImports bool `json:"include_imports" mapstructure:"include_imports"`
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Repository: DefaultRepositoryPath,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
		Report: ReportConfig{
			Format:         FormatText,
			IncludeImports: true,
		},
	}
}

// Source returns the file the configuration was loaded from, or "" when
// only defaults apply.
func (c *Config) Source() string {
	return c.source
}

// Validate returns an *InvalidConfigError listing every invalid field.
func (c *Config) Validate() error {
	if valid, errs := c.IsValid(); !valid {
		return errs[0]
	}
	return nil
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, check := range []func() (bool, []error){
		c.Repository.IsValid,
		c.UI.ColorScheme.IsValid,
		c.Report.Format.IsValid,
	} {
		if valid, fieldErrs := check(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig and the field errors, so errors.Is
// matches both the sentinel and each field's own sentinel.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is one of the defined formats.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: text, json, yaml)", e.Value)
}

// Unwrap returns ErrInvalidOutputFormat for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// String returns the string representation of the RepositoryPath.
func (p RepositoryPath) String() string { return string(p) }

// IsValid returns whether the RepositoryPath is non-blank.
func (p RepositoryPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidRepositoryPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRepositoryPathError.
func (e *InvalidRepositoryPathError) Error() string {
	return fmt.Sprintf("invalid repository path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidRepositoryPath for errors.Is() compatibility.
func (e *InvalidRepositoryPathError) Unwrap() error { return ErrInvalidRepositoryPath }

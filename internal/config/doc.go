// SPDX-License-Identifier: MPL-2.0

// Package config handles modreport configuration using Viper with CUE as the file format.
//
// Configuration is loaded from config.cue in the modreport configuration
// directory ($XDG_CONFIG_HOME/modreport on Linux, ~/Library/Application
// Support/modreport on macOS, %APPDATA%\modreport on Windows), falling back
// to ./config.cue, or from an explicit --config path. Files are validated
// against the embedded config_schema.cue before being merged over the
// defaults; MODREPORT_* environment variables override both.
package config

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package pkgfs

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the
// behavior of the filesystem operations.
//
// The configuration options can be adjusted using the option pattern style.
type Config struct {
	// checksum decides if the sha256 of the raw archive bytes is calculated
	// during extraction
	checksum bool

	// continueOnError decides if the extraction should be continued even if
	// an entry failed to extract
	continueOnError bool

	// continueOnUnsupportedFiles offers the option to enable/disable skipping
	// unsupported archive entries, e.g., FIFO, block or character devices
	continueOnUnsupportedFiles bool

	// customCreateDirMode is the file mode for created directories, that are
	// not defined in the archive (respecting umask)
	customCreateDirMode fs.FileMode

	// logger stream for the operations
	logger logger

	// maxInputSize is the maximum size of an archive input.
	// Set value to -1 to disable the check.
	maxInputSize int64

	// telemetryHook is a function to consume telemetry data after a finished
	// extraction.
	// Important: do not adjust this value after extraction started
	telemetryHook TelemetryHook
}

// Checksum returns true if the sha256 of the raw archive bytes should be
// calculated during extraction.
func (c *Config) Checksum() bool {
	return c.checksum
}

// ContinueOnError returns true if the extraction should continue after a
// failed archive entry.
func (c *Config) ContinueOnError() bool {
	return c.continueOnError
}

// ContinueOnUnsupportedFiles returns true if unsupported archive entries,
// e.g., FIFO, block or character devices, should be skipped.
func (c *Config) ContinueOnUnsupportedFiles() bool {
	return c.continueOnUnsupportedFiles
}

// CustomCreateDirMode returns the file mode for created directories,
// that are not defined in the archive. (respecting umask)
func (c *Config) CustomCreateDirMode() fs.FileMode {
	return c.customCreateDirMode
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxInputSize returns the maximum size of an archive input.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return func(ctx context.Context, d *TelemetryData) {
			// noop
		}
	}
	return c.telemetryHook
}

const (
	defaultChecksum                   = false         // no checksum calculation
	defaultContinueOnError            = false         // stop on error and return error
	defaultContinueOnUnsupportedFiles = false         // stop on unsupported entries and return error
	defaultCustomCreateDirMode        = 0755          // default directory permissions rwxr-xr-x
	defaultMaxInputSize               = 1 << (10 * 3) // 1 Gb
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		checksum:                   defaultChecksum,
		continueOnError:            defaultContinueOnError,
		continueOnUnsupportedFiles: defaultContinueOnUnsupportedFiles,
		customCreateDirMode:        defaultCustomCreateDirMode,
		logger:                     defaultLogger,
		maxInputSize:               defaultMaxInputSize,
		telemetryHook:              defaultTelemetryHook,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithChecksum options pattern function to enable/disable the calculation
// of the sha256 checksum over the raw archive bytes during extraction. The
// checksum covers the original input, not the extracted content.
func WithChecksum(calculate bool) ConfigOption {
	return func(c *Config) {
		c.checksum = calculate
	}
}

// WithContinueOnError options pattern function to continue on error during
// extraction. If set to true, the error is logged and the extraction
// continues. If set to false, the extraction stops and returns the error.
func WithContinueOnError(yes bool) ConfigOption {
	return func(c *Config) {
		c.continueOnError = yes
	}
}

// WithContinueOnUnsupportedFiles options pattern function to
// enable/disable skipping unsupported archive entries. An unsupported entry
// is an entry that cannot be materialized on the filesystem, e.g., a FIFO,
// block or character device.
func WithContinueOnUnsupportedFiles(ctd bool) ConfigOption {
	return func(c *Config) {
		c.continueOnUnsupportedFiles = ctd
	}
}

// WithCustomCreateDirMode options pattern function to set the file mode
// for created directories, that are not defined in the archive.
// (respecting umask)
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateDirMode = mode
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxInputSize options pattern function to set the maximum size of
// an archive input. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithTelemetryHook options pattern function to set a telemetry hook that
// consumes the [TelemetryData] after a finished extraction.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}

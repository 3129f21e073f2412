// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package pkgfs provides the filesystem primitives used by package fetch
// pipelines: recursive folder copies, recursive modification-time lookups
// and extraction of downloaded archives into a destination directory.
//
// All operations are stateless free functions. The archive type is
// determined from the magic bytes of the input, with support for zip and
// gzip-compressed tar archives. Configuration is done using the [Config]
// option pattern, which can be used to set the logger, the telemetry hook,
// the checksum calculation and the maximum input size. Telemetry data for
// extractions is captured in [TelemetryData] and emitted through the
// configured [TelemetryHook].
package pkgfs

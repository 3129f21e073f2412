// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package pkgfs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	// ErrUnsupportedArchiveType is returned if the input is neither a zip
	// archive nor gzip compressed, based on its magic bytes. Inputs shorter
	// than the magic prefix are reported the same way.
	ErrUnsupportedArchiveType = errors.New("unsupported archive type")

	// ErrMaxInputSizeExceeded is returned if the input is larger than the
	// configured maximum input size.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")
)

// Result describes the outcome of an extraction.
type Result struct {
	// ArchiveRoot is the path of the first directory found at the top level
	// of the destination after extraction, or empty if there is none. Fetch
	// pipelines rely on the convention that a package archive contains
	// exactly one top-level folder; with multiple top-level directories the
	// listing order decides, which is not guaranteed to be stable.
	ArchiveRoot string

	// Checksum is the sha256 of the raw archive bytes in lowercase hex. It
	// is only set if requested via [WithChecksum] and covers the original
	// input, not the extracted content.
	Checksum string
}

// Unpack extracts the archive read from src into the destination folder dst.
// The destination is created if it does not exist, pre-existing content is
// kept and extraction merges into it.
//
// The input is buffered fully in memory, bounded by [Config.MaxInputSize],
// and its type is determined from the magic bytes: zip archives and gzip
// compressed tar archives are supported, anything else fails with
// [ErrUnsupportedArchiveType].
//
// The checksum, if requested, is calculated before the type dispatch, so it
// is present in the returned [Result] even if the type is unsupported or the
// extraction fails afterwards.
//
// [WithContinueOnError] applies to single archive entries only. Failures to
// create the destination, to read the input or to list the destination are
// always returned.
//
// The extraction runs to completion, ctx is only handed to the telemetry
// hook.
func Unpack(ctx context.Context, src io.Reader, dst string, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	// prepare telemetry data collection and emit
	td := &TelemetryData{}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	if err := os.MkdirAll(dst, cfg.CustomCreateDirMode().Perm()); err != nil {
		return nil, recordError(td, "cannot create destination directory", err)
	}

	// buffer the whole input: zip needs random access and the checksum
	// covers the raw bytes
	limited := newLimitErrorReader(src, cfg.MaxInputSize())
	defer captureInputSize(td, limited)
	buf, err := io.ReadAll(limited)
	if err != nil {
		return nil, recordError(td, "cannot read archive", err)
	}

	res := &Result{}
	if cfg.Checksum() {
		digest := sha256.Sum256(buf)
		res.Checksum = hex.EncodeToString(digest[:])
	}

	switch {
	case IsZip(buf):
		td.ExtractedType = fileExtensionZip
		if err := unpackZip(dst, buf, cfg, td); err != nil {
			return res, err
		}
	case IsGZip(buf):
		td.ExtractedType = fileExtensionTarGZip
		if err := unpackTarGZip(dst, buf, cfg, td); err != nil {
			return res, err
		}
	default:
		// distinct from i/o failures and never reported as an empty
		// extraction
		return res, recordError(td, "cannot determine archive type", ErrUnsupportedArchiveType)
	}

	root, err := firstSubdir(dst)
	if err != nil {
		return res, recordError(td, "cannot list destination directory", err)
	}
	res.ArchiveRoot = root

	return res, nil
}

// firstSubdir returns the path of the first immediate child of dst that is a
// directory, in directory listing order, or empty if there is none.
func firstSubdir(dst string) (string, error) {
	entries, err := os.ReadDir(dst)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return filepath.Join(dst, entry.Name()), nil
		}
	}
	return "", nil
}

// matchesMagicBytes checks if data matches one of the provided magic byte
// patterns at the given offset. Inputs shorter than a pattern never match.
func matchesMagicBytes(data []byte, offset int, patterns [][]byte) bool {
	for _, pattern := range patterns {
		if offset+len(pattern) > len(data) {
			continue
		}
		if bytes.Equal(pattern, data[offset:offset+len(pattern)]) {
			return true
		}
	}
	return false
}

// recordError stores err in the telemetry data and returns it wrapped. It
// is used for failures of the extraction itself, which are propagated
// unconditionally; [Config.ContinueOnError] only applies to single archive
// entries.
func recordError(td *TelemetryData, msg string, err error) error {
	td.ExtractionErrors++
	td.LastExtractionError = fmt.Errorf("%s: %w", msg, err)
	return td.LastExtractionError
}

// handleError increases the error counter, sets the latest error and
// decides if the extraction should continue with the next archive entry.
// If the extraction should not continue, the error is returned, otherwise
// it is logged and nil is returned.
func handleError(cfg *Config, td *TelemetryData, msg string, err error) error {
	// increase error counter and store the last error
	td.ExtractionErrors++
	td.LastExtractionError = fmt.Errorf("%s: %w", msg, err)

	// log error and continue extraction
	if cfg.ContinueOnError() {
		cfg.Logger().Error(msg, "error", err)
		return nil
	}

	return td.LastExtractionError
}

// handleUnsupportedFile records the unsupported archive entry name and
// decides if extraction should continue.
func handleUnsupportedFile(cfg *Config, td *TelemetryData, name string) error {
	if cfg.ContinueOnUnsupportedFiles() {
		td.UnsupportedFiles++
		td.LastUnsupportedFile = name
		cfg.Logger().Warn("skipped unsupported entry", "name", name)
		return nil
	}

	return handleError(cfg, td, "cannot extract entry", fmt.Errorf("unsupported entry type: %s", name))
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package pkgfs

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
)

// fileExtensionZip is the file extension for zip files.
const fileExtensionZip = "zip"

// magicBytesZip contains the magic bytes for a zip archive.
// reference: https://golang.org/pkg/archive/zip/
var magicBytesZip = [][]byte{
	{0x50, 0x4B, 0x03, 0x04},
}

// IsZip checks if data starts with the magic bytes of a zip archive.
func IsZip(data []byte) bool {
	return matchesMagicBytes(data, 0, magicBytesZip)
}

// unpackZip reads a zip archive from the in-memory buffer src and extracts
// the contents to dst, preserving the archive-internal paths.
func unpackZip(dst string, src []byte, cfg *Config, td *TelemetryData) error {

	// log extraction
	cfg.Logger().Info("extracting zip")

	reader, err := zip.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return handleError(cfg, td, "cannot create zip reader", err)
	}

	for _, f := range reader.File {
		mode := f.Mode()

		switch {
		case f.FileInfo().IsDir():
			if err := createDir(dst, f.Name, mode, cfg); err != nil {
				if err := handleError(cfg, td, "cannot create directory", err); err != nil {
					return err
				}
				continue
			}
			td.ExtractedDirs++

		case mode&os.ModeSymlink != 0:
			// the symlink target is stored as the entry content
			linkname, err := zipEntryContent(f)
			if err != nil {
				if err := handleError(cfg, td, "cannot read symlink target", err); err != nil {
					return err
				}
				continue
			}
			if err := createSymlink(dst, f.Name, linkname, cfg); err != nil {
				if err := handleError(cfg, td, "cannot create symlink", err); err != nil {
					return err
				}
				continue
			}
			td.ExtractedSymlinks++

		case mode.IsRegular():
			rc, err := f.Open()
			if err != nil {
				if err := handleError(cfg, td, "cannot open zip entry", err); err != nil {
					return err
				}
				continue
			}
			n, err := createFile(dst, f.Name, rc, mode, cfg)
			rc.Close()
			td.ExtractionSize += n
			if err != nil {
				if err := handleError(cfg, td, "cannot create file", err); err != nil {
					return err
				}
				continue
			}
			td.ExtractedFiles++

		default:
			if err := handleUnsupportedFile(cfg, td, f.Name); err != nil {
				return err
			}
		}
	}

	return nil
}

// zipEntryContent returns the full content of the zip entry f.
func zipEntryContent(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

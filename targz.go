// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package pkgfs

import (
	"archive/tar"
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// fileExtensionTarGZip is the file extension for tgz files, which are tar
// archives compressed with gzip.
const fileExtensionTarGZip = "tar.gz"

// magicBytesGZip are the magic bytes for gzip compressed files.
var magicBytesGZip = [][]byte{
	{0x1f, 0x8b},
}

// IsGZip checks if data starts with the magic bytes for gzip compressed
// files.
func IsGZip(data []byte) bool {
	return matchesMagicBytes(data, 0, magicBytesGZip)
}

// unpackTarGZip decompresses the in-memory buffer src with gzip and unpacks
// the contained tar archive to dst, preserving the archive-internal paths.
func unpackTarGZip(dst string, src []byte, cfg *Config, td *TelemetryData) error {

	// log extraction
	cfg.Logger().Info("extracting tar.gz")

	gz, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return handleError(cfg, td, "cannot create gzip reader", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return handleError(cfg, td, "cannot read tar header", err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := createDir(dst, hdr.Name, hdr.FileInfo().Mode(), cfg); err != nil {
				if err := handleError(cfg, td, "cannot create directory", err); err != nil {
					return err
				}
				continue
			}
			td.ExtractedDirs++

		case tar.TypeReg:
			n, err := createFile(dst, hdr.Name, tr, hdr.FileInfo().Mode(), cfg)
			td.ExtractionSize += n
			if err != nil {
				if err := handleError(cfg, td, "cannot create file", err); err != nil {
					return err
				}
				continue
			}
			td.ExtractedFiles++

		case tar.TypeSymlink:
			if err := createSymlink(dst, hdr.Name, hdr.Linkname, cfg); err != nil {
				if err := handleError(cfg, td, "cannot create symlink", err); err != nil {
					return err
				}
				continue
			}
			td.ExtractedSymlinks++

		case tar.TypeXGlobalHeader:
			// pax metadata, e.g. from git archive, carries no filesystem entry
			continue

		default:
			if err := handleUnsupportedFile(cfg, td, hdr.Name); err != nil {
				return err
			}
		}
	}
}

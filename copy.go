// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package pkgfs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFolder copies the whole content of the folder src into the folder dst,
// recreating the directory structure and copying file contents and
// permissions. Missing directories below dst are created, existing files are
// overwritten. The source tree is never modified.
//
// The copy stops at the first traversal, read or write error. There is no
// rollback, the destination may be partially populated when an error is
// returned.
func CopyFolder(src string, dst string, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}

	cfg.Logger().Info("copying folder", "src", src, "dst", dst)

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		outPath := filepath.Join(dst, rel)

		if d.IsDir() {
			if err := os.MkdirAll(outPath, cfg.CustomCreateDirMode().Perm()); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			return nil
		}

		// non-directory entries, including symlinks to files, are copied by
		// content with the permissions of what the path resolves to
		cfg.Logger().Debug("copying file", "path", path)
		return copyFile(path, outPath)
	})
}

// copyFile copies the content and permissions of the file src to dst.
// Symlinks are followed, the target content is copied.
func copyFile(src string, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	// the open mode only applies on creation, align overwritten files as well
	if err := dstFile.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	return nil
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package pkgfs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// entryPath converts the archive-internal name to an os-specific path below
// dst and rejects names that would escape the destination directory, i.e.,
// absolute names or names with path traversal.
func entryPath(dst string, name string) (string, error) {
	// check if a name is provided
	if len(name) == 0 {
		return "", fmt.Errorf("cannot create entry without name")
	}

	// adjust path to be os specific
	parts := strings.Split(name, "/")
	name = filepath.Join(parts...)

	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute path in archive: %s", name)
	}

	path := filepath.Join(dst, name)
	base := filepath.Clean(dst)
	if path != base && !strings.HasPrefix(path, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal detected: %s", name)
	}

	return path, nil
}

// createDir creates the directory name below dst with the specified mode.
// If the directory already exists, nothing is done. Missing parent
// directories are created with the same mode.
func createDir(dst string, name string, mode fs.FileMode, cfg *Config) error {
	path, err := entryPath(dst, name)
	if err != nil {
		return err
	}

	// some archive writers store directories without permission bits
	if mode.Perm() == 0 {
		mode = cfg.CustomCreateDirMode()
	}

	if err := os.MkdirAll(path, mode.Perm()); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return nil
}

// createFile creates the file name below dst with src as content. An
// existing file is overwritten, extraction merges into the destination.
// Missing parent directories are created implicitly, since not all archive
// writers emit directory entries. Returns the number of bytes written.
func createFile(dst string, name string, src io.Reader, mode fs.FileMode, cfg *Config) (int64, error) {
	path, err := entryPath(dst, name)
	if err != nil {
		return 0, err
	}

	// ensure the parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), cfg.CustomCreateDirMode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to create parent directory: %w", err)
	}

	// create dst file
	dstFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		dstFile.Close()
	}()

	// write data to file
	n, err := io.Copy(dstFile, src)
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}

	// the open mode only applies on creation, overwritten files keep their
	// previous permissions otherwise
	if err := dstFile.Chmod(mode.Perm()); err != nil {
		return n, fmt.Errorf("failed to set file mode: %w", err)
	}

	return n, nil
}

// createSymlink creates a symbolic link name below dst pointing to linkname.
// An existing entry at that path is removed first.
func createSymlink(dst string, name string, linkname string, cfg *Config) error {
	path, err := entryPath(dst, name)
	if err != nil {
		return err
	}

	// ensure the parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), cfg.CustomCreateDirMode().Perm()); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	// delete existing entry
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to overwrite file: %w", err)
		}
	}

	// create link
	if err := os.Symlink(linkname, path); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}

	return nil
}

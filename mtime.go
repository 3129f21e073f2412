// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package pkgfs

import (
	"os"
	"path/filepath"
	"time"
)

// MtimeRecursive returns the maximum modification time found below path,
// looking at all subfolders and following symlinks. If path is not a
// directory, its own modification time is returned.
//
// For a symlink entry both the modification time of the link itself and of
// its current target are considered and the larger one wins, so that
// repointing a link to an older target still registers as a change.
//
// Entries whose metadata cannot be read, e.g., broken links or entries
// deleted concurrently, are logged and skipped instead of failing the
// lookup. If the directory is empty or no entry metadata could be read, the
// modification time of the root directory itself is returned.
//
// The result is a freshness signal only. It is intentionally coarser than
// content hashing, which can cause more rebuilds than strictly necessary.
func MtimeRecursive(path string, cfg *Config) (time.Time, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	if !info.IsDir() {
		return info.ModTime(), nil
	}

	w := &mtimeWalker{
		cfg:     cfg,
		visited: make(map[string]struct{}),
	}
	w.walk(path)

	if !w.found {
		// empty directory, or every metadata read failed
		return info.ModTime(), nil
	}
	return w.max, nil
}

// mtimeWalker walks a directory tree following symlinks and tracks the
// maximum modification time observed. The visited set holds resolved
// directory paths and guards against symlink cycles.
type mtimeWalker struct {
	cfg     *Config
	max     time.Time
	found   bool
	visited map[string]struct{}
}

// observe folds t into the running maximum.
func (w *mtimeWalker) observe(t time.Time) {
	if !w.found || t.After(w.max) {
		w.max = t
		w.found = true
	}
}

// walk visits path itself and, if it is a directory or resolves to one,
// its children. Metadata errors are logged and skipped.
func (w *mtimeWalker) walk(path string) {
	info, err := os.Lstat(path)
	if err != nil {
		w.cfg.Logger().Debug("failed to determine mtime while fetching metadata", "path", path, "error", err)
		return
	}

	if info.Mode()&os.ModeSymlink != 0 {
		// use the mtime of both the symlink and its target, to handle the
		// case where the symlink is modified to a different target
		w.observe(info.ModTime())

		target, err := os.Stat(path)
		if err != nil {
			w.cfg.Logger().Debug("failed to determine mtime of symlink target", "path", path, "error", err)
			return
		}
		w.observe(target.ModTime())
		if target.IsDir() {
			w.descend(path)
		}
		return
	}

	w.observe(info.ModTime())
	if info.IsDir() {
		w.descend(path)
	}
}

// descend walks the children of the directory path once. Directories are
// tracked by their resolved path so that cyclic symlinks terminate.
func (w *mtimeWalker) descend(path string) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		w.cfg.Logger().Debug("failed to resolve directory", "path", path, "error", err)
		return
	}
	if _, ok := w.visited[resolved]; ok {
		return
	}
	w.visited[resolved] = struct{}{}

	entries, err := os.ReadDir(path)
	if err != nil {
		w.cfg.Logger().Debug("failed to read directory", "path", path, "error", err)
		return
	}
	for _, entry := range entries {
		w.walk(filepath.Join(path, entry.Name()))
	}
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package pkgfs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pkgfs "github.com/hashicorp/go-pkgfs"
)

// chtimes sets both timestamps of path to ts and fails the test on error.
func chtimes(t *testing.T, path string, ts time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, ts, ts))
}

func TestMtimeRecursiveFile(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("content"), 0644))

	info, err := os.Stat(file)
	require.NoError(t, err)

	got, err := pkgfs.MtimeRecursive(file, pkgfs.NewConfig())
	require.NoError(t, err)
	require.True(t, got.Equal(info.ModTime()), "got %v, want %v", got, info.ModTime())
}

func TestMtimeRecursiveNewestWins(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "old.txt"), []byte("old"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "sub", "new.txt"), []byte("new"), 0644))

	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newest := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

	// pin every entry, directories included: they were touched by the
	// writes above
	chtimes(t, filepath.Join(tmpDir, "old.txt"), older)
	chtimes(t, filepath.Join(tmpDir, "sub", "new.txt"), newest)
	chtimes(t, filepath.Join(tmpDir, "sub"), older)
	chtimes(t, tmpDir, older)

	got, err := pkgfs.MtimeRecursive(tmpDir, pkgfs.NewConfig())
	require.NoError(t, err)
	require.True(t, got.Equal(newest), "got %v, want %v", got, newest)
}

func TestMtimeRecursiveEmptyDir(t *testing.T) {
	tmpDir := t.TempDir()
	empty := filepath.Join(tmpDir, "empty")
	require.NoError(t, os.Mkdir(empty, 0755))

	pinned := time.Date(2021, 3, 3, 3, 3, 3, 0, time.UTC)
	chtimes(t, empty, pinned)

	got, err := pkgfs.MtimeRecursive(empty, pkgfs.NewConfig())
	require.NoError(t, err)
	require.True(t, got.Equal(pinned), "got %v, want %v", got, pinned)
}

func TestMtimeRecursiveSymlinkRepointed(t *testing.T) {
	tmpDir := t.TempDir()
	old := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	// target is old, the link itself was just (re)created
	target := filepath.Join(tmpDir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("old target"), 0644))
	require.NoError(t, os.Symlink(target, filepath.Join(tmpDir, "link")))
	chtimes(t, target, old)
	chtimes(t, tmpDir, old)

	got, err := pkgfs.MtimeRecursive(tmpDir, pkgfs.NewConfig())
	require.NoError(t, err)

	// the link's own change time wins over the older target
	require.True(t, got.After(old), "got %v, want after %v", got, old)
}

func TestMtimeRecursiveFollowsSymlinkDir(t *testing.T) {
	tmpDir := t.TempDir()
	old := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	future := time.Now().Add(2 * time.Hour).Truncate(time.Second)

	// the newest entry lives behind a symlinked directory
	external := filepath.Join(tmpDir, "external")
	tree := filepath.Join(tmpDir, "tree")
	require.NoError(t, os.MkdirAll(external, 0755))
	require.NoError(t, os.MkdirAll(tree, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(external, "new.txt"), []byte("new"), 0644))
	require.NoError(t, os.Symlink(external, filepath.Join(tree, "link")))

	chtimes(t, filepath.Join(external, "new.txt"), future)
	chtimes(t, external, old)
	chtimes(t, tree, old)

	got, err := pkgfs.MtimeRecursive(tree, pkgfs.NewConfig())
	require.NoError(t, err)
	require.False(t, got.Before(future), "got %v, want at least %v", got, future)
}

func TestMtimeRecursiveBrokenSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "gone"), filepath.Join(tmpDir, "broken")))

	// broken links are skipped, not propagated
	_, err := pkgfs.MtimeRecursive(tmpDir, pkgfs.NewConfig())
	require.NoError(t, err)
}

func TestMtimeRecursiveSymlinkLoop(t *testing.T) {
	tmpDir := t.TempDir()
	sub := filepath.Join(tmpDir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.NoError(t, os.Symlink(tmpDir, filepath.Join(sub, "loop")))

	// must terminate despite the cycle
	_, err := pkgfs.MtimeRecursive(tmpDir, pkgfs.NewConfig())
	require.NoError(t, err)
}

func TestMtimeRecursiveMissingPath(t *testing.T) {
	_, err := pkgfs.MtimeRecursive(filepath.Join(t.TempDir(), "missing"), pkgfs.NewConfig())
	require.Error(t, err)
}

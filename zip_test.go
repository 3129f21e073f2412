// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package pkgfs_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	pkgfs "github.com/hashicorp/go-pkgfs"
)

func TestIsZip(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   bool
	}{
		{
			name:   "Valid zip header",
			header: []byte{0x50, 0x4B, 0x03, 0x04},
			want:   true,
		},
		{
			name:   "Invalid zip header",
			header: []byte{0x50, 0x4B, 0x05, 0x06},
			want:   false,
		},
		{
			name:   "Header too short",
			header: []byte{0x50, 0x4B},
			want:   false,
		},
		{
			name:   "Empty header",
			header: []byte{},
			want:   false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := pkgfs.IsZip(test.header); got != test.want {
				t.Errorf("IsZip() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestUnpackZipSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	archive := packZip(t, []testEntry{
		{name: "pkg", dir: true},
		{name: "pkg/data.txt", content: "data"},
		{name: "pkg/link", linkname: "data.txt"},
	})

	if _, err := pkgfs.Unpack(context.Background(), bytes.NewReader(archive), tmpDir, pkgfs.NewConfig()); err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}

	linkname, err := os.Readlink(filepath.Join(tmpDir, "pkg", "link"))
	if err != nil {
		t.Fatalf("extracted symlink missing: %v", err)
	}
	if linkname != "data.txt" {
		t.Errorf("symlink target = %q, want %q", linkname, "data.txt")
	}
}

func TestUnpackZipPathTraversal(t *testing.T) {
	tmpDir := t.TempDir()
	dst := filepath.Join(tmpDir, "dst")
	archive := packZip(t, []testEntry{
		{name: "../evil.txt", content: "escaped"},
	})

	if _, err := pkgfs.Unpack(context.Background(), bytes.NewReader(archive), dst, pkgfs.NewConfig()); err == nil {
		t.Fatal("Unpack() expected error for path traversal")
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "evil.txt")); !os.IsNotExist(err) {
		t.Error("file escaped the destination directory")
	}
}

func TestUnpackZipImplicitDirectories(t *testing.T) {
	// some zip writers omit directory entries entirely
	tmpDir := t.TempDir()
	archive := packZip(t, []testEntry{
		{name: "pkg/a/b/deep.txt", content: "deep"},
	})

	if _, err := pkgfs.Unpack(context.Background(), bytes.NewReader(archive), tmpDir, pkgfs.NewConfig()); err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tmpDir, "pkg", "a", "b", "deep.txt"))
	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
	if string(content) != "deep" {
		t.Errorf("extracted content = %q", content)
	}
}

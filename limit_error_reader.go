// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package pkgfs

import (
	"io"
)

// limitErrorReader is a reader that returns [ErrMaxInputSizeExceeded] if the
// underlying reader holds more than limit bytes.
// If the limit is -1, all data from the original reader is read.
type limitErrorReader struct {
	R io.Reader // underlying reader
	L int64     // limit
	N int64     // number of bytes read
}

// Read reads from the underlying reader and fills up p.
// An input of exactly the limit is allowed, the error is only returned once
// a read past the limit actually yields data. If the limit is -1, all data
// from the original reader is read.
func (l *limitErrorReader) Read(p []byte) (int, error) {
	if l.L == -1 {
		n, err := l.R.Read(p)
		l.N += int64(n)
		return n, err
	}

	// determine how many bytes may still be read
	m := l.L - l.N
	if m == 0 {
		// at the limit: probe if the input continues beyond it
		var probe [1]byte
		n, err := l.R.Read(probe[:])
		if n > 0 {
			return 0, ErrMaxInputSizeExceeded
		}
		return 0, err
	}
	if m > int64(len(p)) {
		m = int64(len(p))
	}

	// read from underlying reader and preserve error type
	n, err := l.R.Read(p[:m])
	l.N += int64(n)
	return n, err
}

// ReadBytes returns how many bytes have been read from the underlying reader
func (l *limitErrorReader) ReadBytes() int {
	return int(l.N)
}

// newLimitErrorReader returns a new limitErrorReader that reads from r
func newLimitErrorReader(r io.Reader, limit int64) *limitErrorReader {
	return &limitErrorReader{R: r, L: limit, N: 0}
}

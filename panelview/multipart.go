// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelview

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"io"
	"strconv"
)

// newBoundary returns a random multipart boundary; RFC 2046 allows up to 70
// characters.
func newBoundary() string {
	var b [32]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// partWriter writes an endless multipart body. mime/multipart.Writer can't
// be used since each part must be terminated by its boundary line before
// being flushed, otherwise clients show the previous image.
type partWriter struct {
	w        *bufio.Writer
	boundary string
	started  bool
}

func newPartWriter(w io.Writer) *partWriter {
	return &partWriter{w: bufio.NewWriter(w), boundary: newBoundary()}
}

// writePart writes one image as a complete part.
func (p *partWriter) writePart(f Format, seq uint64, body []byte) error {
	if !p.started {
		p.w.WriteString("--" + p.boundary + "\r\n")
		p.started = true
	}
	p.w.WriteString("Content-Type: " + f.MediaType() + "\r\n")
	p.w.WriteString("Content-Length: " + strconv.Itoa(len(body)) + "\r\n")
	p.w.WriteString("X-Frame: " + strconv.FormatUint(seq, 10) + "\r\n\r\n")
	p.w.Write(body)
	p.w.WriteString("\r\n--" + p.boundary + "\r\n")
	return p.w.Flush()
}

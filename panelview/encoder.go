// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelview

import (
	"bytes"
	"image/jpeg"
	"image/png"
	"sync"
)

// bytePool recycles encoded images.
type bytePool struct {
	p sync.Pool
}

func (b *bytePool) get() []byte {
	if v, ok := b.p.Get().([]byte); ok {
		return v[:0]
	}
	return nil
}

func (b *bytePool) put(v []byte) {
	if cap(v) != 0 {
		//lint:ignore SA6002 v is a slice and thus pointer-like
		b.p.Put(v)
	}
}

var bufferPool bytePool

// pngBuffers is shared by every PNG encoder.
type pngBuffers struct {
	p sync.Pool
}

func (b *pngBuffers) Get() *png.EncoderBuffer {
	v, _ := b.p.Get().(*png.EncoderBuffer)
	return v
}

func (b *pngBuffers) Put(v *png.EncoderBuffer) {
	b.p.Put(v)
}

var pngPool pngBuffers

// encode must be called with d.mu held.
func (d *Display) encode(f Format) ([]byte, error) {
	buf := bytes.NewBuffer(bufferPool.get())
	var err error
	if f == JPEG {
		err = jpeg.Encode(buf, d.buf, &jpeg.Options{Quality: d.opts.Quality})
	} else {
		enc := png.Encoder{CompressionLevel: d.opts.Compression, BufferPool: &pngPool}
		err = enc.Encode(buf, d.buf)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

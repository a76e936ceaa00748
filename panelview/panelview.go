// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package panelview serves a live view of a display over HTTP.
//
// A Display is a display.Drawer holding BGR565 pixels, so what clients see
// is quantized the way a ST7735 panel quantizes colors. Every Draw is pushed
// to the connected clients as a new part of a "multipart/x-mixed-replace"
// response (MJPEG), which browsers render as a moving picture.
//
// Handler routes:
//
//	GET /          the stream, "?format=png" or "?format=jpeg"
//	GET /snapshot  a single image, same parameter
package panelview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"github.com/GermanBionicSystems/lcd/rgb565"
	"periph.io/x/conn/v3/display"
)

// Opts for a Display.
type Opts struct {
	W, H int
	// Format is the default image format sent to clients.
	Format Format
	// Quality is the JPEG quality, 1 to 100. 0 means 90.
	Quality int
	// Compression is the PNG compression level.
	Compression png.CompressionLevel
}

// Display is a display.Drawer viewed by HTTP clients.
type Display struct {
	opts Opts

	mu      sync.Mutex
	buf     *rgb565.Image
	seq     uint64
	clients map[*client]struct{}
	halted  bool
	// cache holds the encoded buffer per format until the next Draw.
	cache map[Format][]byte
}

// New returns a black Display.
func New(opts *Opts) *Display {
	o := *opts
	if o.Quality == 0 {
		o.Quality = 90
	}
	return &Display{
		opts:    o,
		buf:     rgb565.NewImage(image.Rect(0, 0, o.W, o.H)),
		clients: map[*client]struct{}{},
		cache:   map[Format][]byte{},
	}
}

func (d *Display) String() string {
	return fmt.Sprintf("PanelView{%dx%d}", d.opts.W, d.opts.H)
}

// Halt implements conn.Resource. It ends all the running streams; streams
// started afterward get a single image.
func (d *Display) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.halted = true
	for c := range d.clients {
		select {
		case c.done <- struct{}{}:
		default:
		}
	}
	return nil
}

// ColorModel implements display.Drawer.
func (d *Display) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds implements display.Drawer.
func (d *Display) Bounds() image.Rectangle {
	return d.buf.Bounds()
}

// Draw implements display.Drawer.
func (d *Display) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	draw.Draw(d.buf, r, src, sp, draw.Src)
	d.seq++
	for f, b := range d.cache {
		bufferPool.put(b[:0])
		delete(d.cache, f)
	}
	for c := range d.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
	return nil
}

// Frames returns the number of Draw calls so far.
func (d *Display) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

// Clients returns the number of connected streams.
func (d *Display) Clients() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.clients)
}

// snapshot returns a copy of the encoded buffer and its sequence number.
// The caller returns the copy with bufferPool.put.
func (d *Display) snapshot(f Format) ([]byte, uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	enc, ok := d.cache[f]
	if !ok {
		var err error
		if enc, err = d.encode(f); err != nil {
			return nil, 0, err
		}
		d.cache[f] = enc
	}
	return append(bufferPool.get(), enc...), d.seq, nil
}

var _ display.Drawer = &Display{}

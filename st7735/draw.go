// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/GermanBionicSystems/lcd/font"
	"github.com/GermanBionicSystems/lcd/rgb565"
)

// maxRunPixels bounds the buffer used to stream a run of identical pixels.
const maxRunPixels = 512

// Line is a horizontal or vertical run of pixels.
type Line struct {
	Origin image.Point
	Length int
}

// Bounds implements display.Drawer. Min is always {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.geom.W, d.geom.H)
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

func (d *Dev) inside(p image.Point) bool {
	return p.In(d.Bounds())
}

// fits reports whether r is entirely on the canvas.
func (d *Dev) fits(r image.Rectangle) bool {
	return d.inside(r.Min) && r.Max.X <= d.geom.W && r.Max.Y <= d.geom.H
}

// encode converts a 0xRRGGBB color to its bus representation.
func (d *Dev) encode(rgb uint32) [2]byte {
	var p [2]byte
	rgb565.FromRGB24(rgb).Put(p[:], d.order)
	return p
}

// repeat streams n copies of p.
func (d *Dev) repeat(p [2]byte, n int) {
	buf := make([]byte, 2*min(n, maxRunPixels))
	for i := 0; i < len(buf); i += 2 {
		buf[i], buf[i+1] = p[0], p[1]
	}
	for n > 0 {
		k := min(n, maxRunPixels)
		d.ch.write(buf[:2*k])
		n -= k
	}
}

// DrawPixel sets the pixel at (x, y) to the 0xRRGGBB color c.
func (d *Dev) DrawPixel(x, y int, c uint32) error {
	if !d.inside(image.Point{X: x, Y: y}) {
		return fmt.Errorf("%w: pixel %d,%d", ErrOutOfBounds, x, y)
	}
	p := d.encode(c)
	d.setAddress(x, y, x, y)
	d.ch.data(p[:]...)
	return d.ch.done()
}

// DrawHLine draws a line to the right of l.Origin. The line is clipped at
// the edge of the canvas but its origin must be on it.
func (d *Dev) DrawHLine(l Line, c uint32) error {
	if !d.inside(l.Origin) {
		return fmt.Errorf("%w: line origin %s", ErrOutOfBounds, l.Origin)
	}
	n := min(l.Length, d.geom.W-l.Origin.X)
	if n <= 0 {
		return nil
	}
	d.setAddress(l.Origin.X, l.Origin.Y, l.Origin.X+n-1, l.Origin.Y)
	d.ch.begin()
	d.repeat(d.encode(c), n)
	d.ch.end()
	return d.ch.done()
}

// DrawVLine draws a line below l.Origin, clipped like DrawHLine.
func (d *Dev) DrawVLine(l Line, c uint32) error {
	if !d.inside(l.Origin) {
		return fmt.Errorf("%w: line origin %s", ErrOutOfBounds, l.Origin)
	}
	n := min(l.Length, d.geom.H-l.Origin.Y)
	if n <= 0 {
		return nil
	}
	d.setAddress(l.Origin.X, l.Origin.Y, l.Origin.X, l.Origin.Y+n-1)
	d.ch.begin()
	d.repeat(d.encode(c), n)
	d.ch.end()
	return d.ch.done()
}

// FillRectangle fills r with c.
//
// Unlike lines, rectangles are not clipped: r must be entirely on the
// canvas.
func (d *Dev) FillRectangle(r image.Rectangle, c uint32) error {
	if r.Empty() {
		return nil
	}
	if !d.fits(r) {
		return fmt.Errorf("%w: rectangle %s on %s", ErrOutOfBounds, r, d.Bounds())
	}
	w, h := r.Dx(), r.Dy()
	p := d.encode(c)
	row := make([]byte, 2*w)
	for i := 0; i < len(row); i += 2 {
		row[i], row[i+1] = p[0], p[1]
	}
	d.setAddress(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
	d.ch.begin()
	for y := 0; y < h; y++ {
		d.ch.write(row)
	}
	d.ch.end()
	return d.ch.done()
}

// Clear fills the whole canvas with c.
func (d *Dev) Clear(c uint32) error {
	return d.FillRectangle(d.Bounds(), c)
}

// PutChar draws c with its top left corner at origin, using the colors set
// by SetFontColors.
func (d *Dev) PutChar(origin image.Point, c rune) error {
	if d.font == nil {
		return ErrNoFont
	}
	ci, err := d.font.Glyph(c)
	if err != nil {
		return fmt.Errorf("st7735: %w", err)
	}
	return d.putGlyph(origin, ci)
}

func (d *Dev) putGlyph(origin image.Point, ci font.CharInfo) error {
	f := d.font
	if ci.Width == 0 {
		return nil
	}
	r := image.Rect(origin.X, origin.Y, origin.X+ci.Width, origin.Y+f.Height)
	if !d.fits(r) {
		return fmt.Errorf("%w: glyph %s on %s", ErrOutOfBounds, r, d.Bounds())
	}
	fg, bg := d.encode(d.fg), d.encode(d.bg)
	bits := f.Bits(ci)
	stride := font.RowBytes(ci.Width)
	row := make([]byte, 2*ci.Width)
	d.setAddress(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
	d.ch.begin()
	for y := 0; y < f.Height; y++ {
		src := bits[y*stride:]
		for x := 0; x < ci.Width; x++ {
			p := bg
			if src[x/8]&(1<<uint(x%8)) != 0 {
				p = fg
			}
			row[2*x], row[2*x+1] = p[0], p[1]
		}
		d.ch.write(row)
	}
	d.ch.end()
	return d.ch.done()
}

// Puts draws text from left to right starting at pos.
//
// It stops at the first character that would cross the right edge of the
// canvas without returning an error. It returns the number of characters
// drawn.
func (d *Dev) Puts(pos image.Point, text string) (int, error) {
	if d.font == nil {
		return 0, ErrNoFont
	}
	n := 0
	for _, c := range text {
		ci, err := d.font.Glyph(c)
		if err != nil {
			return n, fmt.Errorf("st7735: %w", err)
		}
		if pos.X+ci.Width > d.geom.W {
			return n, nil
		}
		if err := d.putGlyph(pos, ci); err != nil {
			return n, err
		}
		pos.X += ci.Width
		n++
	}
	return n, nil
}

// checkBuffer validates a bulk transfer of bpp bytes per pixel into r.
func (d *Dev) checkBuffer(r image.Rectangle, buf []byte, bpp int) error {
	if !d.fits(r) {
		return fmt.Errorf("%w: rectangle %s on %s", ErrOutOfBounds, r, d.Bounds())
	}
	if need := bpp * r.Dx() * r.Dy(); len(buf) < need {
		return fmt.Errorf("%w: %d bytes for %s, need %d", ErrShortBuffer, len(buf), r, need)
	}
	return nil
}

// DrawBGR draws a buffer of 24 bits pixels into r, 3 bytes per pixel: red,
// green then blue. Each pixel is converted to the panel's BGR565 format.
func (d *Dev) DrawBGR(r image.Rectangle, buf []byte) error {
	if r.Empty() {
		return nil
	}
	if err := d.checkBuffer(r, buf, 3); err != nil {
		return err
	}
	w := r.Dx()
	row := make([]byte, 2*w)
	d.setAddress(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
	d.ch.begin()
	for y := 0; y < r.Dy(); y++ {
		src := buf[3*w*y:]
		for x := 0; x < w; x++ {
			s := src[3*x:]
			rgb := uint32(s[0])<<16 | uint32(s[1])<<8 | uint32(s[2])
			rgb565.FromRGB24(rgb).Put(row[2*x:], d.order)
		}
		d.ch.write(row)
	}
	d.ch.end()
	return d.ch.done()
}

// DrawRGB565 draws a buffer of RGB565 pixels, in Opts.SourceOrder, into r.
func (d *Dev) DrawRGB565(r image.Rectangle, buf []byte) error {
	if r.Empty() {
		return nil
	}
	if err := d.checkBuffer(r, buf, 2); err != nil {
		return err
	}
	w := r.Dx()
	row := make([]byte, 2*w)
	d.setAddress(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
	d.ch.begin()
	for y := 0; y < r.Dy(); y++ {
		d.convertRGB565(row, buf[2*w*y:2*w*(y+1)])
		d.ch.write(row)
	}
	d.ch.end()
	return d.ch.done()
}

// convertRGB565 converts the source pixels of src into dst.
func (d *Dev) convertRGB565(dst, src []byte) {
	for i := 0; i+1 < len(src); i += 2 {
		rgb565.FromRGB565(src[i:], d.srcOrder).Put(dst[i:], d.order)
	}
}

// StartRGB565 opens r for a transfer of RGB565 pixels split over several
// PutRGB565 calls and terminated by FinishRGB565. It lets a caller decode
// and send an image without holding all of it in memory.
func (d *Dev) StartRGB565(r image.Rectangle) error {
	if r.Empty() || !d.fits(r) {
		return fmt.Errorf("%w: rectangle %s on %s", ErrOutOfBounds, r, d.Bounds())
	}
	d.setAddress(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
	d.ch.begin()
	if err := d.ch.done(); err != nil {
		return err
	}
	d.streaming = true
	d.hasCarry = false
	return nil
}

// PutRGB565 sends the next pixels of a transfer opened by StartRGB565.
//
// buf may end in the middle of a pixel; the odd byte is kept for the next
// call.
func (d *Dev) PutRGB565(buf []byte) error {
	if !d.streaming {
		return ErrProtocol
	}
	if len(buf) == 0 {
		return nil
	}
	var out []byte
	if d.hasCarry {
		var p [2]byte
		rgb565.FromRGB565([]byte{d.carry, buf[0]}, d.srcOrder).Put(p[:], d.order)
		out = append(out, p[:]...)
		buf = buf[1:]
		d.hasCarry = false
	}
	n := len(buf) &^ 1
	start := len(out)
	out = append(out, make([]byte, n)...)
	d.convertRGB565(out[start:], buf[:n])
	if n != len(buf) {
		d.carry, d.hasCarry = buf[n], true
	}
	d.ch.write(out)
	return d.ch.done()
}

// FinishRGB565 closes a transfer opened by StartRGB565. A pending odd byte
// is dropped.
func (d *Dev) FinishRGB565() error {
	if !d.streaming {
		return ErrProtocol
	}
	d.streaming = false
	d.hasCarry = false
	d.ch.end()
	return d.ch.done()
}

// Draw implements display.Drawer.
//
// It draws synchronously; once it returns the pixels are in the controller's
// memory.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	if d.next == nil || d.next.Rect != d.Bounds() {
		d.next = rgb565.NewImage(d.Bounds())
	}
	draw.Src.Draw(d.next, r, src, sp)
	d.setAddress(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
	d.ch.begin()
	var row []byte
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if d.order == rgb565.Wire {
			d.ch.write(d.next.Row(y, r.Min.X, r.Max.X))
			continue
		}
		if row == nil {
			row = make([]byte, 2*r.Dx())
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			d.next.BGR565At(x, y).Put(row[2*(x-r.Min.X):], d.order)
		}
		d.ch.write(row)
	}
	d.ch.end()
	return d.ch.done()
}

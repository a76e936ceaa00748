// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgb565

import (
	"image"
	"image/color"
	"image/draw"
)

// Image is an in-memory image of BGR565 pixels, stored two bytes per pixel
// in Wire order so rows can be sent to a controller as is.
type Image struct {
	// Pix holds the pixels; the pixel at (x, y) starts at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*2].
	Pix []byte
	// Stride is the Pix stride in bytes between vertically adjacent pixels.
	Stride int
	Rect   image.Rectangle
}

// NewImage returns an Image with the given bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	return &Image{Pix: make([]byte, 2*w*h), Stride: 2 * w, Rect: r}
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return Model
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	return i.BGR565At(x, y)
}

// BGR565At returns the pixel at (x, y), or 0 when outside the bounds.
func (i *Image) BGR565At(x, y int) BGR565 {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return 0
	}
	off := i.PixOffset(x, y)
	return BGR565(Wire.Uint16(i.Pix[off:]))
}

// Set implements draw.Image.
func (i *Image) Set(x, y int, c color.Color) {
	i.SetBGR565(x, y, FromColor(c))
}

// SetBGR565 sets the pixel at (x, y) without going through color.Color.
func (i *Image) SetBGR565(x, y int, c BGR565) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return
	}
	c.Put(i.Pix[i.PixOffset(x, y):], Wire)
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (i *Image) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x-i.Rect.Min.X)*2
}

// Row returns the bytes of the pixels [x0, x1) on row y.
func (i *Image) Row(y, x0, x1 int) []byte {
	return i.Pix[i.PixOffset(x0, y):i.PixOffset(x1, y)]
}

var _ draw.Image = &Image{}

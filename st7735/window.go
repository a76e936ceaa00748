// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import "fmt"

// Orientation is the rotation of the canvas relative to the panel.
type Orientation uint8

// Possible orientations.
const (
	Rotate0 Orientation = iota
	Rotate90
	Rotate180
	Rotate270
)

func (o Orientation) String() string {
	switch o {
	case Rotate0:
		return "0°"
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	}
	return fmt.Sprintf("Orientation(%d)", uint8(o))
}

// swapsAxes reports whether the canvas width runs along the panel height.
func (o Orientation) swapsAxes() bool {
	return o == Rotate90 || o == Rotate270
}

// madctl returns the mirror and exchange bits of the memory access control
// register.
func (o Orientation) madctl() byte {
	switch o {
	case Rotate0:
		return madctlMX | madctlMV
	case Rotate90:
		return madctlMX | madctlMY
	case Rotate180:
		return madctlMV | madctlMY
	}
	return 0
}

// Geometry is the canvas size and where it sits in the controller's frame
// memory.
type Geometry struct {
	W, H                 int
	ColOffset, RowOffset int
}

// Orient returns base as seen through o. Width and height, and the column
// and row offsets, are exchanged for 90° and 270°.
func Orient(base Geometry, o Orientation) Geometry {
	if !o.swapsAxes() {
		return base
	}
	return Geometry{
		W:         base.H,
		H:         base.W,
		ColOffset: base.RowOffset,
		RowOffset: base.ColOffset,
	}
}

// Centered returns base with offsets centering it in a w x h frame memory,
// both expressed in the unrotated orientation.
func Centered(base Geometry, w, h int) (Geometry, error) {
	if w < base.W || h < base.H {
		return base, fmt.Errorf("%w: frame memory %dx%d smaller than canvas %dx%d", ErrInvalidArgs, w, h, base.W, base.H)
	}
	base.ColOffset = (w - base.W) / 2
	base.RowOffset = (h - base.H) / 2
	return base, nil
}

// setAddress opens the inclusive window (x0, y0)-(x1, y1) and starts a
// memory write.
func (d *Dev) setAddress(x0, y0, x1, y1 int) {
	x0 += d.geom.ColOffset
	x1 += d.geom.ColOffset
	y0 += d.geom.RowOffset
	y1 += d.geom.RowOffset
	d.ch.command(caSet)
	d.ch.data(byte(x0>>8), byte(x0), byte(x1>>8), byte(x1))
	d.ch.command(raSet)
	d.ch.data(byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
	d.ch.command(ramWr)
}

// writeRegister sets a single byte register.
func (d *Dev) writeRegister(reg, v byte) {
	d.ch.command(reg)
	d.ch.data(v)
}

// SetOrientation rotates the canvas.
//
// Resolution and the frame memory offsets follow the new orientation.
func (d *Dev) SetOrientation(o Orientation) error {
	if o > Rotate270 {
		return fmt.Errorf("%w: %s", ErrInvalidArgs, o)
	}
	d.orientation = o
	d.geom = Orient(d.base, o)
	v := o.madctl()
	if d.bgr {
		v |= madctlBGR
	}
	d.writeRegister(madCtl, v)
	return d.ch.done()
}

// Orientation returns the current orientation.
func (d *Dev) Orientation() Orientation {
	return d.orientation
}

// Resolution returns the canvas size in the current orientation.
func (d *Dev) Resolution() (w, h int) {
	return d.geom.W, d.geom.H
}

// Geometry returns the canvas size and offsets in the current orientation.
func (d *Dev) Geometry() Geometry {
	return d.geom
}

// SetFrameBufferResolution centers the canvas in a frame memory of w x h
// pixels, as returned by DetectFrameBuffer.
func (d *Dev) SetFrameBufferResolution(w, h int) error {
	base, err := Centered(d.base, w, h)
	if err != nil {
		return err
	}
	d.base = base
	d.geom = Orient(base, d.orientation)
	return nil
}

// SetFrameBufferOffsets sets the column and row offsets directly, in the
// current orientation.
func (d *Dev) SetFrameBufferOffsets(col, row int) error {
	if col < 0 || row < 0 {
		return fmt.Errorf("%w: negative offset %d,%d", ErrInvalidArgs, col, row)
	}
	d.geom.ColOffset, d.geom.RowOffset = col, row
	d.base = Orient(d.geom, d.orientation)
	return nil
}

// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package displayer adapts a st7735.Dev to the tinygo.org/x/drivers
// Displayer interface, so libraries written for it, like tinyfont, can draw
// on the panel.
//
// Pixels are sent as they are set; Display only reports the first error
// since the previous call.
package displayer

import (
	"image"
	"image/color"

	"github.com/GermanBionicSystems/lcd/st7735"
	"tinygo.org/x/drivers"
)

// Dev is a drivers.Displayer drawing on a st7735.Dev.
type Dev struct {
	d   *st7735.Dev
	err error
}

// New returns a Displayer drawing on d.
func New(d *st7735.Dev) *Dev {
	return &Dev{d: d}
}

func (a *Dev) String() string {
	return a.d.String()
}

// Size implements drivers.Displayer.
func (a *Dev) Size() (x, y int16) {
	w, h := a.d.Resolution()
	return int16(w), int16(h)
}

// SetPixel implements drivers.Displayer. Pixels outside the canvas are
// ignored.
func (a *Dev) SetPixel(x, y int16, c color.RGBA) {
	if a.err != nil || !image.Pt(int(x), int(y)).In(a.d.Bounds()) {
		return
	}
	a.err = a.d.DrawPixel(int(x), int(y), rgb24(c))
}

// FillRectangle fills the part of the rectangle that is on the canvas.
func (a *Dev) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	r := image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height))
	return a.d.FillRectangle(r.Intersect(a.d.Bounds()), rgb24(c))
}

// Display implements drivers.Displayer. It returns the first error of the
// SetPixel calls since the last call.
func (a *Dev) Display() error {
	err := a.err
	a.err = nil
	return err
}

func rgb24(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

var _ drivers.Displayer = &Dev{}

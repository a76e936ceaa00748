// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen2d implements a 2D display.Drawer that outputs to terminal
// (stdout) using ANSI color codes.
//
// Each pixel is rendered as a colored block, so a 160x128 canvas needs a
// terminal at least 320 columns wide at full scale. Opts.Scale skips pixels
// to fit smaller terminals.
package screen2d

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	W, H    int
	Palette *ansi256.Palette
	// Scale renders one pixel out of Scale in each direction. 0 means 1.
	Scale int
	// Out defaults to the colorable stdout.
	Out io.Writer

	_ struct{}
}

// Dev is a 2D LCD emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	scale   int
	palette ansi256.Palette

	pixels *image.NRGBA
	buf    bytes.Buffer
	drawn  bool
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	s := opts.Scale
	if s <= 0 {
		s = 1
	}
	return &Dev{
		w:       w,
		scale:   s,
		palette: *p,
		pixels:  image.NewNRGBA(image.Rect(0, 0, opts.W, opts.H)),
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("Screen2D{%dx%d}", d.pixels.Rect.Dx(), d.pixels.Rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.pixels.Rect
}

// Draw implements display.Drawer.
//
// The whole canvas is redrawn, moving the cursor back over the previous
// frame.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	draw.Src.Draw(d.pixels, r, src, sp)
	return d.refresh()
}

// rows returns the number of terminal lines of a frame.
func (d *Dev) rows() int {
	return (d.pixels.Rect.Dy() + d.scale - 1) / d.scale
}

func (d *Dev) refresh() error {
	d.buf.Reset()
	if d.drawn {
		// Cursor up to the first line of the previous frame.
		fmt.Fprintf(&d.buf, "\033[%dA", d.rows())
	}
	b := d.pixels.Rect
	for y := b.Min.Y; y < b.Max.Y; y += d.scale {
		_, _ = d.buf.WriteString("\r\033[0m")
		for x := b.Min.X; x < b.Max.X; x += d.scale {
			_, _ = io.WriteString(&d.buf, d.palette.Block(d.pixels.NRGBAAt(x, y)))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.drawn = true
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}

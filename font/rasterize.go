// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package font

import (
	"fmt"
	"image"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Basic7x13 is basicfont.Face7x13 rasterized for the printable ASCII range.
var Basic7x13 = mustRasterize("basic7x13", basicfont.Face7x13, ' ', '~')

// Threshold is the alpha level at or above which a rasterized pixel is set.
const Threshold = 0x80

// Rasterize renders the characters [first, last] of face into a bitmap
// Font.
//
// The glyph width is the face's advance, rounded up. The height is the
// face's ascent plus descent.
func Rasterize(name string, face font.Face, first, last rune) (*Font, error) {
	if last < first {
		return nil, fmt.Errorf("font: invalid range %q-%q", first, last)
	}
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	h := ascent + m.Descent.Ceil()
	if h <= 0 {
		return nil, fmt.Errorf("font: %s has no height", name)
	}
	f := &Font{Name: name, Height: h, First: first}
	for c := first; c <= last; c++ {
		adv, ok := face.GlyphAdvance(c)
		if !ok {
			return nil, fmt.Errorf("font: %s has no glyph for %q", name, c)
		}
		w := adv.Ceil()
		f.Descriptors = append(f.Descriptors, CharInfo{Width: w, Position: len(f.Bitmap)})
		if w == 0 {
			continue
		}
		img := image.NewAlpha(image.Rect(0, 0, w, h))
		d := font.Drawer{
			Dst:  img,
			Src:  image.Opaque,
			Face: face,
			Dot:  fixed.P(0, ascent),
		}
		d.DrawString(string(c))
		f.Bitmap = append(f.Bitmap, pack(img)...)
	}
	return f, nil
}

// ParseTrueType parses a TrueType font and rasterizes the printable ASCII
// range at size points (72 DPI, so one point is one pixel).
func ParseTrueType(name string, ttf []byte, size float64) (*Font, error) {
	tt, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("font: %s: %w", name, err)
	}
	face := truetype.NewFace(tt, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()
	return Rasterize(name, face, ' ', '~')
}

// pack converts an alpha mask into LSB-first rows.
func pack(img *image.Alpha) []byte {
	b := img.Bounds()
	stride := RowBytes(b.Dx())
	out := make([]byte, stride*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := out[(y-b.Min.Y)*stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.AlphaAt(x, y).A >= Threshold {
				col := x - b.Min.X
				row[col/8] |= 1 << uint(col%8)
			}
		}
	}
	return out
}

func mustRasterize(name string, face font.Face, first, last rune) *Font {
	f, err := Rasterize(name, face, first, last)
	if err != nil {
		panic(err)
	}
	return f
}

// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgb565

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestNewImage(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 4, 3))
	if len(img.Pix) != 24 || img.Stride != 8 {
		t.Fatalf("len(Pix) = %d, Stride = %d", len(img.Pix), img.Stride)
	}
	if empty := NewImage(image.Rect(0, 0, 0, 3)); len(empty.Pix) != 0 {
		t.Errorf("empty image has %d bytes", len(empty.Pix))
	}
}

func TestImageSetAt(t *testing.T) {
	img := NewImage(image.Rect(2, 2, 6, 6))
	img.Set(3, 4, color.RGBA{B: 0xFF, A: 0xFF})
	if got := img.BGR565At(3, 4); got != 0xF800 {
		t.Errorf("BGR565At(3, 4) = %#04x, want 0xf800", uint16(got))
	}
	off := img.PixOffset(3, 4)
	if img.Pix[off] != 0xF8 || img.Pix[off+1] != 0x00 {
		t.Errorf("Pix[%d:] = %x, want f800", off, img.Pix[off:off+2])
	}
	// Out of bounds accesses are ignored.
	img.Set(0, 0, color.White)
	if got := img.BGR565At(0, 0); got != 0 {
		t.Errorf("BGR565At(0, 0) = %#04x", uint16(got))
	}
}

func TestImageDraw(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 3, 2))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	for _, b := range img.Pix {
		if b != 0xFF {
			t.Fatalf("Pix = %x, want all ff", img.Pix)
		}
	}
	if row := img.Row(1, 1, 3); len(row) != 4 {
		t.Errorf("len(Row) = %d, want 4", len(row))
	}
}

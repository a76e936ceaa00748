// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgb565

import (
	"encoding/binary"
	"fmt"
	"image/color"
)

// Wire is the byte order ST7735 controllers expect pixels in: most
// significant byte first.
var Wire binary.ByteOrder = binary.BigEndian

// BGR565 is a packed 16 bits pixel with blue in the high bits.
type BGR565 uint16

// FromRGB24 packs a 0xRRGGBB value.
//
// The low bits of each channel are truncated.
func FromRGB24(rgb uint32) BGR565 {
	r := (rgb >> 16) & 0xFF
	g := (rgb >> 8) & 0xFF
	b := rgb & 0xFF
	return BGR565((b&0xF8)<<8 | (g&0xFC)<<3 | r>>3)
}

// FromRGB565 decodes the two bytes of a RGB565 pixel stored in order and
// swaps the red and blue fields.
//
// It panics if p is shorter than 2 bytes.
func FromRGB565(p []byte, order binary.ByteOrder) BGR565 {
	v := order.Uint16(p)
	r := v >> 11
	g := (v >> 5) & 0x3F
	b := v & 0x1F
	return BGR565(b<<11 | g<<5 | r)
}

// FromColor converts any color to BGR565.
func FromColor(c color.Color) BGR565 {
	if v, ok := c.(BGR565); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return FromRGB24((r>>8)<<16 | (g>>8)<<8 | b>>8)
}

// Put writes the pixel into the first two bytes of b, in order.
func (c BGR565) Put(b []byte, order binary.ByteOrder) {
	order.PutUint16(b, uint16(c))
}

// Channels returns the 5, 6 and 5 bits fields.
func (c BGR565) Channels() (r, g, b uint8) {
	return uint8(c & 0x1F), uint8((c >> 5) & 0x3F), uint8(c >> 11)
}

// RGBA implements color.Color.
//
// The truncated low bits are filled by replicating the high bits so that the
// full range maps to 0..0xFFFF.
func (c BGR565) RGBA() (r, g, b, a uint32) {
	r5, g6, b5 := c.Channels()
	r8 := uint32(r5<<3 | r5>>2)
	g8 := uint32(g6<<2 | g6>>4)
	b8 := uint32(b5<<3 | b5>>2)
	return r8 | r8<<8, g8 | g8<<8, b8 | b8<<8, 0xFFFF
}

func (c BGR565) String() string {
	r, g, b := c.Channels()
	return fmt.Sprintf("BGR565{R:%d, G:%d, B:%d}", r, g, b)
}

// Model converts colors to BGR565.
var Model = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	return FromColor(c)
}

var _ color.Color = BGR565(0)

// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package font

import (
	"errors"
	"fmt"
)

// CharInfo describes one glyph.
type CharInfo struct {
	// Width in pixels.
	Width int
	// Position is the index of the glyph's first byte in Font.Bitmap.
	Position int
}

// Font is a fixed height bitmap font covering a contiguous range of
// characters.
type Font struct {
	Name string
	// Height of every glyph in pixels.
	Height int
	// First is the character described by Descriptors[0].
	First rune
	// Descriptors holds one entry per character, starting at First.
	Descriptors []CharInfo
	Bitmap      []byte
}

// ErrNoGlyph is returned when a character is not covered by the font.
var ErrNoGlyph = errors.New("font: character not in font")

func (f *Font) String() string {
	return fmt.Sprintf("font.Font{%s, %d, %q-%q}", f.Name, f.Height, f.First, f.Last())
}

// Last returns the last character covered by the font.
func (f *Font) Last() rune {
	return f.First + rune(len(f.Descriptors)) - 1
}

// Glyph returns the descriptor of c.
func (f *Font) Glyph(c rune) (CharInfo, error) {
	i := int(c - f.First)
	if c < f.First || i >= len(f.Descriptors) {
		return CharInfo{}, fmt.Errorf("%w: %q", ErrNoGlyph, c)
	}
	return f.Descriptors[i], nil
}

// Bits returns the packed rows of a glyph.
func (f *Font) Bits(ci CharInfo) []byte {
	n := RowBytes(ci.Width) * f.Height
	return f.Bitmap[ci.Position : ci.Position+n]
}

// Size returns the width of the first glyph and the font height.
func (f *Font) Size() (w, h int) {
	if len(f.Descriptors) == 0 {
		return 0, f.Height
	}
	return f.Descriptors[0].Width, f.Height
}

// Validate checks that every glyph fits in Bitmap.
func (f *Font) Validate() error {
	if f.Height <= 0 {
		return fmt.Errorf("font: invalid height %d", f.Height)
	}
	for i, ci := range f.Descriptors {
		if ci.Width < 0 || ci.Position < 0 || ci.Position+RowBytes(ci.Width)*f.Height > len(f.Bitmap) {
			return fmt.Errorf("font: glyph %q out of bitmap", f.First+rune(i))
		}
	}
	return nil
}

// RowBytes returns the number of bytes used by one row of a glyph w pixels
// wide.
func RowBytes(w int) int {
	return (w + 7) / 8
}

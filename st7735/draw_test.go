// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/GermanBionicSystems/lcd/font"
	"github.com/GermanBionicSystems/lcd/st7735/st7735test"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	red   = color.RGBA{R: 0xFF, A: 0xFF}
	blue  = color.RGBA{B: 0xFF, A: 0xFF}
	white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// tiny is a single glyph font: a 2x2 diagonal.
var tiny = &font.Font{
	Name:        "tiny",
	Height:      2,
	First:       'A',
	Descriptors: []font.CharInfo{{Width: 2, Position: 0}},
	Bitmap:      []byte{0x01, 0x02},
}

func window(x0, y0, x1, y1 int) []st7735test.Op {
	return []st7735test.Op{
		{Cmd: caSet, Data: []byte{byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}},
		{Cmd: raSet, Data: []byte{byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)}},
	}
}

func ramWrite(data ...byte) st7735test.Op {
	return st7735test.Op{Cmd: ramWr, Data: data}
}

func TestDrawPixel(t *testing.T) {
	d, s := newDev(t, st7735test.Narrow, nil)
	if err := d.DrawPixel(5, 6, 0xFF0000); err != nil {
		t.Fatal(err)
	}
	want := append(window(5, 6, 5, 6), ramWrite(0x00, 0x1F))
	if diff := cmp.Diff(s.Ops, want); diff != "" {
		t.Fatalf("Ops difference (-got +want):\n%s", diff)
	}
	if got := s.At(5, 6); got != red {
		t.Fatalf("At(5, 6) = %v", got)
	}
}

func TestDrawPixel_OutOfBounds(t *testing.T) {
	d, s := newDev(t, st7735test.Narrow, nil)
	for _, p := range []image.Point{{160, 0}, {0, 128}, {-1, 0}, {0, -1}} {
		if err := d.DrawPixel(p.X, p.Y, 0xFFFFFF); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("DrawPixel(%s) = %v, want ErrOutOfBounds", p, err)
		}
	}
	if err := d.DrawPixel(159, 127, 0xFFFFFF); err != nil {
		t.Errorf("DrawPixel(159, 127) = %v", err)
	}
	if n := len(s.Ops); n != 3 {
		t.Fatalf("%d operations, want 3", n)
	}
}

func TestDrawLines(t *testing.T) {
	d, s := newDev(t, st7735test.Narrow, nil)
	if err := d.DrawHLine(Line{Origin: image.Pt(150, 0), Length: 20}, 0); err != nil {
		t.Fatal(err)
	}
	if err := d.DrawVLine(Line{Origin: image.Pt(0, 120), Length: 20}, 0); err != nil {
		t.Fatal(err)
	}
	want := append(window(150, 0, 159, 0), ramWrite(make([]byte, 20)...))
	want = append(want, window(0, 120, 0, 127)...)
	want = append(want, ramWrite(make([]byte, 16)...))
	if diff := cmp.Diff(s.Ops, want); diff != "" {
		t.Fatalf("Ops difference (-got +want):\n%s", diff)
	}

	s.ClearOps()
	for _, l := range []Line{{image.Pt(3, 4), 0}, {image.Pt(3, 4), -2}} {
		if err := d.DrawHLine(l, 0); err != nil {
			t.Errorf("DrawHLine(%v) = %v", l, err)
		}
		if err := d.DrawVLine(l, 0); err != nil {
			t.Errorf("DrawVLine(%v) = %v", l, err)
		}
	}
	for _, l := range []Line{{image.Pt(160, 4), 1}, {image.Pt(3, 128), 1}, {image.Pt(-1, 0), 5}} {
		if err := d.DrawHLine(l, 0); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("DrawHLine(%v) = %v, want ErrOutOfBounds", l, err)
		}
		if err := d.DrawVLine(l, 0); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("DrawVLine(%v) = %v, want ErrOutOfBounds", l, err)
		}
	}
	if len(s.Ops) != 0 {
		t.Fatalf("Ops = %v", s.Ops)
	}
}

func TestDrawHLine_Pixels(t *testing.T) {
	d, s := newDev(t, st7735test.Narrow, nil)
	if err := d.DrawHLine(Line{Origin: image.Pt(2, 3), Length: 4}, 0x0000FF); err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 8; x++ {
		want := color.RGBA{}
		if x >= 2 && x < 6 {
			want = blue
		}
		if got := s.At(x, 3); got != want {
			t.Errorf("At(%d, 3) = %v, want %v", x, got, want)
		}
	}
}

func TestFillRectangle(t *testing.T) {
	d, s := newDev(t, st7735test.Narrow, nil)
	r := image.Rect(2, 3, 5, 5)
	if err := d.FillRectangle(r, 0xFFFFFF); err != nil {
		t.Fatal(err)
	}
	if n := s.Count(ramWr); n != 1 {
		t.Fatalf("%d memory writes", n)
	}
	want := append(window(2, 3, 4, 4), ramWrite(0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF))
	if diff := cmp.Diff(s.Ops, want); diff != "" {
		t.Fatalf("Ops difference (-got +want):\n%s", diff)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := color.RGBA{}
			if image.Pt(x, y).In(r) {
				want = white
			}
			if got := s.At(x, y); got != want {
				t.Errorf("At(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestFillRectangle_Invalid(t *testing.T) {
	d, s := newDev(t, st7735test.Narrow, nil)
	if err := d.FillRectangle(image.Rect(4, 4, 4, 10), 0); err != nil {
		t.Fatalf("empty rectangle: %v", err)
	}
	for _, r := range []image.Rectangle{
		image.Rect(150, 100, 161, 110),
		image.Rect(0, 0, 160, 129),
		image.Rect(-1, 0, 3, 3),
	} {
		if err := d.FillRectangle(r, 0); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("FillRectangle(%s) = %v, want ErrOutOfBounds", r, err)
		}
	}
	if len(s.Ops) != 0 {
		t.Fatalf("Ops = %v", s.Ops)
	}
}

func TestClear(t *testing.T) {
	d, s := newDev(t, st7735test.Narrow, nil)
	if err := d.Clear(0x00FF00); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s.Ops[:2], window(0, 0, 159, 127)); diff != "" {
		t.Fatalf("window difference (-got +want):\n%s", diff)
	}
	if n := len(s.Ops[2].Data); n != 2*160*128 {
		t.Fatalf("%d bytes written", n)
	}
	if got := s.Ops[2].Data[:2]; got[0] != 0x07 || got[1] != 0xE0 {
		t.Fatalf("green encoded as %x", got)
	}
}

func TestPutChar(t *testing.T) {
	d, s := newDev(t, st7735test.Narrow, nil)
	if err := d.PutChar(image.Pt(0, 0), 'A'); !errors.Is(err, ErrNoFont) {
		t.Fatalf("PutChar() = %v, want ErrNoFont", err)
	}
	if err := d.SetFont(tiny); err != nil {
		t.Fatal(err)
	}
	d.SetFontColors(0x000000, 0xFF0000)
	if err := d.PutChar(image.Pt(7, 8), 'A'); err != nil {
		t.Fatal(err)
	}
	want := append(window(7, 8, 8, 9), ramWrite(0x00, 0x1F, 0x00, 0x00, 0x00, 0x00, 0x00, 0x1F))
	if diff := cmp.Diff(s.Ops, want); diff != "" {
		t.Fatalf("Ops difference (-got +want):\n%s", diff)
	}
	if s.At(7, 8) != red || s.At(8, 9) != red || s.At(8, 8) != (color.RGBA{A: 0xFF}) {
		t.Fatalf("glyph not drawn: %v %v %v", s.At(7, 8), s.At(8, 9), s.At(8, 8))
	}

	s.ClearOps()
	if err := d.PutChar(image.Pt(0, 0), 'B'); !errors.Is(err, font.ErrNoGlyph) {
		t.Fatalf("PutChar('B') = %v, want font.ErrNoGlyph", err)
	}
	if err := d.PutChar(image.Pt(159, 0), 'A'); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("PutChar() = %v, want ErrOutOfBounds", err)
	}
	if err := d.PutChar(image.Pt(0, 127), 'A'); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("PutChar() = %v, want ErrOutOfBounds", err)
	}
	if len(s.Ops) != 0 {
		t.Fatalf("Ops = %v", s.Ops)
	}
}

func TestPuts(t *testing.T) {
	d, s := newDev(t, st7735test.Narrow, nil)
	if _, err := d.Puts(image.Pt(0, 0), "hi"); !errors.Is(err, ErrNoFont) {
		t.Fatalf("Puts() = %v, want ErrNoFont", err)
	}
	if err := d.SetFont(font.Basic7x13); err != nil {
		t.Fatal(err)
	}
	n, err := d.Puts(image.Pt(0, 0), "Hello")
	if err != nil || n != 5 {
		t.Fatalf("Puts() = %d, %v", n, err)
	}
	if c := s.Count(ramWr); c != 5 {
		t.Fatalf("%d glyphs sent", c)
	}
	if got := s.Ops[3].Data; got[0] != 0 || got[1] != 7 || got[3] != 13 {
		t.Fatalf("second glyph window %v", got)
	}

	// Only one 7 pixels glyph fits after x=150.
	s.ClearOps()
	n, err = d.Puts(image.Pt(150, 0), "abc")
	if err != nil || n != 1 {
		t.Fatalf("Puts() = %d, %v", n, err)
	}
	if c := s.Count(ramWr); c != 1 {
		t.Fatalf("%d glyphs sent", c)
	}
	if got := len(s.Ops[2].Data); got != 2*7*13 {
		t.Fatalf("%d bytes for one glyph", got)
	}

	n, err = d.Puts(image.Pt(0, 0), "a\x01")
	if !errors.Is(err, font.ErrNoGlyph) || n != 1 {
		t.Fatalf("Puts() = %d, %v", n, err)
	}
}

func TestDrawBGR(t *testing.T) {
	d, s := newDev(t, st7735test.Narrow, nil)
	r := image.Rect(1, 1, 3, 2)
	if err := d.DrawBGR(r, []byte{0xFF, 0, 0}); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("DrawBGR() = %v, want ErrShortBuffer", err)
	}
	if err := d.DrawBGR(image.Rect(159, 0, 161, 1), make([]byte, 6)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("DrawBGR() = %v, want ErrOutOfBounds", err)
	}
	if len(s.Ops) != 0 {
		t.Fatalf("Ops = %v", s.Ops)
	}
	if err := d.DrawBGR(r, []byte{0xFF, 0, 0, 0, 0, 0xFF}); err != nil {
		t.Fatal(err)
	}
	want := append(window(1, 1, 2, 1), ramWrite(0x00, 0x1F, 0xF8, 0x00))
	if diff := cmp.Diff(s.Ops, want); diff != "" {
		t.Fatalf("Ops difference (-got +want):\n%s", diff)
	}
	if s.At(1, 1) != red || s.At(2, 1) != blue {
		t.Fatalf("pixels %v %v", s.At(1, 1), s.At(2, 1))
	}
}

func TestDrawRGB565(t *testing.T) {
	for _, tc := range []struct {
		name  string
		order binary.ByteOrder
		src   []byte
	}{
		{"default", nil, []byte{0xF8, 0x00, 0x00, 0x1F}},
		{"little endian", binary.LittleEndian, []byte{0x00, 0xF8, 0x1F, 0x00}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOpts
			opts.SourceOrder = tc.order
			d, s := newDev(t, st7735test.Narrow, &opts)
			r := image.Rect(0, 0, 1, 2)
			if err := d.DrawRGB565(r, tc.src[:3]); !errors.Is(err, ErrShortBuffer) {
				t.Fatalf("DrawRGB565() = %v, want ErrShortBuffer", err)
			}
			if err := d.DrawRGB565(r, tc.src); err != nil {
				t.Fatal(err)
			}
			want := append(window(0, 0, 0, 1), ramWrite(0x00, 0x1F, 0xF8, 0x00))
			if diff := cmp.Diff(s.Ops, want); diff != "" {
				t.Fatalf("Ops difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestStreamRGB565(t *testing.T) {
	d, s := newDev(t, st7735test.Narrow, nil)
	if err := d.PutRGB565([]byte{0, 0}); !errors.Is(err, ErrProtocol) {
		t.Fatalf("PutRGB565() = %v, want ErrProtocol", err)
	}
	if err := d.FinishRGB565(); !errors.Is(err, ErrProtocol) {
		t.Fatalf("FinishRGB565() = %v, want ErrProtocol", err)
	}
	if err := d.StartRGB565(image.Rect(0, 0, 161, 1)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("StartRGB565() = %v, want ErrOutOfBounds", err)
	}
	if len(s.Ops) != 0 {
		t.Fatalf("Ops = %v", s.Ops)
	}

	if err := d.StartRGB565(image.Rect(0, 0, 2, 1)); err != nil {
		t.Fatal(err)
	}
	// A red and a blue pixel, split at odd offsets.
	for _, chunk := range [][]byte{{0xF8}, {0x00, 0x00}, {}, {0x1F}} {
		if err := d.PutRGB565(chunk); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.FinishRGB565(); err != nil {
		t.Fatal(err)
	}
	want := append(window(0, 0, 1, 0), ramWrite(0x00, 0x1F, 0xF8, 0x00))
	if diff := cmp.Diff(s.Ops, want); diff != "" {
		t.Fatalf("Ops difference (-got +want):\n%s", diff)
	}
	if s.At(0, 0) != red || s.At(1, 0) != blue {
		t.Fatalf("pixels %v %v", s.At(0, 0), s.At(1, 0))
	}
	if err := d.PutRGB565([]byte{0, 0}); !errors.Is(err, ErrProtocol) {
		t.Fatalf("PutRGB565() after FinishRGB565 = %v, want ErrProtocol", err)
	}
}

func TestStreamRGB565_Reset(t *testing.T) {
	for _, hw := range []bool{false, true} {
		d, s := newDev(t, st7735test.Narrow, nil)
		if err := d.StartRGB565(image.Rect(0, 0, 2, 1)); err != nil {
			t.Fatal(err)
		}
		if err := d.PutRGB565([]byte{0xF8}); err != nil {
			t.Fatal(err)
		}
		if err := d.Reset(hw); err != nil {
			t.Fatal(err)
		}
		// The reset abandons the transfer: pixels must not reach the
		// controller as commands.
		if err := d.PutRGB565([]byte{0xF8, 0x00}); !errors.Is(err, ErrProtocol) {
			t.Fatalf("hw=%t: PutRGB565() after Reset = %v, want ErrProtocol", hw, err)
		}
		if err := d.FinishRGB565(); !errors.Is(err, ErrProtocol) {
			t.Fatalf("hw=%t: FinishRGB565() after Reset = %v, want ErrProtocol", hw, err)
		}
		want := []byte{caSet, raSet, ramWr}
		if !hw {
			want = append(want, swReset)
		}
		if diff := cmp.Diff(s.Commands(), want); diff != "" {
			t.Fatalf("hw=%t: Commands() difference (-got +want):\n%s", hw, diff)
		}
		if last := s.Ops[len(s.Ops)-1]; len(last.Data) != 0 {
			t.Fatalf("hw=%t: %#02x got data %v", hw, last.Cmd, last.Data)
		}
	}
}

func TestDraw(t *testing.T) {
	d, s := newDev(t, st7735test.Narrow, nil)
	if err := d.Draw(image.Rect(-5, -5, 2, 2), image.NewUniform(blue), image.Point{}); err != nil {
		t.Fatal(err)
	}
	want := append(window(0, 0, 1, 1), ramWrite(0xF8, 0x00, 0xF8, 0x00, 0xF8, 0x00, 0xF8, 0x00))
	if diff := cmp.Diff(s.Ops, want); diff != "" {
		t.Fatalf("Ops difference (-got +want):\n%s", diff)
	}
	if s.At(1, 1) != blue || s.At(2, 2) != (color.RGBA{}) {
		t.Fatalf("pixels %v %v", s.At(1, 1), s.At(2, 2))
	}

	s.ClearOps()
	if err := d.Draw(image.Rect(200, 200, 210, 210), image.NewUniform(blue), image.Point{}); err != nil {
		t.Fatal(err)
	}
	if len(s.Ops) != 0 {
		t.Fatalf("Ops = %v", s.Ops)
	}

	// The buffer keeps the previous content around the updated area.
	src := image.NewRGBA(image.Rect(0, 0, 4, 1))
	src.Set(3, 0, red)
	if err := d.Draw(image.Rect(1, 1, 5, 2), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if got := d.next.BGR565At(0, 0); got != 0xF800 {
		t.Fatalf("buffer lost the first update: %s", got)
	}
	if s.At(4, 1) != red || s.At(1, 1) != (color.RGBA{A: 0xFF}) {
		t.Fatalf("pixels %v %v", s.At(4, 1), s.At(1, 1))
	}
}

func TestDraw_LittleEndian(t *testing.T) {
	opts := DefaultOpts
	opts.Order = binary.LittleEndian
	d, s := newDev(t, st7735test.Narrow, &opts)
	if err := d.Draw(image.Rect(0, 0, 1, 1), image.NewUniform(blue), image.Point{}); err != nil {
		t.Fatal(err)
	}
	if err := d.DrawPixel(1, 0, 0x0000FF); err != nil {
		t.Fatal(err)
	}
	want := append(window(0, 0, 0, 0), ramWrite(0x00, 0xF8))
	want = append(want, window(1, 0, 1, 0)...)
	want = append(want, ramWrite(0x00, 0xF8))
	if diff := cmp.Diff(s.Ops, want, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("Ops difference (-got +want):\n%s", diff)
	}
}

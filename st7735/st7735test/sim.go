// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package st7735test implements a simulated ST7735 controller to test
// drivers without hardware.
//
// Sim models the parts of the controller a driver can observe: the command
// and data framing, the column and row address windows with their cursor
// wrap, 16 and 18 bits memory writes, memory reads and the two frame memory
// configurations selected by the GM pads.
//
// The memory access control register is recorded but doesn't remap
// addresses: pixels are stored where the address counter points, in a square
// memory large enough for either axis exchange.
package st7735test

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/GermanBionicSystems/lcd/rgb565"
	"periph.io/x/conn/v3/gpio"
)

const (
	cmdSWReset = 0x01
	cmdDispOff = 0x28
	cmdDispOn  = 0x29
	cmdCASet   = 0x2A
	cmdRASet   = 0x2B
	cmdRAMWr   = 0x2C
	cmdRAMRd   = 0x2E
	cmdMADCtl  = 0x36
	cmdCOLMod  = 0x3A
)

// Variant is the frame memory configuration selected by the GM pads.
type Variant uint8

const (
	// Narrow is GM=011: 128 columns by 160 rows.
	Narrow Variant = iota
	// Wide is GM=000: 132 columns by 162 rows.
	Wide
)

// Size returns the number of columns and rows of the frame memory.
func (v Variant) Size() (cols, rows int) {
	if v == Wide {
		return 132, 162
	}
	return 128, 160
}

func (v Variant) String() string {
	if v == Wide {
		return "132x162"
	}
	return "128x160"
}

// Op is a command and the data bytes that followed it.
type Op struct {
	Cmd  byte
	Data []byte
	// Read holds the bytes returned by memory reads.
	Read []byte
}

// cursor is the memory address counter, bounded by the current window.
type cursor struct {
	xs, xe, ys, ye int
	x, y           int
}

func (c *cursor) home() {
	c.x, c.y = c.xs, c.ys
}

// next advances in raster order, wrapping at the window bounds.
func (c *cursor) next() {
	c.x++
	if c.x > c.xe {
		c.x = c.xs
		c.y++
		if c.y > c.ye {
			c.y = c.ys
		}
	}
}

// Sim is a simulated controller. It implements st7735.Bus, st7735.Reader,
// st7735.Resetter and st7735.Backlighter.
//
// The zero value is a Narrow controller that was never reset; call
// NewSim instead.
type Sim struct {
	Variant Variant
	// BadReads is the number of memory reads returning garbage. Negative
	// means every read.
	BadReads int
	// Ops records every command with its data.
	Ops []Op
	// Delays records calls to Delay.
	Delays []time.Duration
	// HardResets counts calls to Reset.
	HardResets int
	// Backlight is the last duty cycle set.
	Backlight gpio.Duty

	cs, dc  gpio.Level
	cmd     int
	args    []byte
	pending []byte
	rdPos   int
	cur     cursor
	colmod  byte
	madctl  byte
	on      bool
	mem     [][3]byte
	written []bool
	cols    int
	rows    int
	size    int
}

// NewSim returns a controller of variant v, in its reset state.
func NewSim(v Variant) *Sim {
	s := &Sim{Variant: v, cs: gpio.High, dc: gpio.High, cmd: -1}
	s.cols, s.rows = v.Size()
	s.size = max(s.cols, s.rows)
	s.mem = make([][3]byte, s.size*s.size)
	s.written = make([]bool, s.size*s.size)
	s.softReset()
	return s
}

func (s *Sim) String() string {
	return fmt.Sprintf("st7735test.Sim{%s}", s.Variant)
}

// softReset restores the registers a reset affects. Memory content is
// kept.
func (s *Sim) softReset() {
	s.cur = cursor{xe: s.cols - 1, ye: s.rows - 1}
	s.cur.home()
	s.colmod = 0x06
	s.madctl = 0
	s.on = false
	s.cmd = -1
	s.args = nil
	s.pending = nil
}

// SetLines implements st7735.Bus.
func (s *Sim) SetLines(cs, dc gpio.Level) error {
	s.cs, s.dc = cs, dc
	return nil
}

// Delay implements st7735.Bus. It doesn't sleep.
func (s *Sim) Delay(d time.Duration) {
	s.Delays = append(s.Delays, d)
}

// Reset implements st7735.Resetter.
func (s *Sim) Reset() error {
	s.HardResets++
	s.softReset()
	return nil
}

// SetBacklight implements st7735.Backlighter.
func (s *Sim) SetBacklight(d gpio.Duty) error {
	s.Backlight = d
	return nil
}

// Write implements st7735.Bus.
func (s *Sim) Write(p []byte) (int, error) {
	if s.cs == gpio.High {
		// Not selected.
		return len(p), nil
	}
	if s.dc == gpio.Low {
		for _, b := range p {
			s.command(b)
		}
		return len(p), nil
	}
	if s.cmd < 0 {
		return len(p), nil
	}
	op := s.last()
	op.Data = append(op.Data, p...)
	for _, b := range p {
		s.data(b)
	}
	return len(p), nil
}

// Read implements st7735.Reader. After a memory read command it returns a
// dummy byte then 3 bytes per pixel, each the 6 bits channel value shifted
// right by one bit.
func (s *Sim) Read(p []byte) (int, error) {
	if s.cs == gpio.High || s.cmd != cmdRAMRd {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	op := s.last()
	for i := range p {
		p[i] = s.readByte()
	}
	if s.BadReads != 0 {
		for i := range p {
			p[i] = 0x7F ^ byte(i)
		}
		if s.BadReads > 0 {
			s.BadReads--
		}
	}
	op.Read = append(op.Read, p...)
	return len(p), nil
}

// last returns the operation data is appended to.
func (s *Sim) last() *Op {
	if len(s.Ops) == 0 {
		s.Ops = append(s.Ops, Op{Cmd: byte(s.cmd)})
	}
	return &s.Ops[len(s.Ops)-1]
}

func (s *Sim) readByte() byte {
	i := s.rdPos
	s.rdPos++
	if i == 0 {
		// Dummy clock.
		return 0
	}
	ch := (i - 1) % 3
	px := [3]byte{}
	if s.cur.x < s.size && s.cur.y < s.size {
		px = s.mem[s.cur.y*s.size+s.cur.x]
	}
	if ch == 2 {
		s.cur.next()
	}
	return (px[ch] & 0xFC) >> 1
}

func (s *Sim) command(b byte) {
	s.cmd = int(b)
	s.args = s.args[:0]
	s.pending = nil
	s.rdPos = 0
	s.Ops = append(s.Ops, Op{Cmd: b})
	switch b {
	case cmdSWReset:
		s.softReset()
		s.cmd = int(b)
	case cmdRAMWr, cmdRAMRd:
		s.cur.home()
	case cmdDispOn:
		s.on = true
	case cmdDispOff:
		s.on = false
	}
}

func (s *Sim) data(b byte) {
	switch s.cmd {
	case cmdCASet, cmdRASet:
		s.args = append(s.args, b)
		if len(s.args) == 4 {
			start := int(s.args[0])<<8 | int(s.args[1])
			end := int(s.args[2])<<8 | int(s.args[3])
			if s.cmd == cmdCASet {
				s.cur.xs, s.cur.xe = start, end
			} else {
				s.cur.ys, s.cur.ye = start, end
			}
			s.cur.home()
		}
	case cmdCOLMod:
		s.colmod = b & 0x07
	case cmdMADCtl:
		s.madctl = b
	case cmdRAMWr:
		s.pending = append(s.pending, b)
		if s.colmod == 0x06 {
			if len(s.pending) == 3 {
				s.store([3]byte{s.pending[0] & 0xFC, s.pending[1] & 0xFC, s.pending[2] & 0xFC})
				s.pending = s.pending[:0]
			}
		} else if len(s.pending) == 2 {
			r, g, b, _ := rgb565.BGR565(uint16(s.pending[0])<<8 | uint16(s.pending[1])).RGBA()
			s.store([3]byte{byte(r >> 8), byte(g >> 8), byte(b >> 8)})
			s.pending = s.pending[:0]
		}
	}
}

func (s *Sim) store(px [3]byte) {
	if s.cur.x < s.size && s.cur.y < s.size {
		i := s.cur.y*s.size + s.cur.x
		s.mem[i] = px
		s.written[i] = true
	}
	s.cur.next()
}

// ColMod returns the interface pixel format register.
func (s *Sim) ColMod() byte {
	return s.colmod
}

// MADCtl returns the memory access control register.
func (s *Sim) MADCtl() byte {
	return s.madctl
}

// On reports whether the display was turned on.
func (s *Sim) On() bool {
	return s.on
}

// Window returns the current column and row address window. Max is one past
// the end address.
func (s *Sim) Window() image.Rectangle {
	return image.Rect(s.cur.xs, s.cur.ys, s.cur.xe+1, s.cur.ye+1)
}

// At returns the pixel at column address x and row address y. Cells never
// written return the zero color, so they can be told apart from black.
func (s *Sim) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= s.size || y >= s.size || !s.written[y*s.size+x] {
		return color.RGBA{}
	}
	px := s.mem[y*s.size+x]
	return color.RGBA{R: px[0], G: px[1], B: px[2], A: 0xFF}
}

// Image returns a copy of the frame memory, in address order. Cells never
// written are transparent.
func (s *Sim) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.size, s.size))
	for y := 0; y < s.size; y++ {
		for x := 0; x < s.size; x++ {
			img.SetRGBA(x, y, s.At(x, y))
		}
	}
	return img
}

// Commands returns the command bytes in the order they were received.
func (s *Sim) Commands() []byte {
	out := make([]byte, 0, len(s.Ops))
	for _, op := range s.Ops {
		out = append(out, op.Cmd)
	}
	return out
}

// Count returns the number of times cmd was received.
func (s *Sim) Count(cmd byte) int {
	n := 0
	for _, op := range s.Ops {
		if op.Cmd == cmd {
			n++
		}
	}
	return n
}

// ClearOps forgets the recorded operations.
func (s *Sim) ClearOps() {
	s.Ops = nil
	s.Delays = nil
}

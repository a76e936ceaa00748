// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/lcd/font"
	"github.com/GermanBionicSystems/lcd/rgb565"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	swReset = 0x01
	slpOut  = 0x11
	norOn   = 0x13
	invOff  = 0x20
	invOn   = 0x21
	dispOff = 0x28
	dispOn  = 0x29
	caSet   = 0x2A
	raSet   = 0x2B
	ramWr   = 0x2C
	ramRd   = 0x2E
	madCtl  = 0x36
	colMod  = 0x3A
	frmCtr1 = 0xB1
	frmCtr2 = 0xB2
	frmCtr3 = 0xB3
	invCtr  = 0xB4
	disSet5 = 0xB6
	pwCtr1  = 0xC0
	pwCtr2  = 0xC1
	pwCtr3  = 0xC2
	pwCtr4  = 0xC3
	pwCtr5  = 0xC4
	vmCtr1  = 0xC5
	gmCtrP1 = 0xE0
	gmCtrN1 = 0xE1
	pwCtr6  = 0xFC
)

// Memory access control bits.
const (
	madctlMY  = 0x80
	madctlMX  = 0x40
	madctlMV  = 0x20
	madctlBGR = 0x08
)

// Interface pixel formats.
const (
	colMod16 = 0x05
	colMod18 = 0x06
)

// resetDelay is the time the controller needs after a software reset.
const resetDelay = 120 * time.Millisecond

// DefaultOpts is the configuration of the common 1.8" 160x128 module.
var DefaultOpts = Opts{
	W:             160,
	H:             128,
	Orientation:   Rotate0,
	Freq:          15 * physic.MegaHertz,
	BacklightFreq: 1 * physic.KiloHertz,
}

// Opts defines the options for the device.
type Opts struct {
	// W and H are the canvas size at Rotate0.
	W, H int
	// Orientation is applied by Startup.
	Orientation Orientation
	// Freq is the SPI clock used by NewSPI.
	Freq physic.Frequency
	// BacklightFreq is the PWM frequency of the backlight pin used by NewSPI.
	BacklightFreq physic.Frequency
	// ReadBack tells NewSPI that the data line is readable, which enables
	// DetectFrameBuffer.
	//
	// A memory read spans two SPI transfers and the controller aborts it when
	// its chip select rises in between, so NewSPI requires a cs pin with
	// ReadBack.
	ReadBack bool
	// BGR sets the BGR bit of the memory access control register, for panels
	// wired with red and blue exchanged.
	BGR bool
	// Order is the byte order pixels are sent in. Defaults to rgb565.Wire.
	Order binary.ByteOrder
	// SourceOrder is the byte order of the RGB565 buffers passed to
	// DrawRGB565 and PutRGB565. Defaults to big endian.
	SourceOrder binary.ByteOrder
	// Script replaces DefaultScript in Startup.
	Script Script
}

// Dev is an open handle to a ST7735 controller.
type Dev struct {
	bus       Bus
	ch        channel
	reset     func() error
	backlight func(gpio.Duty) error

	order    binary.ByteOrder
	srcOrder binary.ByteOrder
	bgr      bool
	script   Script

	// base is the geometry at Rotate0, geom the one in effect.
	base        Geometry
	geom        Geometry
	orientation Orientation

	font   *font.Font
	bg, fg uint32

	// streaming is set between StartRGB565 and FinishRGB565.
	streaming bool
	// carry holds the first byte of a pixel split across PutRGB565 calls.
	carry    byte
	hasCarry bool
	// next is lazily allocated by Draw.
	next *rgb565.Image
}

// New returns a Dev driving the controller through b.
//
// Optional capabilities are discovered from b: Reader enables
// DetectFrameBuffer, Resetter hardware resets and Backlighter SetBacklight.
// Nothing is sent to the controller; call Reset and Startup next.
func New(b Bus, opts *Opts) (*Dev, error) {
	if b == nil {
		return nil, ErrInvalidArgs
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrInvalidArgs, opts.W, opts.H)
	}
	if opts.Orientation > Rotate270 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgs, opts.Orientation)
	}
	d := &Dev{
		bus:         b,
		ch:          channel{bus: b},
		order:       opts.Order,
		srcOrder:    opts.SourceOrder,
		bgr:         opts.BGR,
		script:      opts.Script,
		base:        Geometry{W: opts.W, H: opts.H},
		orientation: opts.Orientation,
		fg:          0xFFFFFF,
		bg:          0x000000,
	}
	d.geom = Orient(d.base, d.orientation)
	if d.order == nil {
		d.order = rgb565.Wire
	}
	if d.srcOrder == nil {
		d.srcOrder = binary.BigEndian
	}
	if d.script == nil {
		d.script = DefaultScript
	}
	if r, ok := b.(Reader); ok {
		d.ch.rd = r.Read
	}
	if r, ok := b.(Resetter); ok {
		d.reset = r.Reset
	}
	if bl, ok := b.(Backlighter); ok {
		d.backlight = bl.SetBacklight
	}
	return d, nil
}

// NewSPI returns a Dev driving a controller connected to a SPI port.
//
// dc is required. cs may be nil when the SPI controller drives the chip
// select, except with Opts.ReadBack. rst and bl are optional; without rst,
// Reset always uses the software reset command. The controller is reset and
// initialized.
func NewSPI(p spi.Port, dc, cs, rst, bl gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.ReadBack && (cs == nil || cs == gpio.INVALID) {
		return nil, fmt.Errorf("%w: ReadBack requires a cs pin", ErrInvalidArgs)
	}
	b, err := newSPIBus(p, dc, cs, rst, bl, opts)
	if err != nil {
		return nil, err
	}
	d, err := New(b, opts)
	if err != nil {
		return nil, err
	}
	if !opts.ReadBack {
		d.ch.rd = nil
	}
	if rst == nil {
		d.reset = nil
	}
	if bl == nil {
		d.backlight = nil
	}
	if err := d.Reset(true); err != nil {
		return nil, err
	}
	if err := d.Startup(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("st7735.Dev{%v, %dx%d, %s}", d.bus, d.geom.W, d.geom.H, d.orientation)
}

// Startup replays the initialization script then applies the orientation.
func (d *Dev) Startup() error {
	d.runScript(d.script)
	if err := d.ch.done(); err != nil {
		return err
	}
	return d.SetOrientation(d.orientation)
}

// Reset resets the controller, with the reset line when hw is set and the
// bus has one, otherwise with the software reset command.
//
// A transfer opened by StartRGB565 is abandoned; PutRGB565 then returns
// ErrProtocol.
func (d *Dev) Reset(hw bool) error {
	d.streaming = false
	d.hasCarry = false
	if hw && d.reset != nil {
		if err := d.reset(); err != nil {
			return fmt.Errorf("st7735: reset: %w", err)
		}
		d.ch.release()
		return d.ch.done()
	}
	d.ch.command(swReset)
	if d.ch.err == nil {
		d.bus.Delay(resetDelay)
	}
	d.ch.release()
	return d.ch.done()
}

// Close implements io.Closer. It doesn't touch the controller.
func (d *Dev) Close() error {
	return nil
}

// Halt implements conn.Resource. It turns the display off; Startup turns
// it back on.
func (d *Dev) Halt() error {
	d.ch.command(dispOff)
	d.ch.end()
	return d.ch.done()
}

// Invert inverts the colors of the whole display.
func (d *Dev) Invert(on bool) error {
	c := byte(invOff)
	if on {
		c = invOn
	}
	d.ch.command(c)
	d.ch.end()
	return d.ch.done()
}

// SetBacklight sets the backlight duty cycle.
func (d *Dev) SetBacklight(duty gpio.Duty) error {
	if d.backlight == nil {
		return ErrMissingCapability
	}
	if duty < 0 || duty > gpio.DutyMax {
		return fmt.Errorf("%w: duty %s", ErrInvalidArgs, duty)
	}
	return d.backlight(duty)
}

// SetFont selects the font used by PutChar and Puts and resets the colors
// to white on black.
func (d *Dev) SetFont(f *font.Font) error {
	if f == nil {
		return ErrInvalidArgs
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("st7735: %w", err)
	}
	d.font = f
	d.fg, d.bg = 0xFFFFFF, 0x000000
	return nil
}

// SetFontColors sets the 0xRRGGBB colors of text.
func (d *Dev) SetFontColors(bg, fg uint32) {
	d.bg, d.fg = bg, fg
}

// FontSize returns the width of the font's first glyph and its height.
func (d *Dev) FontSize() (w, h int, err error) {
	if d.font == nil {
		return 0, 0, ErrNoFont
	}
	w, h = d.font.Size()
	return w, h, nil
}

var _ conn.Resource = &Dev{}
var _ display.Drawer = &Dev{}

// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Bus is the byte level access to the controller.
//
// Implementations are not expected to be safe for concurrent use; Dev
// serializes every access.
type Bus interface {
	// Write sends p and returns the number of bytes sent.
	Write(p []byte) (int, error)
	// SetLines drives the chip select and data/command lines.
	SetLines(cs, dc gpio.Level) error
	// Delay blocks for d.
	Delay(d time.Duration)
}

// Reader is implemented by a Bus that can clock data out of the controller.
// It is required by Dev.DetectFrameBuffer.
type Reader interface {
	Read(p []byte) (int, error)
}

// Resetter is implemented by a Bus with a hardware reset line.
type Resetter interface {
	Reset() error
}

// Backlighter is implemented by a Bus that controls the backlight.
type Backlighter interface {
	SetBacklight(duty gpio.Duty) error
}

// spiBus drives the controller through a periph.io SPI connection and GPIO
// pins.
type spiBus struct {
	c         spi.Conn
	dc        gpio.PinOut
	cs        gpio.PinOut
	rst       gpio.PinOut
	bl        gpio.PinOut
	blFreq    physic.Frequency
	maxTxSize int
	clock     clockwork.Clock
}

func newSPIBus(p spi.Port, dc, cs, rst, bl gpio.PinOut, opts *Opts) (*spiBus, error) {
	if dc == nil || dc == gpio.INVALID {
		return nil, fmt.Errorf("%w: dc pin is required", ErrInvalidArgs)
	}
	f := opts.Freq
	if f == 0 {
		f = DefaultOpts.Freq
	}
	c, err := p.Connect(f, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("st7735: %w", err)
	}
	maxTxSize := 0
	if l, ok := c.(conn.Limits); ok {
		maxTxSize = l.MaxTxSize()
	}
	if maxTxSize == 0 {
		maxTxSize = 4096
	}
	b := &spiBus{
		c:         c,
		dc:        dc,
		cs:        cs,
		rst:       rst,
		bl:        bl,
		blFreq:    opts.BacklightFreq,
		maxTxSize: maxTxSize,
		clock:     clockwork.NewRealClock(),
	}
	if b.blFreq == 0 {
		b.blFreq = DefaultOpts.BacklightFreq
	}
	return b, nil
}

func (b *spiBus) String() string {
	return fmt.Sprintf("%s, %s", b.c, b.dc)
}

func (b *spiBus) Write(p []byte) (int, error) {
	n := 0
	for len(p) != 0 {
		chunk := p
		if len(chunk) > b.maxTxSize {
			chunk = chunk[:b.maxTxSize]
		}
		if err := b.c.Tx(chunk, nil); err != nil {
			return n, err
		}
		n += len(chunk)
		p = p[len(chunk):]
	}
	return n, nil
}

// Read clocks out len(p) bytes while sending zeros.
func (b *spiBus) Read(p []byte) (int, error) {
	if len(p) > b.maxTxSize {
		return 0, io.ErrShortBuffer
	}
	if err := b.c.Tx(make([]byte, len(p)), p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetLines sets dc, and cs when the chip select is not driven by the SPI
// controller itself.
func (b *spiBus) SetLines(cs, dc gpio.Level) error {
	if b.cs != nil {
		if err := b.cs.Out(cs); err != nil {
			return err
		}
	}
	return b.dc.Out(dc)
}

func (b *spiBus) Delay(d time.Duration) {
	b.clock.Sleep(d)
}

// Reset pulses the active low reset line.
func (b *spiBus) Reset() error {
	if err := b.rst.Out(gpio.Low); err != nil {
		return err
	}
	b.clock.Sleep(10 * time.Millisecond)
	if err := b.rst.Out(gpio.High); err != nil {
		return err
	}
	b.clock.Sleep(resetDelay)
	return nil
}

func (b *spiBus) SetBacklight(duty gpio.Duty) error {
	switch duty {
	case 0:
		return b.bl.Out(gpio.Low)
	case gpio.DutyMax:
		return b.bl.Out(gpio.High)
	}
	return b.bl.PWM(duty, b.blFreq)
}

var _ Bus = &spiBus{}
var _ Reader = &spiBus{}
var _ Resetter = &spiBus{}
var _ Backlighter = &spiBus{}

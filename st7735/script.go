// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"fmt"
	"time"
)

// Command is one step of an initialization script.
type Command struct {
	Cmd   byte
	Args  []byte
	Delay time.Duration
}

// Script is an initialization sequence, replayed in order.
type Script []Command

// delayFlag is set in the argument count byte when a delay byte follows the
// arguments.
const delayFlag = 0x80

// ParseScript decodes the compact vendor encoding:
//
//	[count] then count times: [cmd] [nargs | 0x80 if delay] [args...] [delay]
//
// A delay byte of 255 means 500ms.
func ParseScript(b []byte) (Script, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("st7735: empty script")
	}
	count := int(b[0])
	b = b[1:]
	s := make(Script, 0, count)
	for i := 0; i < count; i++ {
		if len(b) < 2 {
			return nil, fmt.Errorf("st7735: script truncated at command %d", i)
		}
		c := Command{Cmd: b[0]}
		n := int(b[1] &^ delayFlag)
		delayed := b[1]&delayFlag != 0
		b = b[2:]
		if len(b) < n {
			return nil, fmt.Errorf("st7735: script truncated in arguments of command %d (%#02x)", i, c.Cmd)
		}
		if n != 0 {
			c.Args = append([]byte(nil), b[:n]...)
		}
		b = b[n:]
		if delayed {
			if len(b) == 0 {
				return nil, fmt.Errorf("st7735: script truncated in delay of command %d (%#02x)", i, c.Cmd)
			}
			ms := int(b[0])
			if ms == 255 {
				ms = 500
			}
			c.Delay = time.Duration(ms) * time.Millisecond
			b = b[1:]
		}
		s = append(s, c)
	}
	if len(b) != 0 {
		return nil, fmt.Errorf("st7735: %d trailing bytes after script", len(b))
	}
	return s, nil
}

// runScript sends every command of s, waiting after each when requested.
func (d *Dev) runScript(s Script) {
	for _, c := range s {
		d.ch.command(c.Cmd)
		d.ch.data(c.Args...)
		if c.Delay != 0 && d.ch.err == nil {
			d.bus.Delay(c.Delay)
		}
	}
}

func mustParse(b []byte) Script {
	s, err := ParseScript(b)
	if err != nil {
		panic(err)
	}
	return s
}

// Vendor initialization sequences for ST7735B and ST7735R based panels.
var (
	// ScriptB initializes ST7735B controllers.
	ScriptB = mustParse([]byte{
		18,
		swReset, delayFlag, 50,
		slpOut, delayFlag, 255,
		colMod, 1 | delayFlag, colMod16, 10,
		frmCtr1, 3 | delayFlag, 0x00, 0x06, 0x03, 10,
		madCtl, 1, 0x08,
		disSet5, 2, 0x15, 0x02,
		invCtr, 1, 0x00,
		pwCtr1, 2 | delayFlag, 0x02, 0x70, 10,
		pwCtr2, 1, 0x05,
		pwCtr3, 2, 0x01, 0x02,
		vmCtr1, 2 | delayFlag, 0x3C, 0x38, 10,
		pwCtr6, 2, 0x11, 0x15,
		gmCtrP1, 16,
		0x09, 0x16, 0x09, 0x20, 0x21, 0x1B, 0x13, 0x19,
		0x17, 0x15, 0x1E, 0x2B, 0x04, 0x05, 0x02, 0x0E,
		gmCtrN1, 16 | delayFlag,
		0x0B, 0x14, 0x08, 0x1E, 0x22, 0x1D, 0x18, 0x1E,
		0x1B, 0x1A, 0x24, 0x2B, 0x06, 0x06, 0x02, 0x0F,
		10,
		caSet, 4, 0x00, 0x02, 0x00, 0x81,
		raSet, 4, 0x00, 0x02, 0x00, 0x81,
		norOn, delayFlag, 10,
		dispOn, delayFlag, 255,
	})

	// ScriptR1 is the first part of the ST7735R sequence, common to every
	// tab color.
	ScriptR1 = mustParse([]byte{
		15,
		swReset, delayFlag, 150,
		slpOut, delayFlag, 255,
		frmCtr1, 3, 0x01, 0x2C, 0x2D,
		frmCtr2, 3, 0x01, 0x2C, 0x2D,
		frmCtr3, 6, 0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D,
		invCtr, 1, 0x07,
		pwCtr1, 3, 0xA2, 0x02, 0x84,
		pwCtr2, 1, 0xC5,
		pwCtr3, 2, 0x0A, 0x00,
		pwCtr4, 2, 0x8A, 0x2A,
		pwCtr5, 2, 0x8A, 0xEE,
		vmCtr1, 1, 0x0E,
		invOff, 0,
		madCtl, 1, 0xC8,
		colMod, 1, colMod16,
	})

	// ScriptR2Red sets the 128x160 window of red tab panels.
	ScriptR2Red = mustParse([]byte{
		2,
		caSet, 4, 0x00, 0x00, 0x00, 0x7F,
		raSet, 4, 0x00, 0x00, 0x00, 0x9F,
	})

	// ScriptR3 loads the gamma tables and turns the display on.
	ScriptR3 = mustParse([]byte{
		4,
		gmCtrP1, 16,
		0x02, 0x1C, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2D,
		0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10,
		gmCtrN1, 16,
		0x03, 0x1D, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D,
		0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10,
		norOn, delayFlag, 10,
		dispOn, delayFlag, 100,
	})

	// DefaultScript is replayed by Dev.Startup unless Opts.Script is set.
	DefaultScript = concat(ScriptB, ScriptR1, ScriptR2Red, ScriptR3)
)

func concat(scripts ...Script) Script {
	var out Script
	for _, s := range scripts {
		out = append(out, s...)
	}
	return out
}

// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

// The GM[2:0] pads of the controller select a 128x160 or a 132x162 frame
// memory. They can't be read back, and neither can the CASET register they
// set at reset. What can be observed is where the column address wraps:
// after 128 pixels for GM=011, after 132 for GM=000. Writing bands of 132
// pixels, each with its own gray level, then reading the first pixel of the
// following rows tells both apart.
//
// A 132x162 memory behind a 128x160 panel needs the canvas shifted by 1
// pixel along the long axis and 2 along the short one.

// probePatterns are the gray levels of the successive bands. The two low
// bits are dropped by the 18 bits format so they are zero.
var probePatterns = [4]byte{0xA8, 0xCC, 0xE0, 0x90}

const (
	probeAttempts = 3
	// probeBand is the width of the wide configuration.
	probeBand = 132
	// probeRowEnd is the last row of the read window.
	probeRowEnd = 99
	// probeInconsistent is returned by probe when a row holds an unexpected
	// value.
	probeInconsistent = 0xFF
)

// Frame memory sizes, long axis first as seen at Rotate0.
const (
	narrowW, narrowH = 160, 128
	wideW, wideH     = 162, 132
)

// DetectFrameBuffer returns the size of the controller's frame memory:
// 160x128 or 162x132.
//
// It must run after a reset and before anything is drawn; it overwrites the
// top of the frame memory and leaves the controller in 18 bits per pixel
// mode. On success, reset and call Startup before drawing. On failure the
// state of the controller is unknown and it must be reset too.
//
// The bus must implement Reader.
func (d *Dev) DetectFrameBuffer() (w, h int, err error) {
	if d == nil {
		return 0, 0, ErrInvalidArgs
	}
	if d.ch.rd == nil {
		return 0, 0, ErrMissingCapability
	}
	for i := 0; i < probeAttempts; i++ {
		rows, err := d.probe()
		if err != nil {
			return 0, 0, err
		}
		switch rows {
		case 0x00:
			// Every row starts with the previous band: 128 columns.
			return narrowW, narrowH, nil
		case 0x0E:
			// Every row starts with its own band: 132 columns.
			return wideW, wideH, nil
		}
		// Restore the reset value of CASET before trying again.
		if err := d.Reset(false); err != nil {
			return 0, 0, err
		}
	}
	return 0, 0, ErrOperationFailed
}

// probe writes the bands and reads back rows 1 to 3. Bit n of the result is
// set when row n starts with band n.
func (d *Dev) probe() (byte, error) {
	d.ch.release()
	// 18 bits: one byte per channel, 6 significant bits each.
	d.writeRegister(colMod, colMod18)

	d.ch.command(ramWr)
	d.ch.begin()
	band := make([]byte, 3*probeBand)
	for _, p := range probePatterns {
		for i := range band {
			band[i] = p
		}
		d.ch.write(band)
	}
	d.ch.end()

	var rows byte
	// A dummy byte comes first, then red, green and blue.
	buf := make([]byte, 4)
	for row := 1; row < len(probePatterns); row++ {
		d.ch.command(raSet)
		d.ch.data(0, byte(row), 0, probeRowEnd)
		d.ch.command(ramRd)
		d.ch.read(buf)
		d.ch.release()
		if err := d.ch.done(); err != nil {
			return 0, err
		}
		switch {
		case readsAs(buf[1:], probePatterns[row]):
			rows |= 1 << uint(row)
		case readsAs(buf[1:], probePatterns[row-1]):
		default:
			return probeInconsistent, nil
		}
	}
	return rows, nil
}

// readsAs reports whether every sample matches pattern. The read clock is
// one cycle late so samples are shifted right by one bit.
func readsAs(samples []byte, pattern byte) bool {
	for _, s := range samples {
		if s != pattern>>1 {
			return false
		}
	}
	return true
}

// Calibrate resets the controller, detects its frame memory, centers the
// canvas in it and runs Startup.
func (d *Dev) Calibrate() error {
	if err := d.Reset(true); err != nil {
		return err
	}
	w, h, err := d.DetectFrameBuffer()
	if err != nil {
		return err
	}
	if err := d.SetFrameBufferResolution(w, h); err != nil {
		return err
	}
	if err := d.Reset(true); err != nil {
		return err
	}
	return d.Startup()
}

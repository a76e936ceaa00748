// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/gpio"
)

// channelState is what the controller expects next on the bus.
type channelState uint8

const (
	expectCommand channelState = iota
	expectData
)

func (s channelState) String() string {
	if s == expectData {
		return "data"
	}
	return "command"
}

// channel frames command and data bytes with the control lines.
//
// The first error is kept and every later call becomes a no-op until done()
// is called, so a sequence of transfers can be written without checking
// each step.
type channel struct {
	bus   Bus
	rd    func([]byte) (int, error)
	state channelState
	err   error
}

func (c *channel) lines(cs, dc gpio.Level) {
	if c.err != nil {
		return
	}
	if err := c.bus.SetLines(cs, dc); err != nil {
		c.err = fmt.Errorf("st7735: control lines: %w", err)
	}
}

func (c *channel) send(p []byte) {
	n, err := c.bus.Write(p)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		c.err = fmt.Errorf("st7735: write: %w", err)
	}
}

// command selects chip and command mode, then sends cmd. Arguments or pixels
// may follow.
func (c *channel) command(cmd byte) {
	c.lines(gpio.Low, gpio.Low)
	if c.err != nil {
		return
	}
	c.send([]byte{cmd})
	if c.err == nil {
		c.state = expectData
	}
}

// begin switches to data mode with the chip selected.
func (c *channel) begin() {
	c.lines(gpio.Low, gpio.High)
}

// write sends argument or pixel bytes; it must follow a command.
func (c *channel) write(p []byte) {
	if c.err != nil || len(p) == 0 {
		return
	}
	if c.state != expectData {
		c.err = ErrProtocol
		return
	}
	c.send(p)
}

// end deselects the chip. The next transfer must be a command.
func (c *channel) end() {
	c.lines(gpio.High, gpio.High)
	if c.err == nil {
		c.state = expectCommand
	}
}

// data sends one framed block of arguments.
func (c *channel) data(p ...byte) {
	c.begin()
	c.write(p)
	c.end()
}

// read clocks len(p) bytes out of the controller after a read command.
func (c *channel) read(p []byte) {
	if c.err != nil {
		return
	}
	if c.state != expectData {
		c.err = ErrProtocol
		return
	}
	n, err := c.rd(p)
	if err == nil && n != len(p) {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		c.err = fmt.Errorf("st7735: read: %w", err)
	}
}

// release deselects the chip and leaves dc low, the idle state expected
// before a read sequence.
func (c *channel) release() {
	c.lines(gpio.High, gpio.Low)
	if c.err == nil {
		c.state = expectCommand
	}
}

// done returns the pending error and resets it.
func (c *channel) done() error {
	err := c.err
	c.err = nil
	return err
}

// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import "errors"

var (
	// ErrInvalidArgs is returned when a required reference is missing.
	ErrInvalidArgs = errors.New("st7735: invalid arguments")
	// ErrMissingCapability is returned when the Bus lacks an optional
	// capability needed by the operation, e.g. Reader for DetectFrameBuffer.
	ErrMissingCapability = errors.New("st7735: missing bus capability")
	// ErrOperationFailed is returned when frame buffer detection did not
	// converge.
	ErrOperationFailed = errors.New("st7735: operation failed")
	// ErrOutOfBounds is returned when the requested geometry is outside the
	// canvas. Nothing is sent to the controller in that case.
	ErrOutOfBounds = errors.New("st7735: out of bounds")
	// ErrProtocol is returned when pixel or argument data is sent while the
	// controller expects a command.
	ErrProtocol = errors.New("st7735: data sent without a command")
	// ErrNoFont is returned by text operations before SetFont.
	ErrNoFont = errors.New("st7735: no font set")
	// ErrShortBuffer is returned when a pixel buffer is smaller than the
	// rectangle it is drawn into.
	ErrShortBuffer = errors.New("st7735: pixel buffer too short")
)

// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package font defines the packed bitmap fonts drawn by the TFT drivers and
// rasterizes them from golang.org/x/image/font faces.
//
// Every glyph is Height rows tall. Each row uses (Width+7)/8 bytes, the
// leftmost pixel of a byte being its least significant bit. A set bit is
// drawn with the foreground color, a clear bit with the background color.
package font

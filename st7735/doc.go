// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package st7735 controls a color TFT LCD driven by a Sitronix ST7735B or
// ST7735R controller, such as the common 1.8" 160x128 modules.
//
// The controller is driven over SPI with an extra data/command line. Pixels
// are sent as 16 bits BGR565 values; the rgb565 package converts from the
// usual formats. Dev implements display.Drawer so any image.Image can be
// drawn with Draw, and also exposes the primitive operations of the
// controller: pixels, lines, filled rectangles, bitmap text and bulk pixel
// transfers.
//
// The controller has a 132x162 frame memory but some panels strap it to
// 128x160. Modules sold with a 128x160 glass behind a 132x162 memory show a
// garbage border until the canvas is offset. DetectFrameBuffer finds out
// which configuration is in use; it needs the SDA line to be readable, which
// is enabled with Opts.ReadBack.
//
// # Datasheets
//
//   - ST7735R: https://www.displayfuture.com/Display/datasheet/controller/ST7735.pdf
//   - ST7735S: https://www.waveshare.com/w/upload/e/e2/ST7735S_V1.1_20111121.pdf
package st7735

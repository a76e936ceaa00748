// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcd is a container for the ST7735 TFT LCD driver and its
// supporting packages.
//
// st7735 is the driver itself. rgb565 holds the 16 bits pixel format and an
// image.Image using it, font the bitmap fonts used for text, screen2d a
// terminal preview, panelview a browser preview streamed over HTTP and
// displayer an adapter to the tinygo display interface.
// st7735/st7735test simulates the controller for tests.
package lcd

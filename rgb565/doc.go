// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgb565 implements the 16 bits per pixel color formats used by
// ST77xx TFT controllers.
//
// Two 5-6-5 layouts are involved. RGB565 is the common one, with red in bits
// 15-11, green in bits 10-5 and blue in bits 4-0. BGR565 is what the panel
// stores in its frame memory when it is wired BGR: blue in bits 15-11, green
// in bits 10-5 and red in bits 4-0.
//
// The byte order a value is sent in over the bus is never implied by the
// host; every function that produces or consumes bytes takes a
// binary.ByteOrder.
package rgb565

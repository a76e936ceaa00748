// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/GermanBionicSystems/lcd/displayer"
	"github.com/GermanBionicSystems/lcd/st7735"
	"github.com/fogleman/gg"
	"github.com/jonboulle/clockwork"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// scene renders the demo animation: a vector image drawn with gg and pushed
// through Dev.Draw, a caption with the driver's bitmap font and a status
// line drawn by tinyfont through the displayer adapter.
type scene struct {
	dev *st7735.Dev
	dc  *gg.Context
	tf  *displayer.Dev
}

func newScene(dev *st7735.Dev) *scene {
	w, h := dev.Resolution()
	return &scene{dev: dev, dc: gg.NewContext(w, h), tf: displayer.New(dev)}
}

// background returns frame i of the vector part of the scene.
func (s *scene) background(i int) image.Image {
	dc := s.dc
	w, h := float64(dc.Width()), float64(dc.Height())
	dc.SetRGB(0, 0, 0.2)
	dc.Clear()

	dc.SetRGB(0.3, 0.3, 0.6)
	dc.SetLineWidth(2)
	dc.DrawRectangle(1, 1, w-2, h-2)
	dc.Stroke()

	a := 2 * math.Pi * float64(i%60) / 60
	r := math.Min(w, h) / 3
	cx, cy := w/2, h/2+6
	dc.SetRGB(1, 0.8, 0)
	dc.DrawCircle(cx+r*math.Cos(a), cy+r*math.Sin(a), r/4)
	dc.Fill()
	dc.SetRGB(0.2, 0.9, 0.4)
	dc.DrawLine(cx, cy, cx+r*math.Cos(-a), cy+r*math.Sin(-a))
	dc.Stroke()
	return dc.Image()
}

// frame draws frame i on the device.
func (s *scene) frame(i int) error {
	if err := s.dev.Draw(s.dev.Bounds(), s.background(i), image.Point{}); err != nil {
		return err
	}
	s.dev.SetFontColors(0x000033, 0xFFFF00)
	if _, err := s.dev.Puts(image.Pt(3, 3), fmt.Sprintf("frame %d", i)); err != nil {
		return err
	}
	_, h := s.dev.Resolution()
	tinyfont.WriteLine(s.tf, &proggy.TinySZ8pt7b, 3, int16(h-4), s.dev.Orientation().String(), color.RGBA{R: 0xC0, G: 0xC0, B: 0xC0, A: 0xFF})
	return s.tf.Display()
}

// runFrames calls frame at fps until frames were drawn, frames is 0 and ctx
// is canceled, or frame fails.
func runFrames(ctx context.Context, clock clockwork.Clock, fps, frames int, frame func(i int) error) error {
	t := clock.NewTicker(time.Second / time.Duration(fps))
	defer t.Stop()
	for i := 0; ; i++ {
		if err := frame(i); err != nil {
			return err
		}
		if frames > 0 && i+1 >= frames {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.Chan():
		}
	}
}

// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/lcd/panelview"
	"github.com/GermanBionicSystems/lcd/st7735"
	"github.com/GermanBionicSystems/lcd/st7735/st7735test"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"periph.io/x/conn/v3/physic"
)

// Config is the demo configuration, read from a TOML file and overridden by
// flags.
type Config struct {
	// Sim drives a simulated controller and previews it in the terminal.
	Sim bool `toml:"sim"`
	// Variant is the simulated frame memory: "narrow" or "wide".
	Variant string `toml:"variant" validate:"oneof=narrow wide"`

	SPI string `toml:"spi"`
	DC  string `toml:"dc" validate:"required_unless=Sim true"`
	// CS is a GPIO driving the chip select, empty when the SPI controller
	// drives it. Required by ReadBack on hardware.
	CS  string `toml:"cs"`
	RST string `toml:"rst"`
	BL  string `toml:"bl"`
	// SpeedHz is the SPI clock, 0 for the driver default.
	SpeedHz int64 `toml:"speed_hz" validate:"gte=0"`

	Width    int  `toml:"width" validate:"min=1,max=162"`
	Height   int  `toml:"height" validate:"min=1,max=162"`
	Rotation int  `toml:"rotation" validate:"oneof=0 90 180 270"`
	BGR      bool `toml:"bgr"`
	// ReadBack tells that the SDA line is bidirectional.
	ReadBack bool `toml:"readback"`
	// Detect calibrates the canvas offsets at startup. It requires ReadBack
	// on hardware.
	Detect bool `toml:"detect"`

	// Font is a TrueType file, "goregular" or empty for the built-in 7x13
	// font.
	Font     string  `toml:"font"`
	FontSize float64 `toml:"font_size" validate:"gte=4,lte=64"`

	FPS    int `toml:"fps" validate:"min=1,max=60"`
	Frames int `toml:"frames" validate:"gte=0"`
	// Scale reduces the terminal preview.
	Scale int `toml:"scale" validate:"min=1,max=8"`
	// Backlight is the backlight duty in percent.
	Backlight int `toml:"backlight" validate:"min=0,max=100"`

	// HTTP is the listen address of the browser view of the simulated panel.
	// Empty disables it.
	HTTP string `toml:"http"`
	// HTTPFormat is the default image format of the browser view.
	HTTPFormat panelview.Format `toml:"http_format"`
}

// DefaultConfig is a simulated 160x128 module.
var DefaultConfig = Config{
	Sim:       true,
	Variant:   "wide",
	SPI:       "",
	DC:        "GPIO24",
	RST:       "GPIO25",
	Width:     160,
	Height:    128,
	FontSize:  12,
	FPS:       10,
	Frames:    0,
	Scale:     2,
	Backlight: 100,
}

var (
	errDetectNeedsReadBack = errors.New("detect requires readback on hardware")
	errHTTPNeedsSim        = errors.New("the browser view requires the simulator")
	errReadBackNeedsCS     = errors.New("readback requires a cs pin on hardware")
)

// LoadConfig reads path on top of DefaultConfig. An empty path returns the
// defaults.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	cfg := DefaultConfig
	if path == "" {
		return cfg, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks the ranges of every field.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Detect && !c.Sim && !c.ReadBack {
		return errDetectNeedsReadBack
	}
	if c.ReadBack && !c.Sim && c.CS == "" {
		return errReadBackNeedsCS
	}
	if c.HTTP != "" && !c.Sim {
		return errHTTPNeedsSim
	}
	return nil
}

// Orientation converts Rotation.
func (c *Config) Orientation() st7735.Orientation {
	return st7735.Orientation(c.Rotation / 90)
}

// Opts returns the driver options. Width and Height are the canvas size in
// the configured rotation while Opts wants it at Rotate0.
func (c *Config) Opts() st7735.Opts {
	opts := st7735.DefaultOpts
	opts.W, opts.H = c.Width, c.Height
	if c.Rotation == 90 || c.Rotation == 270 {
		opts.W, opts.H = c.Height, c.Width
	}
	opts.Orientation = c.Orientation()
	opts.BGR = c.BGR
	opts.ReadBack = c.ReadBack
	if c.SpeedHz != 0 {
		opts.Freq = physic.Frequency(c.SpeedHz) * physic.Hertz
	}
	return opts
}

// SimVariant returns the simulated frame memory configuration.
func (c *Config) SimVariant() st7735test.Variant {
	if c.Variant == "narrow" {
		return st7735test.Narrow
	}
	return st7735test.Wide
}

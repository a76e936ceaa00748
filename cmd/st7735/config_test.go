// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/GermanBionicSystems/lcd/panelview"
	"github.com/GermanBionicSystems/lcd/st7735"
	"github.com/GermanBionicSystems/lcd/st7735/st7735test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig, cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	data := `
sim = false
spi = "SPI0.0"
dc = "GPIO22"
cs = "GPIO8"
bl = "GPIO18"
rotation = 90
readback = true
detect = true
speed_hz = 8000000
http_format = "jpeg"
`
	require.NoError(t, afero.WriteFile(fs, "/etc/st7735.toml", []byte(data), 0o600))

	cfg, err := LoadConfig(fs, "/etc/st7735.toml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Sim)
	assert.Equal(t, "SPI0.0", cfg.SPI)
	assert.Equal(t, "GPIO22", cfg.DC)
	assert.Equal(t, "GPIO8", cfg.CS)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultConfig.RST, cfg.RST)
	assert.Equal(t, DefaultConfig.FPS, cfg.FPS)

	opts := cfg.Opts()
	assert.Equal(t, st7735.Rotate90, opts.Orientation)
	assert.Equal(t, 128, opts.W)
	assert.Equal(t, 160, opts.H)
	assert.Equal(t, 8*physic.MegaHertz, opts.Freq)
	assert.True(t, opts.ReadBack)
	assert.Equal(t, panelview.JPEG, cfg.HTTPFormat)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	_, err := LoadConfig(fs, "/missing.toml")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.toml", []byte("width = \"wide\""), 0o600))
	_, err = LoadConfig(fs, "/bad.toml")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/format.toml", []byte(`http_format = "gif"`), 0o600))
	_, err = LoadConfig(fs, "/format.toml")
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"rotation", func(c *Config) { c.Rotation = 45 }},
		{"variant", func(c *Config) { c.Variant = "square" }},
		{"width", func(c *Config) { c.Width = 0 }},
		{"fps", func(c *Config) { c.FPS = 0 }},
		{"backlight", func(c *Config) { c.Backlight = 101 }},
		{"dc on hardware", func(c *Config) { c.Sim, c.DC = false, "" }},
		{"detect without readback", func(c *Config) { c.Sim, c.Detect = false, true }},
		{"readback without cs", func(c *Config) { c.Sim, c.ReadBack = false, true }},
		{"http on hardware", func(c *Config) { c.Sim, c.HTTP = false, ":8080" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig
	cfg.DC = ""
	cfg.Detect = true
	assert.NoError(t, cfg.Validate(), "the simulator needs no pin and can always detect")
}

func TestConfig_SimVariant(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig
	assert.Equal(t, st7735test.Wide, cfg.SimVariant())
	cfg.Variant = "narrow"
	assert.Equal(t, st7735test.Narrow, cfg.SimVariant())
}

func TestLoadFont(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	cfg := DefaultConfig
	f, err := loadFont(fs, &cfg)
	require.NoError(t, err)
	assert.Equal(t, "basic7x13", f.Name)

	cfg.Font = "goregular"
	f, err = loadFont(fs, &cfg)
	require.NoError(t, err)
	assert.Equal(t, "goregular", f.Name)
	require.NoError(t, f.Validate())

	cfg.Font = "/fonts/missing.ttf"
	_, err = loadFont(fs, &cfg)
	require.Error(t, err)
}

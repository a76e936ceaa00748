// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// st7735 draws an animation on a ST7735 TFT LCD, or on a simulated one
// previewed in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/lcd/font"
	"github.com/GermanBionicSystems/lcd/panelview"
	"github.com/GermanBionicSystems/lcd/screen2d"
	"github.com/GermanBionicSystems/lcd/st7735"
	"github.com/GermanBionicSystems/lcd/st7735/st7735test"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// device is an initialized display and what is needed to tear it down.
type device struct {
	dev   *st7735.Dev
	sim   *st7735test.Sim
	close func() error
}

// openSim returns a Dev on a simulated controller.
func openSim(cfg *Config) (*device, error) {
	s := st7735test.NewSim(cfg.SimVariant())
	opts := cfg.Opts()
	dev, err := st7735.New(s, &opts)
	if err != nil {
		return nil, err
	}
	if err := dev.Reset(true); err != nil {
		return nil, err
	}
	if err := dev.Startup(); err != nil {
		return nil, err
	}
	return &device{dev: dev, sim: s, close: func() error { return nil }}, nil
}

// pin returns the named GPIO, nil for an empty name.
func pin(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return p, nil
}

// openSPI returns a Dev on real hardware.
func openSPI(cfg *Config) (*device, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	var pins [4]gpio.PinOut
	for i, name := range []string{cfg.DC, cfg.CS, cfg.RST, cfg.BL} {
		p, err := pin(name)
		if err != nil {
			return nil, err
		}
		if p != nil {
			pins[i] = p
		}
	}
	port, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, err
	}
	opts := cfg.Opts()
	dev, err := st7735.NewSPI(port, pins[0], pins[1], pins[2], pins[3], &opts)
	if err != nil {
		port.Close()
		return nil, err
	}
	if pins[3] != nil {
		duty := gpio.DutyMax * gpio.Duty(cfg.Backlight) / 100
		if err := dev.SetBacklight(duty); err != nil {
			port.Close()
			return nil, err
		}
	}
	return &device{dev: dev, close: port.Close}, nil
}

// loadFont returns the font selected by the configuration.
func loadFont(fs afero.Fs, cfg *Config) (*font.Font, error) {
	switch cfg.Font {
	case "":
		return font.Basic7x13, nil
	case "goregular":
		return font.ParseTrueType("goregular", goregular.TTF, cfg.FontSize)
	}
	ttf, err := afero.ReadFile(fs, cfg.Font)
	if err != nil {
		return nil, err
	}
	return font.ParseTrueType(cfg.Font, ttf, cfg.FontSize)
}

func mainImpl() error {
	configPath := flag.String("config", "", "TOML configuration file")
	sim := flag.Bool("sim", DefaultConfig.Sim, "use a simulated controller previewed in the terminal")
	variant := flag.String("variant", DefaultConfig.Variant, "simulated frame memory: narrow (128x160) or wide (132x162)")
	spiName := flag.String("spi", DefaultConfig.SPI, "SPI port")
	dc := flag.String("dc", DefaultConfig.DC, "data/command pin")
	cs := flag.String("cs", DefaultConfig.CS, "chip select pin, empty when driven by the SPI controller")
	rst := flag.String("rst", DefaultConfig.RST, "reset pin")
	bl := flag.String("bl", DefaultConfig.BL, "backlight pin")
	rotate := flag.Int("rotate", DefaultConfig.Rotation, "rotation in degrees")
	detect := flag.Bool("detect", DefaultConfig.Detect, "detect the frame memory size and center the canvas")
	readBack := flag.Bool("readback", DefaultConfig.ReadBack, "the SDA line is bidirectional")
	fontName := flag.String("font", DefaultConfig.Font, "TrueType font file, goregular, or empty for the built-in font")
	frames := flag.Int("frames", DefaultConfig.Frames, "frames to draw, 0 to run until interrupted")
	httpAddr := flag.String("http", DefaultConfig.HTTP, "serve a browser view of the simulated panel on this address")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if flag.NArg() != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	fs := afero.NewOsFs()
	cfg, err := LoadConfig(fs, *configPath)
	if err != nil {
		return err
	}
	// Flags set on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sim":
			cfg.Sim = *sim
		case "variant":
			cfg.Variant = *variant
		case "spi":
			cfg.SPI = *spiName
		case "dc":
			cfg.DC = *dc
		case "cs":
			cfg.CS = *cs
		case "rst":
			cfg.RST = *rst
		case "bl":
			cfg.BL = *bl
		case "rotate":
			cfg.Rotation = *rotate
		case "detect":
			cfg.Detect = *detect
		case "readback":
			cfg.ReadBack = *readBack
		case "font":
			cfg.Font = *fontName
		case "frames":
			cfg.Frames = *frames
		case "http":
			cfg.HTTP = *httpAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Debug().Msgf("config: %+v", cfg)

	open := openSPI
	if cfg.Sim {
		open = openSim
	}
	d, err := open(&cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize st7735: %w", err)
	}
	defer d.close()
	defer d.dev.Halt()
	log.Info().Msgf("opened %s", d.dev)

	if cfg.Detect {
		if err := d.dev.Calibrate(); err != nil {
			return fmt.Errorf("calibration failed: %w", err)
		}
		log.Info().Msgf("canvas geometry %+v", d.dev.Geometry())
	}
	f, err := loadFont(fs, &cfg)
	if err != nil {
		return err
	}
	if err := d.dev.SetFont(f); err != nil {
		return err
	}
	log.Debug().Msgf("font %s", f)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, d, &cfg)
}

// run draws the scene. With a simulator, snapshots of the frame memory are
// previewed in the terminal, and optionally in a browser, by a second
// goroutine, skipping frames when the preview is slower than the animation.
func run(ctx context.Context, d *device, cfg *Config) error {
	sc := newScene(d.dev)
	clock := clockwork.NewRealClock()
	if d.sim == nil {
		return runFrames(ctx, clock, cfg.FPS, cfg.Frames, sc.frame)
	}

	geom := d.dev.Geometry()
	canvas := image.Rect(geom.ColOffset, geom.RowOffset, geom.ColOffset+geom.W, geom.RowOffset+geom.H)
	previews := []display.Drawer{screen2d.New(&screen2d.Opts{W: geom.W, H: geom.H, Scale: cfg.Scale})}
	// done stops the HTTP server once the animation ends.
	done, stop := context.WithCancel(ctx)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if cfg.HTTP != "" {
		view := panelview.New(&panelview.Opts{W: geom.W, H: geom.H, Format: cfg.HTTPFormat})
		previews = append(previews, view)
		srv := &http.Server{Addr: cfg.HTTP, Handler: view.Handler(), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			log.Info().Msgf("serving %s on http://%s/", view, cfg.HTTP)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-done.Done()
			view.Halt()
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	snapshots := make(chan *image.RGBA, 1)
	g.Go(func() error {
		defer stop()
		defer close(snapshots)
		return runFrames(ctx, clock, cfg.FPS, cfg.Frames, func(i int) error {
			if err := sc.frame(i); err != nil {
				return err
			}
			select {
			case snapshots <- d.sim.Image():
			default:
				log.Debug().Msgf("preview skipped frame %d", i)
			}
			return nil
		})
	})
	g.Go(func() error {
		defer func() {
			for _, p := range previews {
				p.Halt()
			}
		}()
		for img := range snapshots {
			for _, p := range previews {
				if err := p.Draw(p.Bounds(), img.SubImage(canvas), canvas.Min); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return g.Wait()
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := mainImpl(); err != nil {
		log.Fatal().Err(err).Msg("st7735")
	}
}

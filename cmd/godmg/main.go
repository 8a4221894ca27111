package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/nsavage/godmg/dmg"
	"github.com/nsavage/godmg/dmg/backend"
	"github.com/nsavage/godmg/dmg/backend/sdl2"
	"github.com/nsavage/godmg/dmg/backend/terminal"
	"github.com/nsavage/godmg/dmg/config"
	"github.com/nsavage/godmg/dmg/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "godmg"
	app.Usage = "godmg [options] <ROM file>"
	app.Description = "An 8-bit handheld game console emulator core"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM image",
		},
		cli.StringFlag{
			Name:  "backend",
			Value: "terminal",
			Usage: "Rendering backend: terminal or sdl2",
		},
		cli.IntFlag{
			Name:  "palette",
			Value: config.DefaultPalette,
			Usage: "Initial palette index",
		},
		cli.IntFlag{
			Name:  "scale",
			Value: 4,
			Usage: "Window scale factor (sdl2 backend only)",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("godmg exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}

	machine, err := dmg.NewWithROM(data)
	if err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}

	// Apply the initial palette index, wrapped modulo the palette table.
	n := len(config.Palettes)
	for i := 0; i < ((c.Int("palette")%n)+n)%n; i++ {
		machine.CyclePalette()
	}

	var be backend.Backend
	switch c.String("backend") {
	case "sdl2":
		be = sdl2.New()
	case "terminal":
		be = terminal.New()
	default:
		return fmt.Errorf("unknown backend %q", c.String("backend"))
	}

	if err := be.Init(backend.Config{
		Title:     "godmg - " + romPath,
		Scale:     c.Int("scale"),
		PaletteID: c.Int("palette"),
	}); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	defer be.Cleanup()

	limiter := timing.NewTickerLimiter()
	defer limiter.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-signals:
			slog.Info("received shutdown signal")
			return nil
		default:
		}

		frame, runErr := machine.RunFrame(config.CyclesPerFrame)
		events, updateErr := be.Update(frame)
		if updateErr != nil {
			return fmt.Errorf("backend update: %w", updateErr)
		}

		quit := false
		for _, ev := range events {
			if ev.Key == backend.KeyQuit {
				quit = true
				continue
			}
			machine.HandleInput(ev)
		}
		if quit {
			return nil
		}

		if runErr != nil {
			slog.Error("cpu halted on unmapped opcode", "error", runErr)
			return runErr
		}

		limiter.WaitForNextFrame()
	}
}

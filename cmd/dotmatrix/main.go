// Package main provides the dotmatrix CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/example/dotmatrix/internal/cartridge"
	"github.com/example/dotmatrix/internal/console"
	"github.com/example/dotmatrix/internal/testrom"
)

var (
	// ErrTestFailed indicates a test ROM failed.
	ErrTestFailed = errors.New("test failed")

	// ErrInvalidScale indicates the scale factor is out of valid range.
	ErrInvalidScale = errors.New("scale must be between 1 and 10")
)

// CLI represents the command-line interface structure.
type CLI struct {
	Info InfoCmd `cmd:"" help:"Display cartridge information."`
	Run  RunCmd  `cmd:"" help:"Run a Game Boy ROM."`
	Test TestCmd `cmd:"" help:"Run a test ROM and report results."`
}

// InfoCmd displays cartridge header information.
type InfoCmd struct {
	ROM string `arg:"" type:"existingfile" help:"Path to ROM file."`
}

// Run executes the info command.
func (c *InfoCmd) Run() error {
	data, err := os.ReadFile(c.ROM)
	if err != nil {
		return fmt.Errorf("failed to read ROM: %w", err)
	}

	cart, err := cartridge.New(data)
	if err != nil {
		return fmt.Errorf("failed to load cartridge: %w", err)
	}

	header := cart.Header()
	fmt.Printf("ROM Information:\n")
	fmt.Printf("  Title:          %s\n", header.GetTitle())
	fmt.Printf("  Cartridge Type: %s (0x%02X)\n", cartridge.CartridgeType(header.CartridgeType), header.CartridgeType)
	fmt.Printf("  ROM Size:       %d KiB (%d banks)\n", header.GetROMSizeBytes()/1024, header.GetROMBanks())
	fmt.Printf("  RAM Size:       %d KiB (%d banks)\n", header.GetRAMSizeBytes()/1024, header.GetRAMBanks())
	fmt.Printf("  Has Battery:    %v\n", cart.HasBattery())
	fmt.Printf("  CGB Flag:       0x%02X\n", header.CGBFlag)
	fmt.Printf("  SGB Flag:       0x%02X\n", header.SGBFlag)

	return nil
}

// RunCmd runs a Game Boy ROM.
type RunCmd struct {
	ROM   string `arg:"" type:"existingfile" help:"Path to ROM file."`
	Scale int    `help:"Display scale factor (1-10)." default:"3"`

	NoLowPass  bool `help:"Disable low-pass filter (anti-aliasing)."`
	NoHighPass bool `help:"Disable high-pass filter (DC offset removal)."`
	NoSoftClip bool `help:"Disable soft clipping (use hard clipping instead)."`
	NoDither   bool `help:"Disable dithering."`
}

// savePath returns the battery-save path for a ROM, alongside it with a
// .sav extension.
func savePath(romPath string) string {
	ext := filepath.Ext(romPath)
	return strings.TrimSuffix(romPath, ext) + ".sav"
}

// Run executes the run command.
func (c *RunCmd) Run() error {
	if c.Scale < 1 || c.Scale > 10 {
		return fmt.Errorf("%w: got %d", ErrInvalidScale, c.Scale)
	}

	data, err := os.ReadFile(c.ROM)
	if err != nil {
		return fmt.Errorf("failed to read ROM: %w", err)
	}

	var save []byte
	savFile := savePath(c.ROM)
	if existing, err := os.ReadFile(savFile); err == nil {
		save = existing
	}

	cons := console.New()
	if err := cons.Load(data, save); err != nil {
		return fmt.Errorf("failed to load ROM: %w", err)
	}

	display := NewDisplay(cons, AudioOptions{
		EnableLowPass:  !c.NoLowPass,
		EnableHighPass: !c.NoHighPass,
		EnableSoftClip: !c.NoSoftClip,
		EnableDither:   !c.NoDither,
	})

	ebiten.SetWindowTitle("dotmatrix - Game Boy Emulator")
	ebiten.SetWindowSize(160*c.Scale, 144*c.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60) // matches the Game Boy's ~59.73 Hz

	runErr := ebiten.RunGame(display)

	if ram := cons.SaveRAM(); ram != nil {
		if err := os.WriteFile(savFile, ram, 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write save file: %v\n", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("emulator error: %w", runErr)
	}
	return nil
}

// TestCmd runs a test ROM and reports results.
type TestCmd struct {
	ROM     string `arg:"" type:"existingfile" help:"Path to test ROM file."`
	Timeout int    `default:"30" help:"Timeout in seconds."`
	Verbose bool   `short:"v" help:"Show detailed output."`
}

// Run executes the test command.
func (c *TestCmd) Run() error {
	fmt.Printf("Running test ROM: %s\n", c.ROM)

	timeout := time.Duration(c.Timeout) * time.Second
	result := testrom.Run(c.ROM, timeout)

	fmt.Printf("Result: %s\n", result.String())

	if c.Verbose || !result.IsSuccess() {
		fmt.Printf("\nOutput:\n%s\n", result.Output)
	}

	if !result.IsSuccess() {
		return ErrTestFailed
	}

	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("dotmatrix"),
		kong.Description("A Game Boy (DMG) emulator written in Go."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

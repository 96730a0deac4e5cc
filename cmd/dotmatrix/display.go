package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/example/dotmatrix/internal/console"
	"github.com/example/dotmatrix/internal/ppu"
)

// DMG palette colors (classic Game Boy green tones).
var dmgPalette = [4]color.RGBA{
	{0xE0, 0xF8, 0xD0, 0xFF}, // White (lightest)
	{0x88, 0xC0, 0x70, 0xFF}, // Light gray
	{0x34, 0x68, 0x56, 0xFF}, // Dark gray
	{0x08, 0x18, 0x20, 0xFF}, // Black (darkest)
}

// joypad bit positions, matching input.Joypad's active-low mask ordering
// {Down, Up, Left, Right, Start, Select, B, A} from bit 7 to bit 0.
const (
	bitDown = 1 << 7
	bitUp   = 1 << 6
	bitLeft = 1 << 5
	bitRight = 1 << 4

	bitStart  = 1 << 3
	bitSelect = 1 << 2
	bitB      = 1 << 1
	bitA      = 1 << 0
)

// Display implements the Ebiten game interface for the Game Boy emulator.
type Display struct {
	console     *console.Console
	screen      *ebiten.Image
	pixels      []byte // Pre-allocated pixel buffer to avoid GC pressure
	audioPlayer *AudioPlayer
}

// NewDisplay creates a new display for the given console.
func NewDisplay(cons *console.Console, opts AudioOptions) *Display {
	audioPlayer, err := NewAudioPlayer(cons, opts)
	if err != nil {
		// Audio is optional - continue without it if initialization fails
		audioPlayer = nil
	} else {
		audioPlayer.Start()
	}

	return &Display{
		console:     cons,
		screen:      ebiten.NewImage(ppu.ScreenWidth, ppu.ScreenHeight),
		pixels:      make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4), // RGBA format
		audioPlayer: audioPlayer,
	}
}

// Update updates the game logic (runs one frame worth of cycles).
// This is called 60 times per second by Ebiten.
func (d *Display) Update() error {
	d.console.SetButtons(d.pollButtons())
	d.console.Frame()

	if d.audioPlayer != nil {
		d.audioPlayer.Update()
	}

	return nil
}

// pollButtons reads the host keyboard and builds the active-low mask
// input.Joypad expects.
func (d *Display) pollButtons() uint8 {
	mask := uint8(0xFF)
	press := func(key ebiten.Key, bit uint8) {
		if ebiten.IsKeyPressed(key) {
			mask &^= bit
		}
	}

	press(ebiten.KeyArrowUp, bitUp)
	press(ebiten.KeyArrowDown, bitDown)
	press(ebiten.KeyArrowLeft, bitLeft)
	press(ebiten.KeyArrowRight, bitRight)
	press(ebiten.KeyZ, bitA)
	press(ebiten.KeyX, bitB)
	press(ebiten.KeyEnter, bitStart)
	press(ebiten.KeyShift, bitSelect)

	return mask
}

// Draw draws the game screen.
// This is called after Update.
func (d *Display) Draw(screen *ebiten.Image) {
	framebuffer := d.console.GetFrameBuffer()

	// Convert framebuffer to RGBA image using bulk pixel update
	// This is much faster than individual Set() calls per pixel
	for i, colorIndex := range framebuffer {
		c := dmgPalette[colorIndex&0x03]

		offset := i * 4
		d.pixels[offset] = c.R
		d.pixels[offset+1] = c.G
		d.pixels[offset+2] = c.B
		d.pixels[offset+3] = c.A
	}

	d.screen.WritePixels(d.pixels)
	screen.DrawImage(d.screen, nil)
}

// Layout returns the game screen size.
func (d *Display) Layout(_, _ int) (int, int) {
	return ppu.ScreenWidth, ppu.ScreenHeight
}

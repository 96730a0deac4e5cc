package console

import (
	"testing"

	"github.com/example/dotmatrix/internal/bus"
)

// buildROM returns a minimal valid 32 KiB ROM-only cartridge image whose
// header checksum is correct, with all code bytes left at 0x00 (NOP).
func buildROM(t *testing.T) []byte {
	t.Helper()

	rom := make([]byte, 0x8000)
	rom[0x0147] = 0x00 // ROM only
	rom[0x0148] = 0x00 // 32 KiB
	rom[0x0149] = 0x00 // no RAM

	checksum := byte(0)
	for addr := 0x0134; addr <= 0x014C; addr++ {
		checksum = checksum - rom[addr] - 1
	}
	rom[0x014D] = checksum

	return rom
}

func TestConsoleResetState(t *testing.T) {
	c := New()
	if err := c.Load(buildROM(t), nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := c.CPU.Registers.PC; got != 0x0100 {
		t.Errorf("PC after reset = 0x%04X, want 0x0100", got)
	}
	if got := c.CPU.Registers.A; got != 0x01 {
		t.Errorf("A after reset = 0x%02X, want 0x01", got)
	}
}

func TestConsoleFrameAdvancesVBlank(t *testing.T) {
	c := New()
	if err := c.Load(buildROM(t), nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	c.Frame()

	// A full frame of NOPs must leave the PPU back in mode 2 (OAM scan) at
	// the start of the next line, having completed a full V-Blank pass.
	if got := c.PPU.LY(); got > 1 {
		t.Errorf("LY after one frame = %d, want 0 or 1 (wrapped back near the top)", got)
	}
}

func TestConsoleLoadRejectsBadChecksum(t *testing.T) {
	c := New()
	rom := buildROM(t)
	rom[0x014D] ^= 0xFF // corrupt the header checksum

	if err := c.Load(rom, nil); err == nil {
		t.Error("Load() with a corrupt header checksum should fail")
	}
}

func TestConsoleButtonsRequestInterrupt(t *testing.T) {
	c := New()
	if err := c.Load(buildROM(t), nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	c.Bus.Write(0xFF00, 0x10, bus.RequesterCPU) // select direction buttons
	c.SetButtons(0xFF &^ (1 << 6))              // press Up

	ifReg := c.Bus.Read(0xFF0F, bus.RequesterCPU)
	if ifReg&(1<<4) == 0 {
		t.Error("pressing a button while selected should set IF bit 4 (joypad)")
	}
}

// Package bus implements the Game Boy address space: region dispatch to
// the cartridge, PPU, APU, timer and joypad, work/high RAM, the
// IE/IF interrupt registers, and the OAM DMA engine.
package bus

import (
	"errors"
	"fmt"

	"github.com/example/dotmatrix/internal/cartridge"
	"github.com/example/dotmatrix/internal/timer"
)

// PPU is the video subsystem as seen from the bus.
type PPU interface {
	ReadVRAM(addr uint16) uint8
	WriteVRAM(addr uint16, value uint8)
	ReadOAM(addr uint16) uint8
	WriteOAM(addr uint16, value uint8)
	WriteOAMRaw(addr uint16, value uint8)
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}

// APU is the audio subsystem as seen from the bus.
type APU interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// Joypad is the input subsystem as seen from the bus.
type Joypad interface {
	Read() uint8
	Write(value uint8)
}

// Bus is the Game Boy address space. It owns work RAM, high RAM and the
// IE/IF registers directly, and dispatches everything else to the
// component that owns that region.
type Bus struct {
	cartridge cartridge.Cartridge
	ppu       PPU
	apu       APU
	joypad    Joypad
	timer     *timer.Timer

	wram [0x2000]uint8 // C000-DFFF
	io   [0x80]uint8   // FF00-FF7F (registers not otherwise claimed)
	hram [0x7F]uint8   // FF80-FFFE
	ie   uint8          // FFFF

	dma dmaEngine

	serialOut func(byte) // optional sink for SB bytes shifted out over SC; test tooling only
}

// NewBus creates an empty bus; components are wired in with the Set*
// methods before use.
func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) SetCartridge(cart cartridge.Cartridge) { b.cartridge = cart }
func (b *Bus) SetPPU(ppu PPU)                        { b.ppu = ppu }
func (b *Bus) SetAPU(apu APU)                        { b.apu = apu }
func (b *Bus) SetJoypad(joypad Joypad)               { b.joypad = joypad }
func (b *Bus) SetTimer(t *timer.Timer)               { b.timer = t }
func (b *Bus) SetSerialOutput(cb func(byte))         { b.serialOut = cb }

// Read reads a byte from the given address on behalf of requester,
// applying OAM-DMA bus-conflict gating for the CPU.
func (b *Bus) Read(addr uint16, requester Requester) uint8 {
	if requester == RequesterCPU && b.dma.active {
		if addr >= 0xFE00 && addr <= 0xFE9F {
			return 0xFF
		}
		if b.dma.blocksExternal() && isExternalRegion(addr) {
			return 0xFF
		}
		if b.dma.blocksVRAM() && addr >= 0x8000 && addr < 0xA000 {
			return 0xFF
		}
	}
	return b.read(addr)
}

func (b *Bus) read(addr uint16) uint8 { //nolint:gocyclo // single region-dispatch switch
	switch {
	case addr < 0x8000:
		if b.cartridge != nil {
			return b.cartridge.Read(addr)
		}
		return 0xFF
	case addr < 0xA000:
		if b.ppu != nil {
			return b.ppu.ReadVRAM(addr - 0x8000)
		}
		return 0xFF
	case addr < 0xC000:
		if b.cartridge != nil {
			return b.cartridge.Read(addr)
		}
		return 0xFF
	case addr < 0xE000:
		return b.wram[addr&0x1FFF]
	case addr < 0xFE00: // echo RAM mirrors C000-DDFF
		return b.wram[addr&0x1FFF]
	case addr < 0xFEA0:
		if b.ppu != nil {
			return b.ppu.ReadOAM(addr - 0xFE00)
		}
		return 0xFF
	case addr < 0xFF00:
		return 0xFF
	case addr < 0xFF80:
		return b.readIO(addr)
	case addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	default:
		return b.ie
	}
}

// Write writes a byte to the given address on behalf of requester.
func (b *Bus) Write(addr uint16, value uint8, requester Requester) {
	if requester == RequesterCPU && b.dma.active {
		if addr >= 0xFE00 && addr <= 0xFE9F {
			return
		}
		if b.dma.blocksExternal() && isExternalRegion(addr) {
			return
		}
		if b.dma.blocksVRAM() && addr >= 0x8000 && addr < 0xA000 {
			return
		}
	}
	b.write(addr, value)
}

func (b *Bus) write(addr uint16, value uint8) { //nolint:gocyclo // single region-dispatch switch
	switch {
	case addr < 0x8000:
		if b.cartridge != nil {
			b.cartridge.Write(addr, value)
		}
	case addr < 0xA000:
		if b.ppu != nil {
			b.ppu.WriteVRAM(addr-0x8000, value)
		}
	case addr < 0xC000:
		if b.cartridge != nil {
			b.cartridge.Write(addr, value)
		}
	case addr < 0xE000:
		b.wram[addr&0x1FFF] = value
	case addr < 0xFE00:
		b.wram[addr&0x1FFF] = value
	case addr < 0xFEA0:
		if b.ppu != nil {
			b.ppu.WriteOAM(addr-0xFE00, value)
		}
	case addr < 0xFF00:
		// unusable region, writes ignored
	case addr < 0xFF80:
		b.writeIO(addr, value)
	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = value
	default:
		b.ie = value
	}
}

func isExternalRegion(addr uint16) bool {
	return addr < 0x8000 || (addr >= 0xA000 && addr < 0xFE00)
}

func (b *Bus) readIO(addr uint16) uint8 {
	offset := addr - 0xFF00
	switch {
	case addr == 0xFF00:
		if b.joypad != nil {
			return b.joypad.Read()
		}
		return 0xFF
	case addr >= 0xFF04 && addr <= 0xFF07:
		if b.timer != nil {
			return b.timer.Read(addr)
		}
		return b.io[offset]
	case addr == 0xFF0F:
		return b.io[offset] | 0xE0
	case addr >= 0xFF10 && addr <= 0xFF3F:
		if b.apu != nil {
			return b.apu.Read(addr)
		}
		return 0xFF
	case addr == 0xFF46:
		return b.io[offset]
	case (addr >= 0xFF40 && addr <= 0xFF45) || (addr >= 0xFF47 && addr <= 0xFF4B):
		if b.ppu != nil {
			return b.ppu.ReadRegister(addr)
		}
		return 0xFF
	default:
		return b.io[offset]
	}
}

func (b *Bus) writeIO(addr uint16, value uint8) {
	offset := addr - 0xFF00
	switch {
	case addr == 0xFF00:
		if b.joypad != nil {
			b.joypad.Write(value)
		}
	case addr == 0xFF02:
		// Serial isn't part of the documented register set this core
		// exposes, but its instant-transfer model is what test ROMs (and
		// nothing else) rely on to report pass/fail, so it stays wired
		// for that one consumer.
		if value&0x80 != 0 && b.serialOut != nil {
			b.serialOut(b.io[0xFF01-0xFF00])
		}
		b.io[offset] = value &^ 0x80
	case addr >= 0xFF04 && addr <= 0xFF07:
		if b.timer != nil {
			b.timer.Write(addr, value)
		} else {
			b.io[offset] = value
		}
	case addr == 0xFF0F:
		b.io[offset] = value & 0x1F
	case addr >= 0xFF10 && addr <= 0xFF3F:
		if b.apu != nil {
			b.apu.Write(addr, value)
		}
	case addr == 0xFF46:
		b.dma.arm(value)
		b.io[offset] = value
	case (addr >= 0xFF40 && addr <= 0xFF45) || (addr >= 0xFF47 && addr <= 0xFF4B):
		if b.ppu != nil {
			b.ppu.WriteRegister(addr, value)
		}
	default:
		b.io[offset] = value
	}
}

// RequestInterrupt sets the given bit in IF. PPU, timer, APU and joypad
// hold a closure over this method rather than a reference to the bus.
func (b *Bus) RequestInterrupt(bit uint8) {
	b.io[0xFF0F-0xFF00] |= 1 << bit
}

// ErrROMLoadFailed indicates ROM loading failed.
var ErrROMLoadFailed = errors.New("ROM loading failed")

// LoadROM parses rom and attaches the resulting cartridge to the bus.
func (b *Bus) LoadROM(rom []byte) error {
	cart, err := cartridge.New(rom)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrROMLoadFailed, err)
	}
	b.cartridge = cart
	return nil
}

// GetCartridge returns the currently loaded cartridge.
func (b *Bus) GetCartridge() cartridge.Cartridge { return b.cartridge }

// Reset clears RAM and DMA state while keeping the cartridge, PPU, APU,
// timer and joypad wired.
func (b *Bus) Reset() {
	clear(b.wram[:])
	clear(b.io[:])
	clear(b.hram[:])
	b.ie = 0
	b.dma = dmaEngine{}
}

// TickDMA advances the DMA engine by one machine cycle. Call it once per
// CPU machine cycle regardless of whether a transfer is active.
func (b *Bus) TickDMA() {
	b.dma.tick(b)
}

// DMAActive reports whether an OAM DMA transfer (including its arm delay)
// is currently in progress.
func (b *Bus) DMAActive() bool { return b.dma.active }

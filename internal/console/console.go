// Package console wires the CPU, PPU, APU, timer, bus and cartridge into a
// single stepping engine and exposes the frame-at-a-time interface the host
// drives: load a ROM, run one frame, read the framebuffer and audio
// samples back out.
package console

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/example/dotmatrix/internal/apu"
	"github.com/example/dotmatrix/internal/bus"
	"github.com/example/dotmatrix/internal/cpu"
	"github.com/example/dotmatrix/internal/input"
	"github.com/example/dotmatrix/internal/ppu"
	"github.com/example/dotmatrix/internal/timer"
)

// maxSerialBufferSize bounds the serial capture buffer so a ROM that
// never stops writing can't grow it without limit.
const maxSerialBufferSize = 64 * 1024

// ErrTimeout indicates RunUntilOutput timed out without seeing a
// completion marker or a quiet period.
var ErrTimeout = errors.New("console: timeout waiting for serial output")

var (
	passedBytes = []byte("Passed")
	failedBytes = []byte("Failed")
)

// tCyclesPerFrame is the DMG's fixed frame length at 59.7 Hz (70224 T-cycles,
// 17556 machine cycles) regardless of what the CPU executes during it.
const tCyclesPerFrame = 70224

// rtcFramesPerSecond is how many Frame() calls the console expects per
// wall-clock second; MBC3's real-time clock advances on this cadence
// rather than once per machine cycle, matching its independent crystal.
const rtcFramesPerSecond = 60

// cpuBus adapts *bus.Bus to cpu.Memory, tagging every access as coming
// from the CPU so OAM-DMA bus-conflict gating applies.
type cpuBus struct{ b *bus.Bus }

func (c cpuBus) Read(addr uint16) uint8         { return c.b.Read(addr, bus.RequesterCPU) }
func (c cpuBus) Write(addr uint16, value uint8) { c.b.Write(addr, value, bus.RequesterCPU) }

// Console is a complete Game Boy: CPU, PPU, APU, timer, bus, cartridge and
// joypad, stepped one CPU instruction at a time.
type Console struct {
	Bus   *bus.Bus
	CPU   *cpu.CPU
	PPU   *ppu.PPU
	APU   *apu.APU
	Timer *timer.Timer
	Input *input.Joypad

	frameCounter int // drives the MBC3 RTC's once-a-second cadence

	serialOutput []byte
}

// New creates a Console with no cartridge loaded; call Load before Frame.
func New() *Console {
	c := &Console{Bus: bus.NewBus()}

	c.Timer = timer.New(func() { c.Bus.RequestInterrupt(cpu.InterruptTimer) })
	c.PPU = ppu.New(func(bit uint8) { c.Bus.RequestInterrupt(bit) })
	c.APU = apu.New()
	c.Input = input.New(func(bit uint8) { c.Bus.RequestInterrupt(bit) })

	c.Bus.SetTimer(c.Timer)
	c.Bus.SetPPU(c.PPU)
	c.Bus.SetAPU(c.APU)
	c.Bus.SetJoypad(c.Input)
	c.Bus.SetSerialOutput(c.captureSerial)

	c.CPU = cpu.New(cpuBus{c.Bus})

	return c
}

func (c *Console) captureSerial(b byte) {
	if len(c.serialOutput) < maxSerialBufferSize {
		c.serialOutput = append(c.serialOutput, b)
	}
}

// SerialOutput returns the bytes captured over the serial port so far,
// used by test-ROM tooling to read Blargg-style pass/fail text.
func (c *Console) SerialOutput() string {
	return string(c.serialOutput)
}

// RunUntilOutput runs frames until serial output contains a completion
// marker, goes quiet for a while, or timeout elapses.
func (c *Console) RunUntilOutput(timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	lastLen := 0
	lastChange := time.Now()

	for {
		if time.Now().After(deadline) {
			if len(c.serialOutput) > 0 {
				return c.SerialOutput(), nil
			}
			return "", ErrTimeout
		}

		c.Frame()

		if len(c.serialOutput) > lastLen {
			lastLen = len(c.serialOutput)
			lastChange = time.Now()
			if bytes.Contains(c.serialOutput, passedBytes) || bytes.Contains(c.serialOutput, failedBytes) {
				return c.SerialOutput(), nil
			}
		}

		if len(c.serialOutput) > 0 && time.Since(lastChange) > 3*time.Second {
			return c.SerialOutput(), nil
		}
	}
}

// Load parses rom, attaches the cartridge to the bus and resets every
// subsystem to its documented post-boot state. If save is non-nil it is
// loaded into the cartridge's battery-backed RAM.
func (c *Console) Load(rom, save []byte) error {
	if err := c.Bus.LoadROM(rom); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if save != nil {
		if err := c.Bus.GetCartridge().SetRAM(save); err != nil {
			return fmt.Errorf("console: loading save data: %w", err)
		}
	}
	c.Reset()
	return nil
}

// Reset restores the documented DMG post-boot state across every
// subsystem, keeping the loaded cartridge in place.
func (c *Console) Reset() {
	c.CPU.Reset()
	c.PPU.Reset()
	c.APU.Reset()
	c.Timer.Reset()
	c.Bus.Reset()
	c.frameCounter = 0
	c.serialOutput = nil
}

// Frame runs the console for approximately one frame (70224 T-cycles). The
// CPU executes whole instructions, so the final instruction of a frame may
// overshoot the boundary by a few T-cycles; the overshoot is not carried
// into the next frame, so every frame runs at least 70224 T-cycles. The
// caller reads
// GetFrameBuffer and GetAudioSamples afterward.
func (c *Console) Frame() {
	var ran int
	for ran < tCyclesPerFrame {
		ran += int(c.step())
	}

	c.frameCounter++
	if c.frameCounter >= rtcFramesPerSecond {
		c.frameCounter = 0
		if mbc3, ok := c.Bus.GetCartridge().(interface{ TickRTC() }); ok {
			mbc3.TickRTC()
		}
	}
}

// step executes one CPU instruction (or interrupt dispatch, or halted
// cycle) and advances every other subsystem by the T-cycles it took, in
// the order real hardware's internal clock drives them: CPU first (it may
// arm DMA or touch any register), then DMA, then timer, then one PPU dot
// per T-cycle, then the APU. It returns the T-cycle count so the caller
// can accumulate toward a frame boundary.
func (c *Console) step() uint8 {
	cycles := c.CPU.Step()

	machineCycles := uint16(cycles) / 4
	for i := uint16(0); i < machineCycles; i++ {
		c.Bus.TickDMA()
	}

	c.Timer.Update(uint16(cycles))

	for i := uint8(0); i < cycles; i++ {
		c.PPU.Tick()
	}

	c.APU.Update(uint16(cycles))

	return cycles
}

// GetFrameBuffer returns a read-only view of the 160x144 framebuffer,
// valid immediately after Frame returns.
func (c *Console) GetFrameBuffer() *[ppu.ScreenWidth * ppu.ScreenHeight]uint8 {
	return c.PPU.GetFramebuffer()
}

// GetAudioSamples returns the stereo float32 samples generated during the
// frames since the last call, and clears the internal buffer.
func (c *Console) GetAudioSamples() []float32 {
	return c.APU.GetSampleBuffer()
}

// SetButtons updates the joypad state. mask is active-low, ordered
// {Down, Up, Left, Right, Start, Select, B, A} from bit 7 to bit 0.
func (c *Console) SetButtons(mask uint8) {
	c.Input.SetButtons(mask)
}

// SaveRAM returns a copy of the cartridge's battery-backed RAM, or nil if
// the cartridge has none.
func (c *Console) SaveRAM() []byte {
	cart := c.Bus.GetCartridge()
	if cart == nil || !cart.HasBattery() {
		return nil
	}
	return cart.GetRAM()
}

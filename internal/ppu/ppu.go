// Package ppu implements the Game Boy Picture Processing Unit: the mode
// state machine, OAM sprite scan, and the background/window/sprite pixel
// FIFO pipeline that produces the 160x144 framebuffer one dot at a time.
package ppu

const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

const (
	ModeHBlank  = 0
	ModeVBlank  = 1
	ModeOAMScan = 2
	ModeDrawing = 3
)

const (
	DotsPerScanline  = 456
	DotsOAMScan      = 80
	ScanlinesVisible = 144
	ScanlinesVBlank  = 10
	ScanlinesTotal   = 154
	DotsPerFrame     = 70224
)

const (
	VRAMSize = 0x2000
	OAMSize  = 0xA0
)

const (
	LCDCLCDEnable      = 1 << 7
	LCDCWindowTileMap  = 1 << 6
	LCDCWindowEnable   = 1 << 5
	LCDCBGTileData     = 1 << 4
	LCDCBGTileMap      = 1 << 3
	LCDCOBJSize        = 1 << 2
	LCDCOBJEnable      = 1 << 1
	LCDCBGWindowEnable = 1 << 0
)

const (
	STATLYCInterrupt   = 1 << 6
	STATMode2Interrupt = 1 << 5
	STATMode1Interrupt = 1 << 4
	STATMode0Interrupt = 1 << 3
	STATLYCFlag        = 1 << 2
	STATModeMask       = 0x03
)

const (
	SpriteAttrPriority = 1 << 7
	SpriteAttrYFlip    = 1 << 6
	SpriteAttrXFlip    = 1 << 5
	SpriteAttrPalette  = 1 << 4
)

const (
	InterruptVBlank = 0
	InterruptSTAT   = 1
)

// PPU is the Game Boy video subsystem.
type PPU struct {
	vram [VRAMSize]uint8
	oam  [OAMSize]uint8

	lcdc uint8
	stat uint8
	scy  uint8
	scx  uint8
	ly   uint8
	lyc  uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8
	wy   uint8
	wx   uint8

	mode uint8
	dots uint16

	// statLine is the last-computed level of the STAT interrupt source
	// (OR of all enabled conditions); the interrupt fires only on its
	// rising edge, matching the real STAT-interrupt "glitch" behavior.
	statLine bool

	// windowLine counts scanlines actually drawn with the window active;
	// it is independent of LY so window content stays continuous across
	// scanlines where the window is toggled off and back on.
	windowLine     uint8
	windowTriggered bool

	fetcher fetcher

	framebuffer [ScreenWidth * ScreenHeight]uint8

	requestInterrupt func(uint8)
}

// New creates a PPU in the documented post-boot power-up state.
func New(requestInterrupt func(uint8)) *PPU {
	p := &PPU{requestInterrupt: requestInterrupt}
	p.Reset()
	return p
}

// Tick advances the PPU by exactly one dot (T-cycle). The caller must call
// this four times per CPU machine cycle to stay in lockstep.
func (p *PPU) Tick() {
	if p.lcdc&LCDCLCDEnable == 0 {
		return
	}

	p.dots++

	switch p.mode {
	case ModeOAMScan:
		if p.dots == 1 {
			p.scanOAM()
		}
		if p.dots >= DotsOAMScan {
			p.beginDrawing()
		}
	case ModeDrawing:
		p.fetcher.tick(p)
		if p.fetcher.lx >= ScreenWidth {
			if p.windowTriggered {
				p.windowLine++
			}
			p.windowTriggered = false
			p.setMode(ModeHBlank)
		}
	case ModeHBlank:
		if p.dots >= DotsPerScanline {
			p.advanceLine()
		}
	case ModeVBlank:
		if p.dots >= DotsPerScanline {
			p.advanceLine()
		}
	}

	p.updateSTAT()
}

func (p *PPU) beginDrawing() {
	p.setMode(ModeDrawing)
	p.fetcher.start(p)
}

func (p *PPU) advanceLine() {
	p.dots = 0
	p.ly++

	if p.ly == ScreenHeight {
		p.setMode(ModeVBlank)
		if p.requestInterrupt != nil {
			p.requestInterrupt(InterruptVBlank)
		}
		return
	}

	if p.ly >= ScanlinesTotal {
		p.ly = 0
		p.windowLine = 0
		p.windowTriggered = false
		p.setMode(ModeOAMScan)
		return
	}

	if p.mode == ModeVBlank {
		return
	}
	p.setMode(ModeOAMScan)
}

func (p *PPU) setMode(mode uint8) {
	p.mode = mode
	p.stat = (p.stat &^ STATModeMask) | (mode & STATModeMask)
}

// updateSTAT recomputes the LYC=LY flag and fires the STAT interrupt on
// the rising edge of the OR of every currently-enabled STAT condition.
func (p *PPU) updateSTAT() {
	if p.ly == p.lyc {
		p.stat |= STATLYCFlag
	} else {
		p.stat &^= STATLYCFlag
	}

	line := false
	if p.stat&STATLYCInterrupt != 0 && p.stat&STATLYCFlag != 0 {
		line = true
	}
	switch p.mode {
	case ModeHBlank:
		line = line || p.stat&STATMode0Interrupt != 0
	case ModeVBlank:
		line = line || p.stat&STATMode1Interrupt != 0
	case ModeOAMScan:
		line = line || p.stat&STATMode2Interrupt != 0
	}

	if line && !p.statLine && p.requestInterrupt != nil {
		p.requestInterrupt(InterruptSTAT)
	}
	p.statLine = line
}

func (p *PPU) ReadVRAM(addr uint16) uint8 {
	if p.mode == ModeDrawing {
		return 0xFF
	}
	if addr < VRAMSize {
		return p.vram[addr]
	}
	return 0xFF
}

func (p *PPU) WriteVRAM(addr uint16, value uint8) {
	if p.mode == ModeDrawing {
		return
	}
	if addr < VRAMSize {
		p.vram[addr] = value
	}
}

func (p *PPU) ReadOAM(addr uint16) uint8 {
	if p.mode == ModeOAMScan || p.mode == ModeDrawing {
		return 0xFF
	}
	if addr < OAMSize {
		return p.oam[addr]
	}
	return 0xFF
}

func (p *PPU) WriteOAM(addr uint16, value uint8) {
	if p.mode == ModeOAMScan || p.mode == ModeDrawing {
		return
	}
	if addr < OAMSize {
		p.oam[addr] = value
	}
}

// WriteOAMRaw writes OAM directly, bypassing the mode gate. The DMA engine
// is the one legitimate caller: it is the sole writer of OAM while a
// transfer is in flight, running regardless of the current PPU mode.
func (p *PPU) WriteOAMRaw(addr uint16, value uint8) {
	if addr < OAMSize {
		p.oam[addr] = value
	}
}

func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0xFF40:
		return p.lcdc
	case 0xFF41:
		return p.stat | 0x80
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		return p.ly
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgp
	case 0xFF48:
		return p.obp0
	case 0xFF49:
		return p.obp1
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	default:
		return 0xFF
	}
}

func (p *PPU) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case 0xFF40:
		wasOn := p.lcdc&LCDCLCDEnable != 0
		p.lcdc = value
		if wasOn && value&LCDCLCDEnable == 0 {
			p.mode = ModeHBlank
			p.stat = p.stat &^ STATModeMask
			p.dots = 0
			p.ly = 0
		} else if !wasOn && value&LCDCLCDEnable != 0 {
			p.dots = 0
			p.ly = 0
			p.setMode(ModeOAMScan)
		}
	case 0xFF41:
		p.stat = (p.stat & 0x87) | (value & 0x78)
	case 0xFF42:
		p.scy = value
	case 0xFF43:
		p.scx = value
	case 0xFF44:
		// read-only
	case 0xFF45:
		p.lyc = value
	case 0xFF47:
		p.bgp = value
	case 0xFF48:
		p.obp0 = value
	case 0xFF49:
		p.obp1 = value
	case 0xFF4A:
		p.wy = value
	case 0xFF4B:
		p.wx = value
	}
}

// GetFramebuffer returns the current frame's pixel buffer (shades 0-3,
// already mapped through BGP/OBP0/OBP1, row-major 160x144).
func (p *PPU) GetFramebuffer() *[ScreenWidth * ScreenHeight]uint8 {
	return &p.framebuffer
}

// Mode reports the current PPU mode (0-3), mainly for tests.
func (p *PPU) Mode() uint8 { return p.mode }

// LY reports the current scanline.
func (p *PPU) LY() uint8 { return p.ly }

// Reset restores the PPU to its documented power-up state.
func (p *PPU) Reset() {
	p.vram = [VRAMSize]uint8{}
	p.oam = [OAMSize]uint8{}
	p.lcdc = 0x91
	p.stat = 0x00
	p.scy = 0
	p.scx = 0
	p.ly = 0
	p.lyc = 0
	p.bgp = 0xFC
	p.obp0 = 0xFF
	p.obp1 = 0xFF
	p.wy = 0
	p.wx = 0
	p.mode = ModeOAMScan
	p.dots = 0
	p.statLine = false
	p.windowLine = 0
	p.windowTriggered = false
	p.fetcher = fetcher{}
	p.framebuffer = [ScreenWidth * ScreenHeight]uint8{}
}

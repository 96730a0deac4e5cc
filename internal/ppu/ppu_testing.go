package ppu

// SetModeForTesting sets the PPU mode directly for testing purposes.
// This is used by memory tests to set the PPU to H-Blank mode so VRAM/OAM are accessible.
func (p *PPU) SetModeForTesting(mode uint8) {
	p.mode = mode
	p.stat = (p.stat &^ STATModeMask) | (mode & STATModeMask)
}

// getTilePixel returns the 2-bit color index of pixel (x, y) of tile
// tileIndex in the 0x8000-based tile data area, decoded the same way the
// fetcher combines a row's low and high bit planes (leftmost pixel = bit 7).
func (p *PPU) getTilePixel(tileIndex uint8, x, y uint16) uint8 {
	addr := uint16(tileIndex)*16 + y*2
	bit := 7 - x
	lo := (p.vram[addr] >> bit) & 1
	hi := (p.vram[addr+1] >> bit) & 1
	return lo | (hi << 1)
}

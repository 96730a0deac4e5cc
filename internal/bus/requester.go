package bus

// Requester identifies which component is issuing a bus access. The bus
// uses it to apply PPU-mode and DMA bus-blocking rules: only the CPU is
// ever turned away with 0xFF, and only the DMA engine may touch OAM while
// a transfer is running.
type Requester uint8

const (
	RequesterCPU Requester = iota
	RequesterPPU
	RequesterTimer
	RequesterInternal // DMA engine and other bus-owned machinery
)

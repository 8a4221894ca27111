package cpu

import "sync"

// opFunc executes one opcode and returns the number of cycles it consumed.
// The 512-entry table spec.md §4.1 describes (0x000-0x0FF primary,
// 0x100-0x1FF CB-prefixed) is realized as a table of these closures, built
// from a handful of parametrized generators instead of 512 near-identical
// named functions (spec.md §9's own recommendation).
type opFunc func(c *CPU) int

var (
	dispatchTable     [512]opFunc
	dispatchOnce      sync.Once
)

func buildDispatchTable() {
	dispatchOnce.Do(func() {
		buildPrimaryTable()
		buildCBTable()
	})
}

// unmappedOpcodes are the eleven primary-table slots with no defined
// instruction (spec.md §4.1).
var unmappedOpcodes = [...]uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

func unmapped(opcode uint8) opFunc {
	return func(c *CPU) int {
		c.Err = &ErrUnmappedOpcode{PC: c.pc - 1, Opcode: opcode}
		return 4
	}
}

// Package gold derives DVB-S2 physical layer scrambling seeds from a gold
// code index.
package gold

import "github.com/rjboer/GoDVB/internal/tables"

// State is the 18-bit scrambler register, bit 0 first.
type State uint32

const stateMask = 1<<18 - 1

// Seed is the register content at index 0.
const Seed State = 1

// Step advances the register by one position: x0 xor x7 is shifted into
// x17.
func Step(s State) State {
	fb := (s ^ s>>7) & 1
	return (s>>1 | fb<<17) & stateMask
}

// Pack splits the register into the three bytes written to the demod.
func Pack(s State) [3]byte {
	return [3]byte{byte(s), byte(s >> 8), byte(s>>16) & 0x03}
}

// Unpack is the inverse of Pack.
func Unpack(b [3]byte) State {
	return State(b[0]) | State(b[1])<<8 | State(b[2]&0x03)<<16
}

// Reference steps from the seed one position at a time.
func Reference(index uint32) [3]byte {
	s := Seed
	for i := uint32(0); i < index; i++ {
		s = Step(s)
	}
	return Pack(s)
}

// Generate starts from the nearest checkpoint at or below index. Indexes
// past the last checkpoint start from it as well, so the result for those
// is the state index-260000 steps after that checkpoint.
func Generate(index uint32) [3]byte {
	cp := int(index / tables.GoldStride)
	if last := len(tables.GoldCheckpoints) - 1; cp > last {
		cp = last
	}
	start := tables.GoldCheckpoints[cp]
	s := Unpack(start.State)
	for i := start.Index; i < index; i++ {
		s = Step(s)
	}
	return Pack(s)
}

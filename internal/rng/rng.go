// Package rng provides the deterministic random source used by generation
// and simulation. A single Source is a sequential cursor: identical seeds
// produce identical draw sequences.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// Source is the random source consumed by the sampler, generator and simulator.
type Source interface {
	// Float64 returns a uniform value in [0,1).
	Float64() float64
	// Between returns a uniform integer in [lo, hi]. It panics if lo > hi.
	Between(lo, hi int) int
}

// zeroSeedState replaces a zero seed; xorshift never leaves the zero state.
const zeroSeedState uint32 = 2463534242

// XorShift32 is a 32-bit xorshift generator with draw position tracking.
type XorShift32 struct {
	seed  uint32
	state uint32
	draws int64
}

// New returns a generator seeded with seed. A zero seed is remapped to a
// fixed nonzero state.
func New(seed uint32) *XorShift32 {
	state := seed
	if state == 0 {
		state = zeroSeedState
	}
	return &XorShift32{seed: seed, state: state}
}

func (x *XorShift32) next() uint32 {
	t := x.state
	t ^= t << 13
	t ^= t >> 17
	t ^= t << 5
	x.state = t
	x.draws++
	return t
}

// Float64 returns a uniform value in [0,1). The state is never zero, so the
// result is strictly positive as well.
func (x *XorShift32) Float64() float64 {
	return float64(x.next()) / (1 << 32)
}

// Between returns a uniform integer in [lo, hi] using one draw.
func (x *XorShift32) Between(lo, hi int) int {
	if lo > hi {
		panic(fmt.Sprintf("rng: Between(%d, %d): lo > hi", lo, hi))
	}
	span := int64(hi) - int64(lo) + 1
	v := int64(x.Float64()*float64(span)) + int64(lo)
	if v > int64(hi) {
		v = int64(hi)
	}
	return int(v)
}

// Seed returns the seed the generator was created with.
func (x *XorShift32) Seed() uint32 { return x.seed }

// Draws returns the number of values consumed since creation.
func (x *XorShift32) Draws() int64 { return x.draws }

// NewSeed generates a fresh seed using crypto/rand.
func NewSeed() (uint32, error) {
	var b [4]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// DeriveSeed maps a base seed and a stream index to an independent seed
// (splitmix64 finalizer). Used to give each batch individual a private cursor.
func DeriveSeed(base uint32, index int) uint32 {
	z := uint64(base)<<32 | uint64(uint32(index))
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return uint32(z) ^ uint32(z>>32)
}

// Sequence replays a fixed list of uniform values. It is meant for tests
// that need exact control over sampling decisions; it panics when exhausted.
type Sequence struct {
	values []float64
	pos    int
}

// NewSequence returns a Source that yields values in order.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Float64() float64 {
	if s.pos >= len(s.values) {
		panic(fmt.Sprintf("rng: sequence exhausted after %d draws", s.pos))
	}
	v := s.values[s.pos]
	s.pos++
	return v
}

func (s *Sequence) Between(lo, hi int) int {
	if lo > hi {
		panic(fmt.Sprintf("rng: Between(%d, %d): lo > hi", lo, hi))
	}
	span := hi - lo + 1
	v := lo + int(s.Float64()*float64(span))
	if v > hi {
		v = hi
	}
	return v
}

// Draws returns how many values have been consumed.
func (s *Sequence) Draws() int { return s.pos }

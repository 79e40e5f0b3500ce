// Package vmrand implements the pseudo-random helper invoked by the VM's
// optional LoadRandom opcode. It is deliberately simple (a Lehmer/Park-Miller
// linear congruential generator) and is not cryptographically secure: it
// exists to give compiled code a deterministic, easily-reproduced source of
// "randomness" for test programs, matching the original implementation's
// vm::rand::ParkMiller.
package vmrand

import (
	"sync"
	"time"
)

const (
	modulus    = 2_147_483_647
	multiplier = 16_807
	f64Scale   = 1.0 / 2_147_483_647
)

// Generator is a Park-Miller minimal-standard LCG. The zero value is not
// usable; construct one with New.
type Generator struct {
	mu    sync.Mutex
	state uint64
}

// New returns a Generator seeded with seed (reduced mod the generator's
// modulus, as the original implementation does).
func New(seed uint64) *Generator {
	return &Generator{state: seed % modulus}
}

// Next advances the generator and returns the next value in [0, 2^31-1).
func (g *Generator) Next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = (g.state * multiplier) % modulus
	return g.state
}

// Uint64n scales the generator's next output into [0, max).
func (g *Generator) Uint64n(max uint64) uint64 {
	r := float64(g.Next()) * f64Scale
	return uint64(float64(max) * r)
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

// Next returns the next pseudo-random value, scaled into [0, max), from a
// lazily-initialized process-wide generator seeded from the current time —
// mirroring the original's OnceLock<Mutex<ParkMiller>> seeded from
// SystemTime::now(). This is the function call_into_host's LoadRandom
// lowering invokes through the host ABI.
func Next(max uint64) uint64 {
	defaultOnce.Do(func() {
		defaultGen = New(uint64(time.Now().UnixNano()))
	})
	return defaultGen.Uint64n(max)
}

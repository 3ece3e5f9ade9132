// Package idgen produces the unique identifiers assigned to resolved
// identities. Every generator yields RFC 4122 version 4 shaped UUIDs.
package idgen

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// Generator hands out identifiers. Implementations need not be safe for
// concurrent use.
type Generator interface {
	NewID() string
}

// Random draws version 4 UUIDs from crypto/rand
type Random struct{}

// NewID implements Generator
func (Random) NewID() string {
	return uuid.NewString()
}

// Seeded derives identifiers from blake3(seed || counter), so the same seed
// yields the same identifiers in the same order
type Seeded struct {
	seed    []byte
	counter uint64
}

// NewSeeded returns a Seeded generator
func NewSeeded(seed string) *Seeded {
	return &Seeded{seed: []byte(seed)}
}

// NewID implements Generator
func (s *Seeded) NewID() string {
	buf := make([]byte, len(s.seed)+8)
	copy(buf, s.seed)
	binary.BigEndian.PutUint64(buf[len(s.seed):], s.counter)
	s.counter++

	sum := blake3.Sum256(buf)

	var id uuid.UUID
	copy(id[:], sum[:16])
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80

	return id.String()
}

// Sequential yields 00000000-0000-4000-8000-000000000001, ...002 and so on.
// It is meant for golden output.
type Sequential struct {
	next uint64
}

// NewID implements Generator
func (s *Sequential) NewID() string {
	s.next++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.next)
}

// Func adapts a plain function to Generator
type Func func() string

// NewID implements Generator
func (f Func) NewID() string {
	return f()
}

// FromName picks a generator by configuration name
func FromName(name, seed string) (Generator, error) {
	switch name {
	case "", "random":
		return Random{}, nil
	case "seeded":
		return NewSeeded(seed), nil
	case "sequential":
		return &Sequential{}, nil
	default:
		return nil, fmt.Errorf("unknown id generator %q (must be random, seeded, or sequential)", name)
	}
}

// Package txid generates transaction identifiers.
//
// Identifiers are locally unique and sort lexically in creation order, so
// they double as document revisions.
package txid

import (
	"crypto/rand"
	"io"
	"math/bits"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces transaction ids.
type Generator interface {
	NewID() string
}

// ULID generates ULIDs with monotonic entropy, so ids created within the
// same millisecond still sort in creation order. It is safe for concurrent
// use.
type ULID struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
}

func NewULID() *ULID {
	return &ULID{
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (g *ULID) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}

var defaultGen = NewULID()

// Default returns the process wide ULID generator.
func Default() Generator {
	return defaultGen
}

// Sequence is a deterministic generator counting up from 1. Ids are a
// prefix followed by a length-prefixed hex counter:
//
//	a1, a2, ..., af, b10, b11, ..., bff, c100
//
// The length prefix makes lexical order match numeric order.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      uint64
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.prefix + formatLex(s.n)
}

// formatLex encodes n as hex with a letter prefix giving the number of hex
// digits: 'a'=1, 'b'=2, ..., 'p'=16.
func formatLex(n uint64) string {
	length := 1
	if n != 0 {
		length = (bits.Len64(n) + 3) / 4
	}
	return string(rune('a'+length-1)) + strconv.FormatUint(n, 16)
}
